// Package mcp exposes the validate-and-render pipeline over the Model
// Context Protocol. User-level failures (bad diagrams, bad style values,
// render errors) are tool results, never transport faults.
package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rendis/seamark/internal/artifacts"
	"github.com/rendis/seamark/internal/pipeline"
	"github.com/rendis/seamark/pkg/schema"
)

// DefaultInlineLimit is the payload size above which a rendered output is
// returned as an artifact reference instead of inline base64.
const DefaultInlineLimit = 1 << 20

// Processor runs one validate-and-render cycle.
type Processor interface {
	Process(ctx context.Context, req pipeline.Request) (schema.RenderResult, error)
}

// SeamarkServerDeps holds the dependencies for creating a SeamarkServer.
type SeamarkServerDeps struct {
	Pipeline  Processor
	Artifacts *artifacts.Store
	Logger    *slog.Logger
	// InlineLimit caps inline payload bytes. Zero means DefaultInlineLimit.
	InlineLimit int
}

// SeamarkServer wraps an MCP server with diagram tool handlers.
type SeamarkServer struct {
	pipeline    Processor
	artifacts   *artifacts.Store
	logger      *slog.Logger
	inlineLimit int
	style       *styleValidator
	mcpServer   *server.MCPServer
}

// NewSeamarkServer creates a SeamarkServer with all tools and prompts
// registered. It fails only if the embedded style schema does not compile.
func NewSeamarkServer(deps SeamarkServerDeps) (*SeamarkServer, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	inlineLimit := deps.InlineLimit
	if inlineLimit <= 0 {
		inlineLimit = DefaultInlineLimit
	}

	style, err := newStyleValidator()
	if err != nil {
		return nil, err
	}

	s := &SeamarkServer{
		pipeline:    deps.Pipeline,
		artifacts:   deps.Artifacts,
		logger:      logger,
		inlineLimit: inlineLimit,
		style:       style,
	}

	mcpSrv := server.NewMCPServer(
		"seamark",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Seamark validates and renders Mermaid diagrams. Use seamark.render to validate diagram code, auto-fix common syntax mistakes, and rasterize to PNG or SVG. Use seamark.fetch to retrieve a rendered output by reference when it was too large to inline. Use seamark.examples for a known-good snippet of each diagram kind."),
	)

	mcpSrv.AddTools(s.tools()...)
	for _, p := range s.prompts() {
		mcpSrv.AddPrompt(p.Prompt, p.Handler)
	}
	s.mcpServer = mcpSrv
	return s, nil
}

// Serve starts the stdio transport and blocks until ctx is cancelled or stdin closes.
func (s *SeamarkServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *SeamarkServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// tools returns the registered MCP tools as ServerTool entries.
func (s *SeamarkServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: renderTool(), Handler: s.handleRender},
		{Tool: fetchTool(), Handler: s.handleFetch},
		{Tool: examplesTool(), Handler: s.handleExamples},
	}
}

// --- Tool definitions ---

func renderTool() mcp.Tool {
	return mcp.NewTool("seamark.render",
		mcp.WithDescription("Validate Mermaid diagram code and render it to PNG and/or SVG. Validation failures and render failures are reported in the structured result, not as tool errors"),
		mcp.WithString("code", mcp.Required(), mcp.Description("Mermaid diagram source code")),
		mcp.WithBoolean("fix_errors", mcp.Description("Attempt automatic repair of common syntax mistakes before rendering (default: true)")),
		mcp.WithObject("style", mcp.Description("Rendering style: theme (default/dark/forest/neutral), look (classic/hand-drawn), background (transparent/white), direction (TB/BT/LR/RL, flowchart only), scale (device-pixel-ratio multiplier). Unknown keys or values are rejected")),
		mcp.WithArray("formats",
			mcp.Items(map[string]any{"type": "string", "enum": []any{"png", "svg"}}),
			mcp.Description("Output formats to produce (default: [\"png\"])"),
		),
		mcp.WithNumber("deadline_ms", mcp.Description("Time budget in milliseconds for the whole cycle, capped by the service ceiling")),
		mcp.WithBoolean("inline", mcp.Description("Return image bytes inline as base64 (default: true). Large payloads fall back to references regardless")),
	)
}

func fetchTool() mcp.Tool {
	return mcp.NewTool("seamark.fetch",
		mcp.WithDescription("Fetch a rendered output by the reference returned from seamark.render"),
		mcp.WithString("reference", mcp.Required(), mcp.Description("Opaque reference ID of the rendered output")),
	)
}

func examplesTool() mcp.Tool {
	return mcp.NewTool("seamark.examples",
		mcp.WithDescription("Get a known-good Mermaid example per diagram kind"),
		mcp.WithString("kind",
			mcp.Enum(kindEnum()...),
			mcp.Description("Diagram kind to fetch an example for; omit to list all"),
		),
	)
}

// kindEnum lists the example-backed diagram kinds for the tool schema.
func kindEnum() []string {
	kinds := schema.Kinds()
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, string(k))
	}
	return out
}
