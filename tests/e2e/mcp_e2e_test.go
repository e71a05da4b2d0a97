package e2e

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/seamark/internal/artifacts"
	"github.com/rendis/seamark/internal/pipeline"
	"github.com/rendis/seamark/internal/render"
	seamcp "github.com/rendis/seamark/pkg/mcp"
	"github.com/rendis/seamark/pkg/schema"
)

// --- Test infrastructure ---

// stubRenderer produces deterministic bytes per format so the full MCP
// round-trip can run without a browser. The real browser path is covered
// by the render package's gated tests.
type stubRenderer struct {
	err error
}

func (r *stubRenderer) Render(_ context.Context, code string, _ schema.DiagramKind, cfg schema.RenderConfig) (map[schema.OutputFormat][]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make(map[schema.OutputFormat][]byte, len(cfg.Formats))
	for _, f := range cfg.Formats {
		out[f] = []byte(string(f) + ":" + code)
	}
	return out, nil
}

func (r *stubRenderer) Close() {}

var _ render.Renderer = (*stubRenderer)(nil)

// testEnv holds the wired service for E2E tests.
type testEnv struct {
	renderer  *stubRenderer
	artifacts *artifacts.Store
	server    *seamcp.SeamarkServer
}

func newTestEnv(t *testing.T, inlineLimit int) *testEnv {
	t.Helper()

	renderer := &stubRenderer{}
	orchestrator := pipeline.New(renderer, pipeline.Options{
		DefaultDeadline: 5 * time.Second,
		MaxDeadline:     10 * time.Second,
	}, nil)
	store := artifacts.NewStore(time.Minute, nil)

	srv, err := seamcp.NewSeamarkServer(seamcp.SeamarkServerDeps{
		Pipeline:    orchestrator,
		Artifacts:   store,
		InlineLimit: inlineLimit,
	})
	require.NoError(t, err)

	return &testEnv{renderer: renderer, artifacts: store, server: srv}
}

// callTool invokes a tool through HandleMessage (full JSON-RPC round-trip).
func (e *testEnv) callTool(t *testing.T, toolName string, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	initMsg := map[string]any{
		"jsonrpc": "2.0",
		"id":      0,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": "2025-03-26",
			"capabilities":    map[string]any{},
			"clientInfo": map[string]any{
				"name":    "e2e-test",
				"version": "1.0.0",
			},
		},
	}
	rawInit, err := json.Marshal(initMsg)
	require.NoError(t, err)

	reqMsg := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": args,
		},
	}
	rawReq, err := json.Marshal(reqMsg)
	require.NoError(t, err)

	ctx := context.Background()
	mcpSrv := e.server.MCPServer()

	initResp := mcpSrv.HandleMessage(ctx, rawInit)
	require.NotNil(t, initResp)

	resp := mcpSrv.HandleMessage(ctx, rawReq)
	require.NotNil(t, resp)

	respBytes, err := json.Marshal(resp)
	require.NoError(t, err)

	var rpcResp struct {
		Result *mcp.CallToolResult `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &rpcResp))

	if rpcResp.Error != nil {
		t.Fatalf("JSON-RPC error: code=%d, msg=%s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	require.NotNil(t, rpcResp.Result)
	return rpcResp.Result
}

// extractJSON extracts text content from a tool result and parses it as JSON.
func extractJSON(t *testing.T, result *mcp.CallToolResult, target any) {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text := mcp.GetTextFromContent(result.Content[0])
	require.NoError(t, json.Unmarshal([]byte(text), target))
}

// renderPayload mirrors the wire shape of a seamark.render result.
type renderPayload struct {
	Verdict struct {
		Valid bool   `json:"valid"`
		Kind  string `json:"kind"`
		Errors []struct {
			Message string `json:"message"`
			Line    int    `json:"line,omitempty"`
		} `json:"errors"`
	} `json:"verdict"`
	AppliedFix  bool   `json:"applied_fix"`
	FixedCode   string `json:"fixed_code"`
	RenderError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"render_error"`
	Images []struct {
		Format    string `json:"format"`
		Data      string `json:"data"`
		Reference string `json:"reference"`
		Bytes     int    `json:"bytes"`
	} `json:"images"`
}

// --- E2E Tests ---

// TestRenderLifecycle exercises validate -> render -> inline result over
// the full JSON-RPC surface.
func TestRenderLifecycle(t *testing.T) {
	env := newTestEnv(t, 0)

	result := env.callTool(t, "seamark.render", map[string]any{
		"code": "flowchart TD\n A-->B",
	})
	assert.False(t, result.IsError)

	var payload renderPayload
	extractJSON(t, result, &payload)
	assert.True(t, payload.Verdict.Valid)
	assert.Equal(t, "flowchart", payload.Verdict.Kind)
	assert.False(t, payload.AppliedFix)
	require.Len(t, payload.Images, 1)
	assert.Equal(t, "png", payload.Images[0].Format)

	decoded, err := base64.StdEncoding.DecodeString(payload.Images[0].Data)
	require.NoError(t, err)
	assert.Equal(t, "png:flowchart TD\n A-->B", string(decoded))
}

// TestAutoFixThenRender proves a repairable diagram round-trips through
// the fixer and renders the repaired code.
func TestAutoFixThenRender(t *testing.T) {
	env := newTestEnv(t, 0)

	result := env.callTool(t, "seamark.render", map[string]any{
		"code": "flowchart TD\n A[Start --> B",
	})
	assert.False(t, result.IsError)

	var payload renderPayload
	extractJSON(t, result, &payload)
	assert.True(t, payload.Verdict.Valid)
	assert.True(t, payload.AppliedFix)
	assert.Equal(t, "flowchart TD\n A[Start --> B]", payload.FixedCode)
	require.Len(t, payload.Images, 1)

	// The repaired code, not the original, is what got rendered.
	decoded, err := base64.StdEncoding.DecodeString(payload.Images[0].Data)
	require.NoError(t, err)
	assert.Equal(t, "png:"+payload.FixedCode, string(decoded))
}

// TestInvalidDiagramSkipsRender keeps validation failures as normal
// results carrying the verdict, with no render attempt.
func TestInvalidDiagramSkipsRender(t *testing.T) {
	env := newTestEnv(t, 0)

	result := env.callTool(t, "seamark.render", map[string]any{
		"code":       "sequenceDiagram\n participant Alice",
		"fix_errors": false,
	})
	assert.False(t, result.IsError)

	var payload renderPayload
	extractJSON(t, result, &payload)
	assert.False(t, payload.Verdict.Valid)
	assert.NotEmpty(t, payload.Verdict.Errors)
	assert.Empty(t, payload.Images)
}

// TestRenderFailureIsPayload folds renderer faults into the result shape.
func TestRenderFailureIsPayload(t *testing.T) {
	env := newTestEnv(t, 0)
	env.renderer.err = schema.NewError(schema.ErrCodeCrash, "browser connection lost")

	result := env.callTool(t, "seamark.render", map[string]any{
		"code": "flowchart TD\n A-->B",
	})
	assert.False(t, result.IsError)

	var payload renderPayload
	extractJSON(t, result, &payload)
	assert.True(t, payload.Verdict.Valid)
	require.NotNil(t, payload.RenderError)
	assert.Equal(t, schema.ErrCodeCrash, payload.RenderError.Code)
	assert.Empty(t, payload.Images)
}

// TestReferenceFetchRoundTrip stores an oversized payload and fetches it back.
func TestReferenceFetchRoundTrip(t *testing.T) {
	env := newTestEnv(t, 4)

	result := env.callTool(t, "seamark.render", map[string]any{
		"code":    "flowchart TD\n A-->B",
		"formats": []any{"svg"},
	})
	assert.False(t, result.IsError)

	var payload renderPayload
	extractJSON(t, result, &payload)
	require.Len(t, payload.Images, 1)
	assert.Empty(t, payload.Images[0].Data)
	require.NotEmpty(t, payload.Images[0].Reference)

	fetch := env.callTool(t, "seamark.fetch", map[string]any{
		"reference": payload.Images[0].Reference,
	})
	assert.False(t, fetch.IsError)

	var fetched struct {
		Format string `json:"format"`
		Data   string `json:"data"`
	}
	extractJSON(t, fetch, &fetched)
	assert.Equal(t, "svg", fetched.Format)

	decoded, err := base64.StdEncoding.DecodeString(fetched.Data)
	require.NoError(t, err)
	assert.Equal(t, "svg:flowchart TD\n A-->B", string(decoded))
}

// TestStyleRejectionViaJSONRPC surfaces unknown style keys as tool errors.
func TestStyleRejectionViaJSONRPC(t *testing.T) {
	env := newTestEnv(t, 0)

	result := env.callTool(t, "seamark.render", map[string]any{
		"code":  "flowchart TD\n A-->B",
		"style": map[string]any{"border": "dashed"},
	})
	assert.True(t, result.IsError)
}

// TestExamplesValidate confirms every gallery example passes its own pipeline.
func TestExamplesValidate(t *testing.T) {
	env := newTestEnv(t, 0)

	result := env.callTool(t, "seamark.examples", map[string]any{})
	assert.False(t, result.IsError)

	var listing struct {
		Examples map[string]string `json:"examples"`
	}
	extractJSON(t, result, &listing)
	require.NotEmpty(t, listing.Examples)

	for kind, code := range listing.Examples {
		rendered := env.callTool(t, "seamark.render", map[string]any{"code": code})
		var payload renderPayload
		extractJSON(t, rendered, &payload)
		assert.True(t, payload.Verdict.Valid, "example for %s should validate: %+v", kind, payload.Verdict.Errors)
		assert.Equal(t, kind, payload.Verdict.Kind)
	}
}

// TestToolsListViaJSONRPC checks the advertised tool surface.
func TestToolsListViaJSONRPC(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()
	mcpSrv := env.server.MCPServer()

	initMsg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      0,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": "2025-03-26",
			"capabilities":    map[string]any{},
			"clientInfo":      map[string]any{"name": "e2e-test", "version": "1.0.0"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, mcpSrv.HandleMessage(ctx, initMsg))

	listMsg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/list",
	})
	require.NoError(t, err)

	resp := mcpSrv.HandleMessage(ctx, listMsg)
	respBytes, err := json.Marshal(resp)
	require.NoError(t, err)

	var rpcResp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &rpcResp))

	names := make([]string, 0, len(rpcResp.Result.Tools))
	for _, tool := range rpcResp.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"seamark.render", "seamark.fetch", "seamark.examples"}, names)
}
