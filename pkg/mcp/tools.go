package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rendis/seamark/internal/gallery"
	"github.com/rendis/seamark/internal/logging"
	"github.com/rendis/seamark/internal/pipeline"
	"github.com/rendis/seamark/pkg/schema"
)

// renderResponse is the wire shape of a seamark.render result. Every outcome,
// including validation and render failures, uses this one shape.
type renderResponse struct {
	Verdict     schema.Verdict       `json:"verdict"`
	AppliedFix  bool                 `json:"applied_fix"`
	FixedCode   string               `json:"fixed_code,omitempty"`
	RenderError *schema.SeamarkError `json:"render_error,omitempty"`
	Images      []imagePayload       `json:"images,omitempty"`
}

// imagePayload carries one rendered output, either inline or by reference.
type imagePayload struct {
	Format schema.OutputFormat `json:"format"`
	// Data is the base64-encoded payload when returned inline.
	Data string `json:"data,omitempty"`
	// Reference is set instead of Data when the payload was stored for
	// seamark.fetch, with Bytes reporting its size.
	Reference string `json:"reference,omitempty"`
	Bytes     int    `json:"bytes,omitempty"`
}

// handleRender runs the validate-and-render cycle for one diagram.
func (s *SeamarkServer) handleRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = logging.WithTool(ctx, "seamark.render")

	code, err := req.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError("code is required"), nil
	}

	cfg, cfgErr := s.style.Config(mcp.ParseStringMap(req, "style", nil))
	if cfgErr != nil {
		return mcp.NewToolResultError(cfgErr.Error()), nil
	}

	formats := req.GetStringSlice("formats", nil)
	if len(formats) > 0 {
		cfg.Formats = cfg.Formats[:0]
		for _, f := range formats {
			parsed, parseErr := schema.ParseOutputFormat(f)
			if parseErr != nil {
				return mcp.NewToolResultError(parseErr.Error()), nil
			}
			cfg.Formats = append(cfg.Formats, parsed)
		}
	}

	preq := pipeline.Request{
		Code:      code,
		Config:    cfg,
		FixErrors: req.GetBool("fix_errors", true),
		Deadline:  time.Duration(req.GetInt("deadline_ms", 0)) * time.Millisecond,
	}

	result, procErr := s.pipeline.Process(ctx, preq)
	if procErr != nil {
		return mcp.NewToolResultError(procErr.Error()), nil
	}

	inline := req.GetBool("inline", true)
	return marshalResult(s.buildResponse(result, inline))
}

// buildResponse folds a pipeline result into the wire shape, storing any
// payload that cannot go inline as a fetchable artifact.
func (s *SeamarkServer) buildResponse(result schema.RenderResult, inline bool) renderResponse {
	resp := renderResponse{
		Verdict:     result.Verdict,
		AppliedFix:  result.AppliedFix,
		FixedCode:   result.FixedCode,
		RenderError: result.RenderError,
	}

	// Deterministic ordering for callers and tests.
	formats := make([]schema.OutputFormat, 0, len(result.Images))
	for f := range result.Images {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })

	for _, f := range formats {
		data := result.Images[f]
		if inline && len(data) <= s.inlineLimit {
			resp.Images = append(resp.Images, imagePayload{
				Format: f,
				Data:   base64.StdEncoding.EncodeToString(data),
			})
			continue
		}
		resp.Images = append(resp.Images, imagePayload{
			Format:    f,
			Reference: s.artifacts.Put(f, data),
			Bytes:     len(data),
		})
	}
	return resp
}

// handleFetch returns a stored rendered output by reference.
func (s *SeamarkServer) handleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = logging.WithTool(ctx, "seamark.fetch")

	reference, err := req.RequireString("reference")
	if err != nil {
		return mcp.NewToolResultError("reference is required"), nil
	}

	art, getErr := s.artifacts.Get(reference)
	if getErr != nil {
		s.logger.DebugContext(ctx, "fetch miss", slog.String("reference", reference))
		return mcp.NewToolResultError(getErr.Error()), nil
	}

	return marshalResult(map[string]any{
		"reference": art.ID,
		"format":    art.Format,
		"data":      base64.StdEncoding.EncodeToString(art.Data),
	})
}

// handleExamples returns one example or the full gallery.
func (s *SeamarkServer) handleExamples(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := req.GetString("kind", "")
	if kind == "" {
		all := gallery.All()
		out := make(map[string]string, len(all))
		for k, code := range all {
			out[string(k)] = code
		}
		return marshalResult(map[string]any{"examples": out})
	}

	code, ok := gallery.Example(schema.DiagramKind(kind))
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no example for diagram kind %q", kind)), nil
	}
	return marshalResult(map[string]any{
		"kind":    kind,
		"example": code,
	})
}

// marshalResult converts a value to a JSON text tool result.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
