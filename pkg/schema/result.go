package schema

// RenderResult is the unified outcome of one validate-and-render cycle.
// Render failures are carried as a RenderError entry, never thrown past the
// orchestrator, so callers always inspect the same shape.
type RenderResult struct {
	Verdict Verdict `json:"verdict"`
	// Images maps each requested output format to its raw bytes.
	// Empty when no render was attempted or the render failed.
	Images map[OutputFormat][]byte `json:"-"`
	// AppliedFix is true when the auto-fixer altered the code before a
	// successful re-validation.
	AppliedFix bool `json:"applied_fix"`
	// FixedCode carries the repaired source when AppliedFix is true.
	FixedCode string `json:"fixed_code,omitempty"`
	// RenderError describes a render-stage failure (timeout, crash, library
	// rejection). Nil when rendering succeeded or was never attempted.
	RenderError *SeamarkError `json:"render_error,omitempty"`
}

// Rendered reports whether every requested format produced bytes.
func (r *RenderResult) Rendered() bool {
	return r.RenderError == nil && len(r.Images) > 0
}
