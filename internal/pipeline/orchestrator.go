// Package pipeline composes validation, repair, and rendering into one
// request/response cycle.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rendis/seamark/internal/lint"
	"github.com/rendis/seamark/internal/logging"
	"github.com/rendis/seamark/internal/render"
	"github.com/rendis/seamark/pkg/schema"
)

// Options bounds the per-request time budget.
type Options struct {
	// DefaultDeadline applies when a request carries none.
	DefaultDeadline time.Duration
	// MaxDeadline is the service-wide ceiling; larger requests are clamped.
	MaxDeadline time.Duration
}

// Request is one validate-and-render cycle's input. Values are consumed
// once and never mutated; repairs produce a new code string.
type Request struct {
	Code      string
	Config    schema.RenderConfig
	FixErrors bool
	// Deadline is the caller's time budget. Zero means the default.
	Deadline time.Duration
}

// Orchestrator runs the cycle: validate, optionally auto-fix and re-validate
// once, render with the remaining budget, and fold every failure into the
// result shape. No render-stage error escapes as a Go error.
type Orchestrator struct {
	renderer render.Renderer
	logger   *slog.Logger
	opts     Options
}

// New creates an Orchestrator.
func New(renderer render.Renderer, opts Options, logger *slog.Logger) *Orchestrator {
	if opts.DefaultDeadline <= 0 {
		opts.DefaultDeadline = 30 * time.Second
	}
	if opts.MaxDeadline <= 0 {
		opts.MaxDeadline = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{renderer: renderer, logger: logger, opts: opts}
}

// Process runs one request through the pipeline. The returned error is
// non-nil only for an invalid RenderConfig; everything downstream, including
// render failures, is reported inside the RenderResult.
func (o *Orchestrator) Process(ctx context.Context, req Request) (schema.RenderResult, error) {
	if err := req.Config.Validate(); err != nil {
		return schema.RenderResult{}, err
	}

	ctx = logging.WithRequestID(ctx, uuid.New().String())

	deadline := req.Deadline
	if deadline <= 0 {
		deadline = o.opts.DefaultDeadline
	}
	if deadline > o.opts.MaxDeadline {
		deadline = o.opts.MaxDeadline
	}
	// One budget covers the whole cycle: rendering gets whatever validation
	// and repair left over, never a fresh deadline.
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	code := req.Code
	verdict := lint.Validate(code)
	ctx = logging.WithDiagramKind(ctx, string(verdict.Kind))

	result := schema.RenderResult{Verdict: verdict}

	if !verdict.Valid && req.FixErrors {
		fixed := lint.AttemptFix(code, verdict)
		if fixed != code {
			// Exactly one re-validation; no repair loop.
			refixed := lint.Validate(fixed)
			if refixed.Valid {
				code = fixed
				result.Verdict = refixed
				result.AppliedFix = true
				result.FixedCode = fixed
				o.logger.DebugContext(ctx, "auto-fix repaired diagram")
			}
		}
	}

	if !result.Verdict.Valid {
		// Expected negative outcome, not a system fault.
		o.logger.DebugContext(ctx, "validation failed",
			slog.Int("errors", len(result.Verdict.Errors)))
		return result, nil
	}

	images, err := o.renderer.Render(ctx, code, result.Verdict.Kind, req.Config)
	if err != nil {
		result.RenderError = asSeamarkError(err)
		o.logger.WarnContext(ctx, "render failed",
			slog.String("code", result.RenderError.Code),
			slog.String("error", result.RenderError.Message))
		return result, nil
	}

	result.Images = images
	o.logger.InfoContext(ctx, "render succeeded",
		slog.Int("formats", len(images)),
		slog.Bool("applied_fix", result.AppliedFix))
	return result, nil
}

// asSeamarkError coerces any render failure into the structured taxonomy.
func asSeamarkError(err error) *schema.SeamarkError {
	var se *schema.SeamarkError
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return schema.NewError(schema.ErrCodeTimeout, "render deadline exceeded").WithCause(err)
	}
	return schema.NewError(schema.ErrCodeRender, err.Error()).WithCause(err)
}
