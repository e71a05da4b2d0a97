// Package render turns validated diagram code into image bytes using a
// shared headless-browser process. One Engine owns one browser; each render
// call gets an isolated tab that is closed on every exit path.
package render

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/rendis/seamark/pkg/schema"
)

const diagramSelector = "#diagram svg"

// Options configures the render engine.
type Options struct {
	// ChromePath overrides browser binary discovery. Empty uses the default
	// lookup order.
	ChromePath string
	// MaxPages bounds how many tabs may be open concurrently against the
	// shared browser. Requests beyond the bound wait in FIFO order.
	MaxPages int
	// MermaidSource is the mermaid.js script URL injected into render pages.
	MermaidSource string
}

// Renderer is the contract the orchestrator depends on.
type Renderer interface {
	Render(ctx context.Context, code string, kind schema.DiagramKind, cfg schema.RenderConfig) (map[schema.OutputFormat][]byte, error)
	Close()
}

// Engine renders diagrams through a lazily created, crash-replaceable
// browser handle. The handle is the only mutable shared state; it is
// swapped wholesale under the mutex so callers observe either the old or
// the new handle, never a half-initialized one.
type Engine struct {
	opts   Options
	logger *slog.Logger
	sem    chan struct{}

	mu     sync.Mutex
	handle *Handle
	closed bool
}

// NewEngine creates an Engine. The browser process is not launched until the
// first render call needs it.
func NewEngine(opts Options, logger *slog.Logger) *Engine {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 4
	}
	if opts.MermaidSource == "" {
		opts.MermaidSource = DefaultMermaidSource
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		opts:   opts,
		logger: logger,
		sem:    make(chan struct{}, opts.MaxPages),
	}
}

// Render validates nothing: it assumes code already passed the syntax
// checker. The deadline rides on ctx; on expiry the in-flight tab is
// force-closed and a RENDER_TIMEOUT error is returned. A connection-level
// browser failure tears the handle down for lazy recreation and returns
// RENDER_CRASH; the call is not retried here.
func (e *Engine) Render(ctx context.Context, code string, kind schema.DiagramKind, cfg schema.RenderConfig) (map[schema.OutputFormat][]byte, error) {
	// Admission: bounded tab count against the shared browser, FIFO while
	// waiting, still subject to the overall deadline.
	select {
	case e.sem <- struct{}{}:
		defer func() { <-e.sem }()
	case <-ctx.Done():
		return nil, e.classify(ctx, nil, ctx.Err())
	}

	handle, err := e.acquireHandle()
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeCrash, "browser launch failed").WithCause(err)
	}

	images, err := e.renderInTab(ctx, handle, code, kind, cfg)
	if err != nil {
		return nil, e.classify(ctx, handle, err)
	}
	return images, nil
}

// renderInTab opens a fresh tab, drives the page to completion, and captures
// the requested formats. The tab is closed on every exit path.
func (e *Engine) renderInTab(ctx context.Context, handle *Handle, code string, kind schema.DiagramKind, cfg schema.RenderConfig) (map[schema.OutputFormat][]byte, error) {
	code = applyDirection(code, kind, cfg.Direction)
	page, err := buildPage(code, cfg, e.opts.MermaidSource)
	if err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(handle.browserCtx)
	defer tabCancel()

	// Tie the tab to the caller's deadline and cancellation: when ctx ends,
	// the in-flight tab is force-closed.
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		tabCtx, cancel = context.WithDeadline(tabCtx, deadline)
		defer cancel()
	}
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	pageURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(page))

	var ready bool
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.Poll(`window.__seamarkDone === true || window.__seamarkError !== undefined`, &ready),
	); err != nil {
		return nil, err
	}

	// The library's own grammar is stricter than the syntax checker; its
	// rejection message is surfaced verbatim.
	var libErr string
	if err := chromedp.Run(tabCtx,
		chromedp.Evaluate(`window.__seamarkError || ""`, &libErr),
	); err != nil {
		return nil, err
	}
	if libErr != "" {
		return nil, schema.NewError(schema.ErrCodeRejected, libErr)
	}

	images := make(map[schema.OutputFormat][]byte, len(cfg.Formats))

	if cfg.WantsFormat(schema.FormatSVG) {
		svg, err := e.captureSVG(tabCtx, cfg)
		if err != nil {
			return nil, err
		}
		images[schema.FormatSVG] = svg
	}

	if cfg.WantsFormat(schema.FormatPNG) {
		png, err := e.capturePNG(tabCtx, cfg)
		if err != nil {
			return nil, err
		}
		images[schema.FormatPNG] = png
	}

	return images, nil
}

// captureSVG extracts the rendered vector markup from the document. A white
// background paints an explicit fill on the svg element; transparent leaves
// the markup untouched.
func (e *Engine) captureSVG(tabCtx context.Context, cfg schema.RenderConfig) ([]byte, error) {
	actions := []chromedp.Action{}
	if cfg.Background == schema.BackgroundWhite {
		actions = append(actions, chromedp.Evaluate(
			`document.querySelector('`+diagramSelector+`').style.backgroundColor = 'white'`, nil))
	}

	var svg string
	actions = append(actions, chromedp.Evaluate(
		`(function () { var s = document.querySelector('`+diagramSelector+`'); return s ? s.outerHTML : ''; })()`,
		&svg))

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return nil, err
	}
	if svg == "" {
		return nil, schema.NewError(schema.ErrCodeRender, "rendered svg element not found")
	}
	return []byte(svg), nil
}

// capturePNG screenshots the diagram's natural bounding box. No fixed canvas
// size is imposed; the only scaling is the configured device-pixel-ratio
// multiplier.
func (e *Engine) capturePNG(tabCtx context.Context, cfg schema.RenderConfig) ([]byte, error) {
	var actions []chromedp.Action

	if scale := cfg.EffectiveScale(); scale != 1 {
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetDeviceMetricsOverride(0, 0, scale, false).Do(ctx)
		}))
	}

	if cfg.Background == schema.BackgroundTransparent {
		// Zero-alpha override keeps the capture from painting a backing
		// rectangle behind the diagram.
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetDefaultBackgroundColorOverride().
				WithColor(&cdp.RGBA{R: 0, G: 0, B: 0, A: 0}).Do(ctx)
		}))
	}

	var buf []byte
	actions = append(actions, chromedp.Screenshot(diagramSelector, &buf, chromedp.NodeVisible, chromedp.ByQuery))

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, schema.NewError(schema.ErrCodeRender, "empty screenshot")
	}
	return buf, nil
}

// acquireHandle returns the live browser handle, launching one if needed.
func (e *Engine) acquireHandle() (*Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, errors.New("render engine is closed")
	}
	if e.handle != nil && e.handle.Alive() {
		return e.handle, nil
	}
	if e.handle != nil {
		e.handle.Close()
		e.handle = nil
	}

	e.logger.Info("launching browser", slog.String("chrome_path", e.opts.ChromePath))
	handle, err := newHandle(e.opts.ChromePath)
	if err != nil {
		return nil, err
	}
	e.handle = handle
	return handle, nil
}

// invalidate discards the handle after a confirmed crash so the next request
// launches a fresh browser. A handle that was already replaced is left alone.
func (e *Engine) invalidate(handle *Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.handle == handle && e.handle != nil {
		e.handle.Close()
		e.handle = nil
	}
}

// classify maps a raw render failure onto the error taxonomy. Deadline
// expiry is a timeout (the browser survives); a dead browser context or a
// connection-level failure is a crash and tears the handle down.
func (e *Engine) classify(ctx context.Context, handle *Handle, err error) error {
	var se *schema.SeamarkError
	if errors.As(err, &se) {
		return se
	}

	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return schema.NewError(schema.ErrCodeTimeout, "render deadline exceeded").WithCause(err)
	}
	if errors.Is(err, context.Canceled) && ctx.Err() == context.Canceled {
		return schema.NewError(schema.ErrCodeTimeout, "render cancelled").WithCause(err)
	}

	if handle != nil && (!handle.Alive() || looksLikeConnectionError(err)) {
		e.logger.Warn("browser crash detected, discarding handle", slog.String("error", err.Error()))
		e.invalidate(handle)
		return schema.NewError(schema.ErrCodeCrash, "browser process became unreachable").WithCause(err)
	}

	return schema.NewError(schema.ErrCodeRender, err.Error()).WithCause(err)
}

// looksLikeConnectionError reports whether an error smells like a severed
// browser connection rather than a page-level failure.
func looksLikeConnectionError(err error) bool {
	msg := err.Error()
	for _, marker := range []string{
		"websocket",
		"connection refused",
		"connection reset",
		"broken pipe",
		"unexpected EOF",
		"chrome failed to start",
		"target closed",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Close shuts the engine down and tears down the browser process. Render
// calls after Close fail.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	if e.handle != nil {
		e.handle.Close()
		e.handle = nil
	}
}
