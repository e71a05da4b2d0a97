package render

import (
	"context"

	"github.com/chromedp/chromedp"
)

// Handle owns one headless browser process. There is at most one live Handle
// per Engine: it is created lazily on first render, replaced wholesale after
// a crash, and torn down on engine shutdown. It is never partially mutated.
type Handle struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// newHandle launches a browser process and blocks until it is reachable.
func newHandle(chromePath string) (*Handle, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Force the process to start now so launch failures surface here, not
	// in the middle of the first render.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, err
	}

	return &Handle{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}, nil
}

// Alive reports whether the browser context is still usable.
func (h *Handle) Alive() bool {
	return h.browserCtx.Err() == nil
}

// Close tears the browser process down. Safe to call more than once.
func (h *Handle) Close() {
	h.browserCancel()
	h.allocCancel()
}
