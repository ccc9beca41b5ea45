// Package snapshot captures a rendered visualization page with headless Chrome.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/psidex/visualizer/internal/lib"
)

type Options struct {
	// ContainerID is the element to wait for before capturing.
	ContainerID string
	// Timeout bounds the whole capture.
	Timeout time.Duration
	// Settle is how long to let the layout run once the container is visible.
	Settle time.Duration
	// Quality is the PNG screenshot quality, 0-100.
	Quality int
	Logger  *slog.Logger
}

// DefaultOptions waits for the app container and lets the layout run for its full
// simulation time.
func DefaultOptions() Options {
	return Options{
		ContainerID: "app",
		Timeout:     30 * time.Second,
		Settle:      1500 * time.Millisecond,
		Quality:     90,
		Logger:      lib.DiscardLogger(),
	}
}

// Result is a captured page.
type Result struct {
	PNG []byte
	// DownloadedBytes counts the encoded bytes of every network response the page made.
	DownloadedBytes int64
	Duration        time.Duration
}

// Capture navigates to url, waits for the container, lets the layout settle and takes
// a full page screenshot.
func Capture(ctx context.Context, url string, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = lib.DiscardLogger()
	}
	startTime := time.Now()

	timeoutCtx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	chromeCtx, cancel := chromedp.NewContext(timeoutCtx)
	defer cancel()

	// Events arrive on chromedp's own goroutine.
	var downloadedBytes atomic.Int64
	countBytesAction := func(ctx context.Context) error {
		chromedp.ListenTarget(ctx, func(ev interface{}) {
			switch ev := ev.(type) {
			case *network.EventLoadingFinished:
				downloadedBytes.Add(int64(ev.EncodedDataLength))
			}
		})
		return nil
	}

	opts.Logger.Debug("Capturing page", "url", url, "container", opts.ContainerID)

	var png []byte
	err := chromedp.Run(chromeCtx,
		network.Enable(),
		chromedp.ActionFunc(countBytesAction),
		chromedp.Navigate(url),
		chromedp.WaitVisible("#"+opts.ContainerID, chromedp.ByQuery),
		chromedp.Sleep(opts.Settle),
		chromedp.FullScreenshot(&png, opts.Quality),
	)
	if err != nil {
		return nil, fmt.Errorf("capture %s: %w", url, err)
	}

	result := &Result{
		PNG:             png,
		DownloadedBytes: downloadedBytes.Load(),
		Duration:        time.Since(startTime),
	}
	opts.Logger.Info("Captured page", "url", url, "bytes", len(png), "downloaded", result.DownloadedBytes, "duration", result.Duration)
	return result, nil
}
