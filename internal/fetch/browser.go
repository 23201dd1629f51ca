package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/lepinkainen/bookscout/internal/errors"
	"github.com/lepinkainen/bookscout/internal/ratelimit"
)

var (
	chromedpExecAllocator = chromedp.NewExecAllocator
	chromedpContext       = chromedp.NewContext
	chromedpRunner        = chromedp.Run
)

// BrowserOptions configures a BrowserClient.
type BrowserOptions struct {
	Headless    bool
	UserAgent   string
	RateLimiter *ratelimit.Limiter
}

// BrowserClient renders pages in a headless Chrome and returns the final
// DOM. The browser is started on the first Get and stopped by Close.
type BrowserClient struct {
	opts BrowserOptions

	mu      sync.Mutex
	cancels []context.CancelFunc
}

// NewBrowserClient creates a browser client. No browser process is started
// until the first Get.
func NewBrowserClient(opts BrowserOptions) *BrowserClient {
	return &BrowserClient{opts: opts}
}

// Get navigates to pageURL and returns the rendered document.
func (c *BrowserClient) Get(ctx context.Context, pageURL string) ([]byte, error) {
	if err := c.opts.RateLimiter.Wait(ctx); err != nil {
		return nil, errors.NewTimeoutError(pageURL, err)
	}

	allocCtx, cancelAllocator := chromedpExecAllocator(ctx, buildExecAllocatorOptions(c.opts)...)
	browserCtx, cancelBrowser := chromedpContext(allocCtx)
	c.track(cancelAllocator, cancelBrowser)

	slog.DebugContext(ctx, "Rendering page in browser", "url", pageURL, "headless", c.opts.Headless)

	var rendered string
	err := chromedpRunner(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.OuterHTML("html", &rendered, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewTimeoutError(pageURL, err)
		}
		return nil, errors.NewFetchError(pageURL, fmt.Errorf("browser navigation failed: %w", err))
	}

	return []byte(rendered), nil
}

// Close stops every browser started by Get.
func (c *BrowserClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.cancels) - 1; i >= 0; i-- {
		c.cancels[i]()
	}
	c.cancels = nil
	return nil
}

func (c *BrowserClient) track(cancelAllocator, cancelBrowser context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancels = append(c.cancels, cancelAllocator, cancelBrowser)
}

func buildExecAllocatorOptions(opts BrowserOptions) []chromedp.ExecAllocatorOption {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-default-apps", true),
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	return allocOpts
}
