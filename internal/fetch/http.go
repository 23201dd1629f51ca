// Package fetch provides the page clients a store uses: a plain HTTP client
// and a headless browser client for pages that need JavaScript.
package fetch

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"github.com/lepinkainen/bookscout/internal/errors"
	"github.com/lepinkainen/bookscout/internal/ratelimit"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// HTTPOptions configures an HTTPClient.
type HTTPOptions struct {
	UserAgent      string
	AcceptLanguage string
	// CloudflareBypass wraps the transport with browser-like TLS and headers.
	CloudflareBypass bool
	RateLimiter      *ratelimit.Limiter
	// Transport replaces the default transport, mainly for tests.
	Transport http.RoundTripper
}

// HTTPClient is a single-use page client with its own cookie jar.
type HTTPClient struct {
	client  *resty.Client
	limiter *ratelimit.Limiter
}

// NewHTTPClient creates a client with a fresh cookie jar.
func NewHTTPClient(opts HTTPOptions) (*HTTPClient, error) {
	client := resty.New()

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	client.SetCookieJar(jar)

	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	client.SetHeader("User-Agent", userAgent)
	if opts.AcceptLanguage != "" {
		client.SetHeader("Accept-Language", opts.AcceptLanguage)
	}
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	instrumentClient(client)

	return &HTTPClient{client: client, limiter: opts.RateLimiter}, nil
}

// Get fetches pageURL. Every failure is returned as an *errors.FetchError.
func (c *HTTPClient) Get(ctx context.Context, pageURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.NewTimeoutError(pageURL, err)
	}

	res, err := c.client.R().
		SetContext(ctx).
		Get(pageURL)
	if err != nil {
		return nil, classifyError(ctx, pageURL, err)
	}

	switch {
	case res.StatusCode() == http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(res.Header().Get("Retry-After"), time.Now())
		return nil, errors.NewStatusError(pageURL, res.StatusCode(),
			errors.NewRateLimitErrorWithRetry("store rate limit exceeded", retryAfter))
	case !res.IsSuccess():
		return nil, errors.NewStatusError(pageURL, res.StatusCode(), nil)
	}

	return res.Body(), nil
}

// Close releases idle connections held by the client.
func (c *HTTPClient) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}

func classifyError(ctx context.Context, pageURL string, err error) error {
	if stdErrors.Is(err, context.DeadlineExceeded) || stdErrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.NewTimeoutError(pageURL, err)
	}
	var urlErr *url.Error
	if stdErrors.As(err, &urlErr) && urlErr.Timeout() {
		return errors.NewTimeoutError(pageURL, err)
	}
	return errors.NewFetchError(pageURL, err)
}

// parseRetryAfter understands both delta-seconds and HTTP-date values.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil && at.After(now) {
		return at.Sub(now).Round(time.Second)
	}
	return 0
}
