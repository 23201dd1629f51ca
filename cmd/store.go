package cmd

import (
	"log/slog"

	"github.com/lepinkainen/bookscout/internal/config"
	"github.com/lepinkainen/bookscout/internal/fetch"
	"github.com/lepinkainen/bookscout/internal/ratelimit"
	"github.com/lepinkainen/bookscout/internal/sites"
	"github.com/lepinkainen/bookscout/internal/store"
)

const acceptLanguage = "sv-SE,sv;q=0.9,en;q=0.8"

// newStore builds a Store for the configured site. Every fetch gets a fresh
// client; the rate limiter is shared between them.
var newStore = func() (*store.Store, error) {
	rules, err := sites.Lookup(config.Site, config.BaseURL)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.New(rules.Site().Name, config.RateLimit)
	return store.New(rules, newClientFactory(limiter), store.WithLogger(slog.Default())), nil
}

func newClientFactory(limiter *ratelimit.Limiter) store.ClientFactory {
	if config.UseBrowser {
		return func() (store.Client, error) {
			return fetch.NewBrowserClient(fetch.BrowserOptions{
				Headless:    config.Headless,
				UserAgent:   config.UserAgent,
				RateLimiter: limiter,
			}), nil
		}
	}

	return func() (store.Client, error) {
		client, err := fetch.NewHTTPClient(fetch.HTTPOptions{
			UserAgent:        config.UserAgent,
			AcceptLanguage:   acceptLanguage,
			CloudflareBypass: config.CloudflareBypass,
			RateLimiter:      limiter,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
