package testutil

import (
	"testing"
	"time"

	"github.com/lepinkainen/bookscout/internal/config"
	"github.com/spf13/viper"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	Site       string
	BaseURL    string
	Timeout    time.Duration
	MaxResults int
	UserAgent  string
	RateLimit  float64
	UseBrowser bool
	Headless   bool
	Cloudflare bool
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		Site:       config.Site,
		BaseURL:    config.BaseURL,
		Timeout:    config.Timeout,
		MaxResults: config.MaxResults,
		UserAgent:  config.UserAgent,
		RateLimit:  config.RateLimit,
		UseBrowser: config.UseBrowser,
		Headless:   config.Headless,
		Cloudflare: config.CloudflareBypass,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.Site = state.Site
	config.BaseURL = state.BaseURL
	config.Timeout = state.Timeout
	config.MaxResults = state.MaxResults
	config.UserAgent = state.UserAgent
	config.RateLimit = state.RateLimit
	config.UseBrowser = state.UseBrowser
	config.Headless = state.Headless
	config.CloudflareBypass = state.Cloudflare
}

// ResetConfig saves the current config state and schedules restoration
// when the test completes. It also resets viper.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetTestConfig points the store at baseURL with test friendly defaults: no
// rate limiting, a short timeout and a plain HTTP transport.
func SetTestConfig(t *testing.T, baseURL string) {
	t.Helper()

	ResetConfig(t)

	viper.Set("store.baseurl", baseURL)
	viper.Set("store.timeout", "5s")
	viper.Set("http.ratelimit", 0)
	viper.Set("http.useragent", "bookscout-test")
	viper.Set("http.cloudflare", false)
	config.InitConfig()
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		if hadValue {
			viper.Set(key, oldValue)
		}
		// Note: viper doesn't have an Unset function, so we can't
		// restore the "unset" state.
	})
}
