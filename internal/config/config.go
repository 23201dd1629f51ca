package config

import (
	"time"

	"github.com/lepinkainen/bookscout/internal/fetch"
	"github.com/spf13/viper"
)

// Default values
const (
	DefaultSite       = "adlibris"
	DefaultTimeout    = 10 * time.Second
	DefaultMaxResults = 10
	DefaultRateLimit  = 2.0
)

// Global configuration variables
var (
	// Site is the registry name of the store to scrape
	Site string
	// BaseURL overrides the site's storefront URL when set
	BaseURL string
	// Timeout bounds every single page fetch
	Timeout time.Duration
	// MaxResults is the default number of search results
	MaxResults int
	// UserAgent is sent with every request
	UserAgent string
	// RateLimit is the number of requests per second sent to the store (0 disables)
	RateLimit float64
	// UseBrowser fetches pages through headless Chrome instead of plain HTTP
	UseBrowser bool
	// Headless controls whether the browser window is hidden
	Headless bool
	// CloudflareBypass wraps the HTTP transport with browser-like TLS settings
	CloudflareBypass bool
)

// SetDefaults registers the default values with viper.
func SetDefaults() {
	viper.SetDefault("store.site", DefaultSite)
	viper.SetDefault("store.baseurl", "")
	viper.SetDefault("store.timeout", DefaultTimeout.String())
	viper.SetDefault("store.maxresults", DefaultMaxResults)
	viper.SetDefault("http.useragent", fetch.DefaultUserAgent)
	viper.SetDefault("http.ratelimit", DefaultRateLimit)
	viper.SetDefault("http.browser", false)
	viper.SetDefault("http.headless", true)
	viper.SetDefault("http.cloudflare", true)
}

// InitConfig initializes the global configuration
func InitConfig() {
	SetDefaults()

	Site = viper.GetString("store.site")
	BaseURL = viper.GetString("store.baseurl")
	Timeout = viper.GetDuration("store.timeout")
	MaxResults = viper.GetInt("store.maxresults")
	UserAgent = viper.GetString("http.useragent")
	RateLimit = viper.GetFloat64("http.ratelimit")
	UseBrowser = viper.GetBool("http.browser")
	Headless = viper.GetBool("http.headless")
	CloudflareBypass = viper.GetBool("http.cloudflare")

	if Timeout <= 0 {
		Timeout = DefaultTimeout
	}
	if MaxResults < 1 {
		MaxResults = DefaultMaxResults
	}
}

// SetSite sets the Site value
func SetSite(site string) {
	if site != "" {
		Site = site
	}
}

// SetUseBrowser sets the UseBrowser flag
func SetUseBrowser(useBrowser bool) {
	UseBrowser = useBrowser
}
