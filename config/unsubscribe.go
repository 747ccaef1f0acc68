package config

import "time"

const (
	defaultOneClickConcurrency = 5
	defaultBrowserConcurrency  = 3
	maxLaneConcurrency         = 64
	defaultUserAgent           = "Gmail-Unsubscribe-Client/1.0"
)

// UnsubscribeConfig contains lane bounds and per-strategy timeouts.
type UnsubscribeConfig struct {
	// OneClickConcurrency bounds the one-click lane. The mailto-only lane shares this bound.
	OneClickConcurrency int `env:"ONE_CLICK_CONCURRENCY" envDefault:"5"`

	// BrowserConcurrency bounds the number of concurrently open browser sessions.
	BrowserConcurrency int `env:"BROWSER_CONCURRENCY" envDefault:"3"`

	// HTTPTimeout is the per-attempt timeout of a one-click POST.
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`

	// HTTPMaxRetries is the number of retries after the first one-click attempt.
	HTTPMaxRetries int `env:"HTTP_MAX_RETRIES" envDefault:"2"`

	// HTTPBackoffFactor is the base of the exponential wait between one-click attempts, in seconds.
	HTTPBackoffFactor float64 `env:"HTTP_BACKOFF_FACTOR" envDefault:"1.5"`

	PageLoadTimeout time.Duration `env:"PAGE_LOAD_TIMEOUT" envDefault:"15s"`
	ElementWait     time.Duration `env:"ELEMENT_WAIT"      envDefault:"3s"`

	UserAgent string `env:"USER_AGENT" envDefault:"Gmail-Unsubscribe-Client/1.0"`
}

// Sanitize applies guardrails to unsubscribe configuration values.
func (u *UnsubscribeConfig) Sanitize() {
	u.OneClickConcurrency = clampConcurrency(u.OneClickConcurrency, defaultOneClickConcurrency)
	u.BrowserConcurrency = clampConcurrency(u.BrowserConcurrency, defaultBrowserConcurrency)
	if u.HTTPTimeout <= 0 {
		u.HTTPTimeout = 15 * time.Second
	}
	if u.HTTPMaxRetries < 0 {
		u.HTTPMaxRetries = 0
	}
	if u.HTTPBackoffFactor < 1 {
		u.HTTPBackoffFactor = 1
	}
	if u.PageLoadTimeout <= 0 {
		u.PageLoadTimeout = 15 * time.Second
	}
	if u.ElementWait <= 0 {
		u.ElementWait = 3 * time.Second
	}
	if u.UserAgent == "" {
		u.UserAgent = defaultUserAgent
	}
}

func clampConcurrency(v, def int) int {
	if v < 1 {
		return def
	}
	return min(v, maxLaneConcurrency)
}
