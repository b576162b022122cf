package scan

import "time"

// Network and buffer sizes
const (
	// MaxScriptSize caps how much of a single script body is read
	MaxScriptSize = 8 * 1024 * 1024 // 8MB

	// MaxRedirects is the maximum number of HTTP redirects to follow
	MaxRedirects = 5
)

// Timeouts and delays
const (
	// SettleDuration is how long the page is left to issue calls before reporting
	SettleDuration = 5 * time.Second

	// HTTPClientTimeout is the timeout for a single script fetch
	HTTPClientTimeout = 10 * time.Second

	// RunTimeout bounds a whole run, including waiting for pending scans
	RunTimeout = 60 * time.Second
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// DefaultUserAgent returns the User-Agent sent when none is configured.
func DefaultUserAgent() string { return defaultUserAgent }
