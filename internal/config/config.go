package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/dlclark/regexp2"
	"gopkg.in/yaml.v3"

	"github.com/tavgar/pathsniff/internal/scan"
)

// Options holds all configuration for a pathsniff run.
type Options struct {
	// Target
	URL string `yaml:"url"`

	// Timing
	Settle       time.Duration `yaml:"settle"`
	Timeout      time.Duration `yaml:"timeout"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	Lossy        bool          `yaml:"lossy"`

	// HTTP
	UserAgent string            `yaml:"user_agent"`
	Headers   map[string]string `yaml:"headers"`
	Insecure  bool              `yaml:"insecure"`

	// Extra endpoint patterns, keyed by name
	Patterns map[string]string `yaml:"patterns"`

	// Output
	OutputFile   string `yaml:"output"`
	OutputFormat string `yaml:"format"` // "pretty", "json"
	ShowSource   bool   `yaml:"show_source"`
	Quiet        bool   `yaml:"quiet"`
	Verbose      bool   `yaml:"verbose"`
	NoColor      bool   `yaml:"no_color"`

	Browser Browser `yaml:"browser"`
	Static  Static  `yaml:"static"`
	Proxy   Proxy   `yaml:"proxy"`
}

// Browser configures the headless Chrome session.
type Browser struct {
	Headless   bool   `yaml:"headless"`
	ChromePath string `yaml:"chrome_path"`
	Overlay    bool   `yaml:"overlay"`
	Screenshot string `yaml:"screenshot"`
}

// Static configures the browserless page scan.
type Static struct {
	HTMLReport string `yaml:"html_report"`
}

// Proxy configures the intercepting proxy.
type Proxy struct {
	Listen string `yaml:"listen"`
}

// Defaults returns the options used when neither a config file nor a flag
// sets a value.
func Defaults() Options {
	return Options{
		Settle:       scan.SettleDuration,
		Timeout:      scan.RunTimeout,
		FetchTimeout: scan.HTTPClientTimeout,
		UserAgent:    scan.DefaultUserAgent(),
		OutputFormat: "pretty",
		Browser:      Browser{Headless: true, Overlay: true},
		Proxy:        Proxy{Listen: "127.0.0.1:8080"},
	}
}

// Load reads a YAML file on top of Defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Options, error) {
	opts := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse config %s: %w", path, err)
	}
	return opts, nil
}

// Validate checks option values that flags and YAML cannot constrain.
func (o *Options) Validate() error {
	if o.OutputFormat != "pretty" && o.OutputFormat != "json" {
		return fmt.Errorf("--format must be one of: pretty, json")
	}
	if o.Settle < 0 || o.Timeout < 0 || o.FetchTimeout < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if o.URL != "" {
		u, err := url.Parse(o.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("target %q must be an http(s) URL", o.URL)
		}
	}
	for name, expr := range o.Patterns {
		if _, err := regexp2.Compile(expr, regexp2.None); err != nil {
			return fmt.Errorf("pattern %q: %w", name, err)
		}
	}
	return nil
}

// FetchOptions returns the HTTP settings for script fetches.
func (o *Options) FetchOptions() scan.FetchOptions {
	return scan.FetchOptions{
		Timeout:   o.FetchTimeout,
		UserAgent: o.UserAgent,
		Headers:   o.Headers,
		Insecure:  o.Insecure,
	}
}

// NewExtractor builds an Extractor with the configured extra patterns.
func (o *Options) NewExtractor() (*scan.Extractor, error) {
	ext := scan.NewExtractor()
	for name, expr := range o.Patterns {
		if err := ext.AddPattern(name, expr); err != nil {
			return nil, err
		}
	}
	return ext, nil
}
