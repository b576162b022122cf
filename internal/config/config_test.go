package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pathsniff.yaml")
	data := `
settle: 2s
format: json
headers:
  Cookie: session=abc
patterns:
  graphql: '(?<=url:\s*)/graphql'
browser:
  overlay: false
  screenshot: shot.png
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	opts, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Settle != 2*time.Second {
		t.Fatalf("expected settle 2s, got %v", opts.Settle)
	}
	if opts.OutputFormat != "json" || opts.Headers["Cookie"] != "session=abc" {
		t.Fatalf("unexpected options %#v", opts)
	}
	if opts.Browser.Overlay || opts.Browser.Screenshot != "shot.png" {
		t.Fatalf("unexpected browser options %#v", opts.Browser)
	}
	// untouched keys keep defaults
	if !opts.Browser.Headless || opts.Timeout != Defaults().Timeout || opts.Proxy.Listen != "127.0.0.1:8080" {
		t.Fatalf("defaults lost: %#v", opts)
	}
	if err := opts.Validate(); err != nil {
		t.Fatal(err)
	}
	ext, err := opts.NewExtractor()
	if err != nil {
		t.Fatal(err)
	}
	if len(ext.Rules()) != 2 {
		t.Fatalf("expected extra rule, got %v", ext.Rules())
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("settle: [not a duration"), 0644)
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Options)
		ok   bool
	}{
		{"defaults", func(o *Options) {}, true},
		{"https target", func(o *Options) { o.URL = "https://example.com/app" }, true},
		{"bad format", func(o *Options) { o.OutputFormat = "xml" }, false},
		{"negative settle", func(o *Options) { o.Settle = -time.Second }, false},
		{"ftp target", func(o *Options) { o.URL = "ftp://example.com" }, false},
		{"no host", func(o *Options) { o.URL = "http://" }, false},
		{"bad pattern", func(o *Options) { o.Patterns = map[string]string{"x": "("} }, false},
	}
	for _, c := range cases {
		o := Defaults()
		c.mut(&o)
		err := o.Validate()
		if c.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
	}
}
