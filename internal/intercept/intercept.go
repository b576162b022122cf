// Package intercept decorates the entry points a page uses to issue network
// calls. Every call is recorded into a Collector and then forwarded with its
// original arguments; results and errors come back untouched.
package intercept

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tavgar/pathsniff/internal/scan"
)

// OpenFunc issues an XMLHttpRequest-style call: method first, URL second.
type OpenFunc func(ctx context.Context, method, target string) error

// FetchFunc issues a fetch-style call with the request target first.
type FetchFunc func(ctx context.Context, target string) error

// Option configures an Interceptor.
type Option func(*Interceptor)

// SameOrigin records targets on the origin of page as origin-relative paths,
// so "https://site/api/x" and a static "/api/x" collapse into one entry.
func SameOrigin(page *url.URL) Option {
	return func(i *Interceptor) {
		if page != nil {
			i.origin = &url.URL{Scheme: page.Scheme, Host: page.Host}
		}
	}
}

// Interceptor records observed calls into a Collector.
type Interceptor struct {
	col    *scan.Collector
	origin *url.URL
}

// New creates an Interceptor feeding col.
func New(col *scan.Collector, opts ...Option) *Interceptor {
	i := &Interceptor{col: col}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Open wraps next so each call is recorded as an XHR before it is forwarded.
func (i *Interceptor) Open(next OpenFunc) OpenFunc {
	return func(ctx context.Context, method, target string) error {
		i.observe(scan.SourceXHR, target)
		return next(ctx, method, target)
	}
}

// Fetch wraps next so each call is recorded as a fetch before it is forwarded.
func (i *Interceptor) Fetch(next FetchFunc) FetchFunc {
	return func(ctx context.Context, target string) error {
		i.observe(scan.SourceFetch, target)
		return next(ctx, target)
	}
}

// Transport wraps next so every request is recorded under src before it is
// sent.
func (i *Interceptor) Transport(next http.RoundTripper, src scan.Source) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		i.observe(src, req.URL.String())
		return next.RoundTrip(req)
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func (i *Interceptor) observe(src scan.Source, target string) {
	i.col.Record(src, i.relative(target))
}

func (i *Interceptor) relative(target string) string {
	if i.origin == nil {
		return target
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != i.origin.Scheme || u.Host != i.origin.Host {
		return target
	}
	rel := u.EscapedPath()
	if rel == "" {
		rel = "/"
	}
	if u.RawQuery != "" {
		rel += "?" + u.RawQuery
	}
	return rel
}
