package scan

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tavgar/pathsniff/internal/logging"
)

// FetchOptions configures a Fetcher.
type FetchOptions struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	Insecure  bool
}

// Fetcher retrieves script bodies with timeouts and limited redirects.
type Fetcher struct {
	client    *http.Client
	userAgent string
	headers   map[string]string
	log       *logging.Logger
}

// NewFetcher creates a Fetcher. Zero values fall back to package defaults; a
// nil log keeps it silent.
func NewFetcher(opts FetchOptions, log *logging.Logger) *Fetcher {
	if log == nil {
		log = logging.Discard()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = HTTPClientTimeout
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if opts.Insecure {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: tr,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= MaxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent: ua,
		headers:   opts.Headers,
		log:       log,
	}
}

// Fetch returns the body at url, cut to MaxScriptSize. Non-2xx responses are
// errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxScriptSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxScriptSize {
		f.log.Warn("%s exceeds %d bytes, scanning only the first %d", url, MaxScriptSize, MaxScriptSize)
		body = body[:MaxScriptSize]
	}
	return body, nil
}
