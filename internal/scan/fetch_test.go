package scan

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tavgar/pathsniff/internal/logging"
)

// Test that Fetch sets the default User-Agent header on requests
func TestFetchSetsUserAgent(t *testing.T) {
	var ua string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		io.WriteString(w, "ok")
	}))
	defer ts.Close()

	body, err := NewFetcher(FetchOptions{}, nil).Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if string(body) != "ok" {
		t.Fatalf("unexpected body %q", body)
	}
	if ua != defaultUserAgent {
		t.Fatalf("expected User-Agent %q, got %q", defaultUserAgent, ua)
	}
}

// Test that extra headers are sent and may override the User-Agent
func TestFetchExtraHeaders(t *testing.T) {
	var hv, ua string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hv = r.Header.Get("X-Test")
		ua = r.Header.Get("User-Agent")
		io.WriteString(w, "ok")
	}))
	defer ts.Close()

	f := NewFetcher(FetchOptions{Headers: map[string]string{"X-Test": "yes", "User-Agent": "custom"}}, nil)
	if _, err := f.Fetch(context.Background(), ts.URL); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if hv != "yes" {
		t.Fatalf("expected header X-Test yes, got %q", hv)
	}
	if ua != "custom" {
		t.Fatalf("expected header User-Agent custom, got %q", ua)
	}
}

// Test that non-2xx responses are reported as errors
func TestFetchStatusError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	if _, err := NewFetcher(FetchOptions{}, nil).Fetch(context.Background(), ts.URL); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

// Test that TLS verification can be skipped when configured
func TestFetchSkipTLSVerify(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	}))
	defer ts.Close()

	if _, err := NewFetcher(FetchOptions{}, nil).Fetch(context.Background(), ts.URL); err == nil {
		t.Fatalf("expected TLS error when verification enabled")
	}
	if _, err := NewFetcher(FetchOptions{Insecure: true}, nil).Fetch(context.Background(), ts.URL); err != nil {
		t.Fatalf("Fetch returned error with skip verify: %v", err)
	}
}

// Test that bodies past the size cap are cut and the cut is logged
func TestFetchCapsLargeBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("a"), MaxScriptSize+10))
	}))
	defer ts.Close()

	var logs bytes.Buffer
	body, err := NewFetcher(FetchOptions{}, logging.New(&logs, logging.DEBUG)).Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(body) != MaxScriptSize {
		t.Fatalf("expected %d bytes, got %d", MaxScriptSize, len(body))
	}
	if !strings.Contains(logs.String(), "exceeds") {
		t.Fatalf("expected a cap warning, got %q", logs.String())
	}

	logs.Reset()
	small := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	}))
	defer small.Close()
	if _, err := NewFetcher(FetchOptions{}, logging.New(&logs, logging.DEBUG)).Fetch(context.Background(), small.URL); err != nil {
		t.Fatal(err)
	}
	if logs.Len() != 0 {
		t.Fatalf("unexpected log output %q", logs.String())
	}
}
