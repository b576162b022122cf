package browser

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/tavgar/pathsniff/internal/intercept"
	"github.com/tavgar/pathsniff/internal/scan"
)

func findChrome(t *testing.T) string {
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	t.Skip("no Chrome binary on PATH")
	return ""
}

func waitFor(t *testing.T, col *scan.Collector, want ...string) {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		got := map[string]bool{}
		for _, e := range col.Endpoints() {
			got[e] = true
		}
		missing := false
		for _, w := range want {
			if !got[w] {
				missing = true
			}
		}
		if !missing {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %v, have %v", want, col.Endpoints())
}

// Test that page XHR and fetch calls are recorded, still reach the server,
// and that the overlay renders into the page
func TestSessionInterceptsAndShows(t *testing.T) {
	chrome := findChrome(t)

	served := make(chan string, 4)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			served <- r.URL.RequestURI()
			io.WriteString(w, "{}")
			return
		}
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, `<html><body><script>
			fetch("/api/fetched?a=1");
			var x = new XMLHttpRequest(); x.open("GET", "/api/xhr?b=2"); x.send();
		</script></body></html>`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	page, _ := url.Parse(ts.URL)
	col := scan.NewCollector(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := Open(ctx, Options{Headless: true, ChromePath: chrome}, intercept.New(col, intercept.SameOrigin(page)), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Navigate(ts.URL + "/"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, col, "/api/fetched", "/api/xhr")

	reached := map[string]bool{}
	for len(reached) < 2 {
		select {
		case u := <-served:
			reached[u] = true
		case <-time.After(10 * time.Second):
			t.Fatalf("intercepted calls never reached the server: %v", reached)
		}
	}
	if !reached["/api/fetched?a=1"] || !reached["/api/xhr?b=2"] {
		t.Fatalf("calls were altered: %v", reached)
	}

	if err := s.Show(ctx, col.Endpoints()); err != nil {
		t.Fatal(err)
	}
	text, err := s.PanelText()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Discovered Endpoints (2)") || !strings.Contains(text, "/api/xhr") {
		t.Fatalf("unexpected panel text %q", text)
	}

	done, stop := context.WithCancel(ctx)
	stop()
	if err := s.Show(done, col.Endpoints()); err == nil {
		t.Fatal("expected Show to stop on a cancelled context")
	}
	// the session stays usable for later calls
	if _, err := s.PanelText(); err != nil {
		t.Fatal(err)
	}
}

func TestSessionDocumentAndScripts(t *testing.T) {
	chrome := findChrome(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, `<html><body><a href="/profile">p</a><script src="/s.js"></script></body></html>`)
	})
	mux.HandleFunc("/s.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		io.WriteString(w, `var route = "/baz";`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s, err := Open(ctx, Options{Headless: true, ChromePath: chrome}, intercept.New(scan.NewCollector(nil)), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Navigate(ts.URL + "/"); err != nil {
		t.Fatal(err)
	}
	html, err := s.OuterHTML()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, `href="/profile"`) {
		t.Fatalf("unexpected markup %q", html)
	}
	srcs, err := s.ScriptSources()
	if err != nil {
		t.Fatal(err)
	}
	if len(srcs) != 1 || srcs[0] != ts.URL+"/s.js" {
		t.Fatalf("unexpected script sources %v", srcs)
	}
}

func TestSessionShowHonoursContext(t *testing.T) {
	s := &Session{ctx: context.Background()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Show(ctx, []string{"/x"}); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
