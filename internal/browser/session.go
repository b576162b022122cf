package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/tavgar/pathsniff/internal/intercept"
	"github.com/tavgar/pathsniff/internal/logging"
	"github.com/tavgar/pathsniff/internal/output"
)

// Options configures the headless browser.
type Options struct {
	Headless   bool
	ChromePath string
	UserAgent  string
	Headers    map[string]string
	Insecure   bool
	// Timeout bounds each page operation; zero means no limit.
	Timeout time.Duration
}

// Session is a Chrome tab whose XHR and fetch calls are paused, recorded by
// an Interceptor and then continued unchanged.
type Session struct {
	ctx       context.Context
	cancel    context.CancelFunc
	log       *logging.Logger
	opTimeout time.Duration

	open  intercept.OpenFunc
	fetch intercept.FetchFunc
}

type requestIDKey struct{}

// Open launches Chrome and arms request interception. The browser lives until
// Close is called or parent is cancelled.
func Open(parent context.Context, opts Options, icpt *intercept.Interceptor, log *logging.Logger) (*Session, error) {
	if log == nil {
		log = logging.Discard()
	}
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if opts.Insecure {
		allocOpts = append(allocOpts, chromedp.Flag("ignore-certificate-errors", true))
	}
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx: ctx,
		cancel: func() {
			cancelCtx()
			cancelAlloc()
		},
		log:       log,
		opTimeout: opts.Timeout,
	}
	s.open = icpt.Open(s.continueOpen)
	s.fetch = icpt.Fetch(s.continueFetch)

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		if e, ok := ev.(*fetch.EventRequestPaused); ok {
			go s.forward(e)
		}
	})

	actions := []chromedp.Action{
		network.Enable(),
		fetch.Enable().WithPatterns([]*fetch.RequestPattern{
			{URLPattern: "*", ResourceType: network.ResourceTypeXHR, RequestStage: fetch.RequestStageRequest},
			{URLPattern: "*", ResourceType: network.ResourceTypeFetch, RequestStage: fetch.RequestStageRequest},
		}),
	}
	if len(opts.Headers) > 0 {
		headers := make(network.Headers, len(opts.Headers))
		for k, v := range opts.Headers {
			headers[k] = v
		}
		actions = append(actions, network.SetExtraHTTPHeaders(headers))
	}
	if opts.UserAgent != "" {
		actions = append(actions, emulation.SetUserAgentOverride(opts.UserAgent))
	}
	if err := chromedp.Run(ctx, actions...); err != nil {
		s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return s, nil
}

// forward routes a paused request through the matching wrapper. Requests of
// other types never match the Fetch patterns but are continued regardless.
func (s *Session) forward(e *fetch.EventRequestPaused) {
	c := chromedp.FromContext(s.ctx)
	ctx := cdp.WithExecutor(s.ctx, c.Target)
	ctx = context.WithValue(ctx, requestIDKey{}, e.RequestID)

	var err error
	switch e.ResourceType {
	case network.ResourceTypeXHR:
		err = s.open(ctx, e.Request.Method, e.Request.URL)
	case network.ResourceTypeFetch:
		err = s.fetch(ctx, e.Request.URL)
	default:
		err = s.continueRequest(ctx)
	}
	if err != nil && s.ctx.Err() == nil {
		s.log.Error("continue %s %s: %v", e.Request.Method, e.Request.URL, err)
	}
}

func (s *Session) continueOpen(ctx context.Context, _, _ string) error { return s.continueRequest(ctx) }

func (s *Session) continueFetch(ctx context.Context, _ string) error { return s.continueRequest(ctx) }

func (s *Session) continueRequest(ctx context.Context) error {
	id, _ := ctx.Value(requestIDKey{}).(fetch.RequestID)
	return fetch.ContinueRequest(id).Do(ctx)
}

// Navigate loads url and waits for the body to be ready.
func (s *Session) Navigate(url string) error {
	s.log.Debug("navigating to %s", url)
	return s.run(
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// OuterHTML returns the serialized markup of the live document.
func (s *Session) OuterHTML() (string, error) {
	var html string
	err := s.run(chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// ScriptSources returns the resolved src of every script element that has one.
func (s *Session) ScriptSources() ([]string, error) {
	var srcs []string
	err := s.run(chromedp.Evaluate(
		`Array.from(document.getElementsByTagName("script")).map(s => s.src).filter(Boolean)`, &srcs))
	return srcs, err
}

// Show appends the results panel to the live page.
func (s *Session) Show(ctx context.Context, endpoints []string) error {
	markup, err := json.Marshal(output.PanelHTML(endpoints))
	if err != nil {
		return err
	}
	js := fmt.Sprintf(`(function() {
	const wrap = document.createElement("div");
	wrap.innerHTML = %s;
	(document.body || document.documentElement).appendChild(wrap.firstElementChild);
	return true;
})()`, markup)
	var ok bool
	return s.runWith(ctx, chromedp.Evaluate(js, &ok))
}

// PanelText returns the text of the injected results panel, or "" if none.
func (s *Session) PanelText() (string, error) {
	var text string
	err := s.run(chromedp.Evaluate(
		fmt.Sprintf(`(document.getElementById(%q) || {}).innerText || ""`, output.PanelID), &text))
	return text, err
}

// Screenshot writes a full-page PNG to path.
func (s *Session) Screenshot(path string) error {
	var buf []byte
	if err := s.run(chromedp.FullScreenshot(&buf, 100)); err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	return os.WriteFile(path, buf, 0644)
}

// run executes actions on the tab, bounded by the operation timeout.
func (s *Session) run(actions ...chromedp.Action) error {
	return s.runWith(context.Background(), actions...)
}

// runWith is run that also stops when ctx is done.
func (s *Session) runWith(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tabCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if s.opTimeout > 0 {
		var cancelTimeout context.CancelFunc
		tabCtx, cancelTimeout = context.WithTimeout(tabCtx, s.opTimeout)
		defer cancelTimeout()
	}
	return chromedp.Run(tabCtx, actions...)
}

// Close shuts the browser down.
func (s *Session) Close() {
	s.cancel()
}
