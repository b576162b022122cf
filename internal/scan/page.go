package scan

import (
	"crypto/tls"
	"errors"
	"net/http"
	"sync"

	"github.com/gocolly/colly/v2"

	"github.com/tavgar/pathsniff/internal/logging"
)

// PageScanner is the browserless rendition of a page scan: it fetches the
// document, scans its markup and then every external script.
type PageScanner struct {
	ext  *Extractor
	col  *Collector
	log  *logging.Logger
	opts FetchOptions

	mu   sync.Mutex
	page []byte
}

// NewPageScanner creates a PageScanner feeding col.
func NewPageScanner(ext *Extractor, col *Collector, log *logging.Logger, opts FetchOptions) *PageScanner {
	if log == nil {
		log = logging.Discard()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = HTTPClientTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	return &PageScanner{ext: ext, col: col, log: log, opts: opts}
}

func (p *PageScanner) newCollector() *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(p.opts.UserAgent),
		colly.IgnoreRobotsTxt(),
		colly.MaxBodySize(MaxScriptSize),
	)
	c.SetRequestTimeout(p.opts.Timeout)
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if p.opts.Insecure {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	c.WithTransport(tr)
	c.OnRequest(func(r *colly.Request) {
		for k, v := range p.opts.Headers {
			r.Headers.Set(k, v)
		}
	})
	return c
}

// Scan fetches target and scans its markup before returning. Script fetches are
// queued on t and finish in the background; each failure is logged and
// skipped. Only a failure to load target itself is returned.
func (p *PageScanner) Scan(target string, t *Tracker) error {
	c := p.newCollector()

	scripts := c.Clone()
	scripts.Async = true
	scripts.OnRequest(func(r *colly.Request) {
		for k, v := range p.opts.Headers {
			r.Headers.Set(k, v)
		}
	})
	scripts.OnResponse(func(r *colly.Response) {
		if len(r.Body) >= MaxScriptSize {
			p.log.Warn("%s reached the %d byte cap, later endpoints may be missed", r.Request.URL, MaxScriptSize)
		}
		n := p.ext.Scan(p.col, SourceStaticJS, string(r.Body))
		p.log.Debug("scanned %s: %d matches", r.Request.URL, n)
	})
	scripts.OnError(func(r *colly.Response, err error) {
		p.log.Warn("Error fetching script %s: %v", r.Request.URL, err)
	})

	c.OnResponse(func(r *colly.Response) {
		p.mu.Lock()
		p.page = r.Body
		p.mu.Unlock()
	})
	// The served markup is scanned as-is: re-rendering the parsed DOM would
	// entity-encode quotes in text and attribute values.
	c.OnHTML("html", func(e *colly.HTMLElement) {
		n := p.ext.Scan(p.col, SourceStaticHTML, string(e.Response.Body))
		p.log.Debug("scanned document %s: %d matches", e.Request.URL, n)
	})
	c.OnHTML("script[src]", func(e *colly.HTMLElement) {
		src := e.Request.AbsoluteURL(e.Attr("src"))
		if src == "" {
			return
		}
		if err := scripts.Visit(src); err != nil && !errors.Is(err, colly.ErrAlreadyVisited) {
			p.log.Warn("Error fetching script %s: %v", src, err)
		}
	})

	err := c.Visit(target)
	t.Go(scripts.Wait)
	return err
}

// Page returns the raw body of the last fetched document.
func (p *PageScanner) Page() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}
