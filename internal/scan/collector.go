package scan

import (
	"sync"

	"github.com/tavgar/pathsniff/internal/logging"
)

// Source tells where an endpoint was observed.
type Source string

const (
	SourceXHR        Source = "XHR"
	SourceFetch      Source = "Fetch"
	SourceStaticJS   Source = "Static JS"
	SourceStaticHTML Source = "Static HTML"
	SourceProxy      Source = "Proxy"
)

// Endpoint is a collected entry along with the source that saw it first.
type Endpoint struct {
	Value  string `json:"endpoint"`
	Source Source `json:"source"`
}

// Collector is an insertion-ordered set of normalized endpoints shared by
// every discovery path. Entries are never removed.
type Collector struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	entries []Endpoint
	log     *logging.Logger
}

// NewCollector creates an empty Collector. Every observation passed to
// Record is echoed to log; a nil log keeps it silent.
func NewCollector(log *logging.Logger) *Collector {
	if log == nil {
		log = logging.Discard()
	}
	return &Collector{seen: make(map[string]struct{}), log: log}
}

// Add stores endpoint as-is and reports whether it was new.
func (c *Collector) Add(endpoint string) bool {
	return c.add(endpoint, "")
}

// Record normalizes raw, logs the observation under its source tag and adds
// it. Duplicates are logged but stored once. The normalized value is returned.
func (c *Collector) Record(src Source, raw string) string {
	ep := Normalize(raw)
	c.log.Endpoint(string(src), ep)
	c.add(ep, src)
	return ep
}

func (c *Collector) add(endpoint string, src Source) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen[endpoint]; ok {
		return false
	}
	c.seen[endpoint] = struct{}{}
	c.entries = append(c.entries, Endpoint{Value: endpoint, Source: src})
	return true
}

// Len returns the number of distinct endpoints.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Entries returns a snapshot in first-insertion order.
func (c *Collector) Entries() []Endpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Endpoint, len(c.entries))
	copy(out, c.entries)
	return out
}

// Endpoints returns the endpoint values in first-insertion order.
func (c *Collector) Endpoints() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.Value)
	}
	return out
}
