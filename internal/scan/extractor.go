package scan

import (
	"fmt"
	"io"

	"github.com/dlclark/regexp2"
)

// Quote-like boundaries around a path. They are matched by zero-width
// lookarounds, so they never end up in the match itself.
const (
	openQuotes  = "\"|%27|`|'|‘|“|”"
	closeQuotes = "\"|'|%60|`|’|”|‘"
	pathChars   = `[a-zA-Z0-9_?&=/\-#.]*`
)

// EndpointPattern matches a quoted, slash-led path.
var EndpointPattern = "(?<=(" + openQuotes + "))/" + pathChars + "(?=(" + closeQuotes + "))"

// Extractor holds the compiled endpoint rules
type Extractor struct {
	rules []Rule
}

// NewExtractor creates an Extractor with the built-in endpoint rule
func NewExtractor() *Extractor {
	return &Extractor{rules: []Rule{
		PatternRule{Name: "endpoint", RE: regexp2.MustCompile(EndpointPattern, regexp2.None)},
	}}
}

// AddPattern compiles expr and appends it as an extra rule.
func (e *Extractor) AddPattern(name, expr string) error {
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return fmt.Errorf("compile pattern %q: %w", name, err)
	}
	e.rules = append(e.rules, PatternRule{Name: name, RE: re})
	return nil
}

// Rules returns the active rule names.
func (e *Extractor) Rules() []string {
	names := make([]string, 0, len(e.rules))
	for _, r := range e.rules {
		names = append(names, r.MatchName())
	}
	return names
}

// Find returns the raw matches of every rule against text.
func (e *Extractor) Find(text string) []string {
	var out []string
	for _, r := range e.rules {
		out = append(out, r.Find(text)...)
	}
	return out
}

// Scan records every match in text into col under src and returns how many
// matches were seen.
func (e *Extractor) Scan(col *Collector, src Source, text string) int {
	ms := e.Find(text)
	for _, m := range ms {
		col.Record(src, m)
	}
	return len(ms)
}

// ScanReader reads r in full and scans it like Scan.
func (e *Extractor) ScanReader(col *Collector, src Source, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	return e.Scan(col, src, string(data)), nil
}
