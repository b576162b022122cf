package scan

import "github.com/dlclark/regexp2"

// Rule finds endpoint candidates in text.
type Rule interface {
	MatchName() string
	Find(text string) []string
}

// PatternRule implements Rule with a backtracking regular expression, which
// unlike the standard library supports lookbehind and lookahead.
type PatternRule struct {
	Name string
	RE   *regexp2.Regexp
}

func (r PatternRule) MatchName() string { return r.Name }

// Find returns every non-overlapping match in text, in order.
func (r PatternRule) Find(text string) []string {
	var out []string
	m, err := r.RE.FindStringMatch(text)
	for err == nil && m != nil {
		out = append(out, m.String())
		m, err = r.RE.FindNextMatch(m)
	}
	return out
}
