package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tavgar/pathsniff/internal/scan"
)

// Printer handles output rendering
type Printer struct {
	format     string
	showSource bool
}

// NewPrinter creates a printer
func NewPrinter(format string, showSource bool) *Printer {
	return &Printer{format: format, showSource: showSource}
}

// Print writes endpoints to w
func (p *Printer) Print(w io.Writer, endpoints []scan.Endpoint) error {
	if p.format == "pretty" {
		for _, e := range endpoints {
			var err error
			if p.showSource && e.Source != "" {
				_, err = fmt.Fprintf(w, "[%s] %s\n", e.Source, e.Value)
			} else {
				_, err = fmt.Fprintln(w, e.Value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}

	type outEndpoint struct {
		Endpoint string `json:"endpoint"`
		Source   string `json:"source,omitempty"`
	}
	out := make([]outEndpoint, 0, len(endpoints))
	for _, e := range endpoints {
		oe := outEndpoint{Endpoint: e.Value}
		if p.showSource {
			oe.Source = string(e.Source)
		}
		out = append(out, oe)
	}
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}
