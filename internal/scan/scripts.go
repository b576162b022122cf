package scan

import (
	"context"

	"github.com/tavgar/pathsniff/internal/logging"
)

// ScanScripts fetches every src on t and scans each body as it arrives. A
// failed fetch is logged and contributes nothing; the others carry on.
func (e *Extractor) ScanScripts(ctx context.Context, t *Tracker, f *Fetcher, col *Collector, log *logging.Logger, srcs []string) {
	if log == nil {
		log = logging.Discard()
	}
	seen := make(map[string]struct{}, len(srcs))
	for _, src := range srcs {
		if src == "" {
			continue
		}
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}

		src := src
		t.Go(func() {
			body, err := f.Fetch(ctx, src)
			if err != nil {
				log.Warn("Error fetching script %s: %v", src, err)
				return
			}
			n := e.Scan(col, SourceStaticJS, string(body))
			log.Debug("scanned %s: %d matches", src, n)
		})
	}
}
