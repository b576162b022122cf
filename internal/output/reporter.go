package output

import (
	"context"
	"sync"
	"time"

	"github.com/tavgar/pathsniff/internal/logging"
	"github.com/tavgar/pathsniff/internal/scan"
)

// Overlay shows the results panel to the user.
type Overlay interface {
	Show(ctx context.Context, endpoints []string) error
}

// Pending is a set of in-flight scan tasks the Reporter can wait on.
type Pending interface {
	Wait(ctx context.Context) error
	Pending() int
}

// Reporter presents the collected endpoints exactly once.
type Reporter struct {
	col     *scan.Collector
	log     *logging.Logger
	overlay Overlay
	once    sync.Once
}

// NewReporter creates a Reporter. overlay may be nil for console-only output.
func NewReporter(col *scan.Collector, log *logging.Logger, overlay Overlay) *Reporter {
	if log == nil {
		log = logging.Discard()
	}
	return &Reporter{col: col, log: log, overlay: overlay}
}

// Await lets the page settle for the given window and then reports. Unless
// lossy is set, it also waits for every pending scan task; if ctx ends first
// the partial results are reported. With lossy set, tasks still running
// after the settle window are left out of the report.
func (r *Reporter) Await(ctx context.Context, settle time.Duration, pending Pending, lossy bool) error {
	timer := time.NewTimer(settle)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		r.log.Warn("interrupted before the settle window elapsed")
	}

	if pending != nil {
		if lossy {
			if n := pending.Pending(); n > 0 {
				r.log.Debug("reporting with %d scan task(s) still running", n)
			}
		} else if err := pending.Wait(ctx); err != nil {
			r.log.Warn("%d scan task(s) still pending, reporting partial results: %v", pending.Pending(), err)
		}
	}
	return r.Report(context.WithoutCancel(ctx))
}

// Report logs the count and every entry, then shows the overlay. Calls after
// the first do nothing.
func (r *Reporter) Report(ctx context.Context) error {
	var err error
	r.once.Do(func() {
		endpoints := r.col.Endpoints()
		r.log.Plain("\n=== Discovered Endpoints (%d) ===", len(endpoints))
		for _, e := range endpoints {
			r.log.Plain("%s", e)
		}
		if r.overlay != nil {
			err = r.overlay.Show(ctx, endpoints)
		}
	})
	return err
}
