package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tavgar/pathsniff/internal/output"
	"github.com/tavgar/pathsniff/internal/scan"
)

var staticCmd = &cobra.Command{
	Use:   "static <url>",
	Short: "Scan the page markup and its scripts without a browser",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatic,
}

func init() {
	staticCmd.Flags().StringVar(&opts.Static.HTMLReport, "html-report", "", "Write the page with the results panel appended")
}

func runStatic(cmd *cobra.Command, args []string) error {
	target, err := resolveTarget(args)
	if err != nil {
		return err
	}
	ext, err := opts.NewExtractor()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	waitCtx, cancelWait := context.WithTimeout(ctx, opts.Timeout)
	defer cancelWait()

	col := scan.NewCollector(log)
	ps := scan.NewPageScanner(ext, col, log.WithModule("static"), opts.FetchOptions())

	log.Info("Fetching %s", target)
	var tracker scan.Tracker
	if err := ps.Scan(target, &tracker); err != nil {
		return fmt.Errorf("fetch %s: %w", target, err)
	}

	var overlay output.Overlay
	if opts.Static.HTMLReport != "" {
		overlay = output.FileOverlay{Path: opts.Static.HTMLReport, Page: ps.Page}
	}
	// A fetched page issues no calls of its own, so there is nothing to settle.
	if err := output.NewReporter(col, log, overlay).Await(waitCtx, 0, &tracker, opts.Lossy); err != nil {
		log.Error("write HTML report: %v", err)
	} else if opts.Static.HTMLReport != "" {
		log.Success("HTML report saved to %s", opts.Static.HTMLReport)
	}
	return writeResults(col)
}
