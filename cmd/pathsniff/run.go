package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tavgar/pathsniff/internal/output"
	"github.com/tavgar/pathsniff/internal/scan"
)

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// resolveTarget picks the positional URL over the configured one and
// validates the result.
func resolveTarget(args []string) (string, error) {
	if len(args) > 0 {
		opts.URL = args[0]
	}
	if opts.URL == "" {
		return "", fmt.Errorf("target URL required")
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}
	return opts.URL, nil
}

// writeResults prints the collected endpoints to stdout or the output file.
func writeResults(col *scan.Collector) error {
	var w io.Writer = os.Stdout
	if opts.OutputFile != "" {
		f, err := os.Create(opts.OutputFile)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := output.NewPrinter(opts.OutputFormat, opts.ShowSource).Print(w, col.Entries()); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	if opts.OutputFile != "" {
		log.Success("Results saved to %s", opts.OutputFile)
	}
	return nil
}
