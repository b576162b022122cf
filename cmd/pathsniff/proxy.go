package main

import (
	"github.com/spf13/cobra"

	"github.com/tavgar/pathsniff/internal/intercept"
	"github.com/tavgar/pathsniff/internal/output"
	"github.com/tavgar/pathsniff/internal/proxy"
	"github.com/tavgar/pathsniff/internal/scan"
)

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Record endpoints from traffic sent through an intercepting proxy",
	Long: `Run an HTTP(S) proxy that records every request passing through it and
scans HTML and JavaScript responses. Results are reported when the proxy is
stopped with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runProxy,
}

func init() {
	proxyCmd.Flags().StringVar(&opts.Proxy.Listen, "listen", opts.Proxy.Listen, "Address to listen on")
}

func runProxy(cmd *cobra.Command, args []string) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	ext, err := opts.NewExtractor()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	col := scan.NewCollector(log)
	srv := proxy.New(ext, col, intercept.New(col), log.WithModule("proxy"), opts.Insecure)
	if err := srv.Run(ctx, opts.Proxy.Listen); err != nil {
		return err
	}

	if err := output.NewReporter(col, log, nil).Report(ctx); err != nil {
		log.Error("%v", err)
	}
	return writeResults(col)
}
