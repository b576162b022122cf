package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/tavgar/pathsniff/internal/browser"
	"github.com/tavgar/pathsniff/internal/intercept"
	"github.com/tavgar/pathsniff/internal/output"
	"github.com/tavgar/pathsniff/internal/scan"
)

var browseCmd = &cobra.Command{
	Use:   "browse <url>",
	Short: "Load the page in headless Chrome and record its live calls",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBrowse,
}

var noOverlay bool

func init() {
	f := browseCmd.Flags()
	f.BoolVar(&opts.Browser.Headless, "headless", opts.Browser.Headless, "Run Chrome without a window")
	f.StringVar(&opts.Browser.ChromePath, "chrome", "", "Path to the Chrome binary")
	f.BoolVar(&noOverlay, "no-overlay", false, "Do not inject the results panel into the page")
	f.StringVar(&opts.Browser.Screenshot, "screenshot", "", "Save a full-page PNG after reporting")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	target, err := resolveTarget(args)
	if err != nil {
		return err
	}
	page, err := url.Parse(target)
	if err != nil {
		return err
	}
	ext, err := opts.NewExtractor()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	col := scan.NewCollector(log)
	icpt := intercept.New(col, intercept.SameOrigin(page))
	sess, err := browser.Open(ctx, browser.Options{
		Headless:   opts.Browser.Headless,
		ChromePath: opts.Browser.ChromePath,
		UserAgent:  opts.UserAgent,
		Headers:    opts.Headers,
		Insecure:   opts.Insecure,
		Timeout:    opts.Timeout,
	}, icpt, log.WithModule("browser"))
	if err != nil {
		return err
	}
	defer sess.Close()

	log.Info("Loading %s", target)
	if err := sess.Navigate(target); err != nil {
		return fmt.Errorf("navigate %s: %w", target, err)
	}

	waitCtx, cancelWait := context.WithTimeout(ctx, opts.Timeout)
	defer cancelWait()

	var tracker scan.Tracker
	if html, err := sess.OuterHTML(); err != nil {
		log.Warn("read document: %v", err)
	} else {
		ext.Scan(col, scan.SourceStaticHTML, html)
	}
	srcs, err := sess.ScriptSources()
	if err != nil {
		log.Warn("list scripts: %v", err)
	}
	log.Debug("%d external script(s)", len(srcs))
	ext.ScanScripts(waitCtx, &tracker, scan.NewFetcher(opts.FetchOptions(), log), col, log, srcs)

	var overlay output.Overlay
	if opts.Browser.Overlay && !noOverlay {
		overlay = sess
	}
	if err := output.NewReporter(col, log, overlay).Await(waitCtx, opts.Settle, &tracker, opts.Lossy); err != nil {
		log.Error("show results panel: %v", err)
	}

	if opts.Browser.Screenshot != "" {
		if err := sess.Screenshot(opts.Browser.Screenshot); err != nil {
			log.Error("%v", err)
		} else {
			log.Success("Screenshot saved to %s", opts.Browser.Screenshot)
		}
	}
	return writeResults(col)
}
