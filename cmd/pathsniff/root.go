package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tavgar/pathsniff/internal/config"
	"github.com/tavgar/pathsniff/internal/logging"
	"github.com/tavgar/pathsniff/internal/output"
)

const version = "1.0.0"

var (
	opts = config.Defaults()
	log  = logging.Discard()
)

var (
	configPath string
	headerArgs []string
)

var rootCmd = &cobra.Command{
	Use:     "pathsniff",
	Short:   "Discover API endpoints used by a web page",
	Version: version,
	Long: `pathsniff records the relative URL paths a web application talks to.
It watches live XHR and fetch calls in a headless browser, scans the page
markup and every external script for quoted paths, and prints the
deduplicated list with the query strings stripped.`,
	Example: `  pathsniff browse https://example.com
  pathsniff browse https://example.com --screenshot page.png --format json
  pathsniff static https://example.com --html-report report.html
  pathsniff proxy --listen 127.0.0.1:8080 -o endpoints.txt`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	f := rootCmd.PersistentFlags()

	f.StringVar(&configPath, "config", "", "YAML config file (flags take precedence)")

	// Output
	f.StringVar(&opts.OutputFormat, "format", opts.OutputFormat, "Output format: pretty, json")
	f.StringVarP(&opts.OutputFile, "output", "o", "", "Write results to file instead of stdout")
	f.BoolVar(&opts.ShowSource, "show-source", false, "Include the source of each endpoint in results")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "Suppress banner and progress output")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug output")
	f.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")

	// Timing
	f.DurationVar(&opts.Settle, "settle", opts.Settle, "Time the page gets to issue its calls before reporting")
	f.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "Upper bound for page operations and pending script scans")
	f.DurationVar(&opts.FetchTimeout, "fetch-timeout", opts.FetchTimeout, "Timeout for each script fetch")
	f.BoolVar(&opts.Lossy, "lossy", false, "Report when the settle window ends without waiting for pending script scans")

	// HTTP
	f.StringVar(&opts.UserAgent, "user-agent", opts.UserAgent, "User-Agent for the page and script fetches")
	f.StringSliceVarP(&headerArgs, "header", "H", nil, "Extra request header (Key: Value), repeatable")
	f.BoolVar(&opts.Insecure, "insecure", false, "Skip TLS certificate verification")

	rootCmd.AddCommand(browseCmd, staticCmd, proxyCmd)
}

// setup merges the config file with explicit flags, then prepares logging.
func setup(cmd *cobra.Command, args []string) error {
	if configPath != "" {
		if err := applyConfig(cmd.Flags(), configPath); err != nil {
			return err
		}
	}
	headers, err := parseHeaders(headerArgs)
	if err != nil {
		return err
	}
	if opts.Headers == nil {
		opts.Headers = make(map[string]string, len(headers))
	}
	for k, v := range headers {
		opts.Headers[k] = v
	}

	if opts.NoColor {
		color.NoColor = true
	}
	log = logging.New(cmd.ErrOrStderr(), logLevel())
	if !opts.Quiet {
		fmt.Fprint(cmd.ErrOrStderr(), output.Banner(version))
	}
	return nil
}

// applyConfig loads path into opts and re-applies every flag the user set
// explicitly, so the command line always wins over the file.
func applyConfig(flags *pflag.FlagSet, path string) error {
	changed := map[string]string{}
	flags.Visit(func(f *pflag.Flag) {
		if f.Name != "config" && f.Name != "header" {
			changed[f.Name] = f.Value.String()
		}
	})

	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	opts = loaded

	for name, val := range changed {
		if err := flags.Set(name, val); err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
	}
	return nil
}

// parseHeaders turns "Key: Value" arguments into a header map.
func parseHeaders(args []string) (map[string]string, error) {
	headers := make(map[string]string, len(args))
	for _, h := range args {
		k, v, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid header format %q, expected 'Key: Value'", h)
		}
		headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return headers, nil
}

func logLevel() logging.Level {
	switch {
	case opts.Quiet:
		return logging.WARN
	case opts.Verbose:
		return logging.DEBUG
	}
	return logging.INFO
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
