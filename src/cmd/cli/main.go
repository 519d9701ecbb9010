package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"interactive-scraper/src/browser"
	"interactive-scraper/src/config"
	"interactive-scraper/src/gadget"
	"interactive-scraper/src/runtimeinit"
)

const pollInterval = 500 * time.Millisecond

type cliOptions struct {
	url        string
	selector   string
	jsonOutput bool
	waitGadget bool
	timeout    time.Duration
	browserURL string
	envPath    string
	verbose    bool
}

// QueryResult is the --json output.
type QueryResult struct {
	URL       string  `json:"url"`
	Selector  string  `json:"selector,omitempty"`
	State     string  `json:"state"`
	Count     int     `json:"count"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration_seconds"`
}

func main() {
	if err := runWithArgs(os.Args, nil, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, browser.ErrConnect) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func runWithArgs(args []string, connect runtimeinit.ConnectFunc, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		args = []string{"scraper-query"}
	}
	opts := &cliOptions{}
	cmd := newRootCmd(opts, connect, stdout, stderr)
	cmd.SetArgs(args[1:])
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions, connect runtimeinit.ConnectFunc, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "scraper-query",
		Short:         "Open a page and count the elements matching a selector",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			lo := config.LoadOptions{
				EnvPathOverride:  opts.envPath,
				StartURLOverride: opts.url,
				LogLevelOverride: "error",
			}
			if cmd.Flags().Changed("browser-url") {
				lo.BrowserURLOverride = &opts.browserURL
			}
			logs := io.Discard
			if opts.verbose {
				lo.LogLevelOverride = "debug"
				logs = stderr
			}

			ctx := cmd.Context()
			if opts.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, opts.timeout)
				defer cancel()
			}

			rt, err := runtimeinit.Bootstrap(ctx, runtimeinit.Options{LoadOptions: lo, LogConsole: logs, Connect: connect})
			if err != nil {
				return err
			}
			defer rt.Close()

			started := time.Now()
			res, err := query(ctx, rt.Session, rt.Config.GadgetScriptURL, *opts)
			if err != nil {
				return err
			}
			res.URL = rt.Config.StartURL
			res.Timestamp = time.Now().UTC().Format(time.RFC3339)
			res.Duration = time.Since(started).Seconds()
			return writeResult(stdout, res, opts.jsonOutput)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "Page to open")
	cmd.Flags().StringVar(&opts.selector, "selector", "", "CSS selector to count; empty reads the selector gadget instead")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&opts.waitGadget, "wait-gadget", false, "Load the selector gadget and wait until something is selected")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Give up after this long (0 disables)")
	cmd.Flags().StringVar(&opts.browserURL, "browser-url", "", "DevTools endpoint of a running browser; empty launches one")
	cmd.Flags().StringVar(&opts.envPath, "env", "", "Path to .env file")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

// query counts matches for the selector given on the command line or, without one, for
// the selector picked in the gadget loaded from scriptURL.
func query(ctx context.Context, s browser.Session, scriptURL string, opts cliOptions) (QueryResult, error) {
	if opts.selector != "" {
		return count(ctx, s, opts.selector)
	}

	g := gadget.New(s, scriptURL)
	if opts.waitGadget {
		if _, err := g.EnsureInitialized(ctx); err != nil {
			return QueryResult{}, err
		}
	}

	for {
		sel, err := g.Resolve(ctx)
		if err != nil {
			return QueryResult{}, err
		}
		if sel.Kind == gadget.Selected {
			return count(ctx, s, sel.Selector)
		}
		if !opts.waitGadget {
			return QueryResult{State: sel.Kind.String()}, nil
		}

		select {
		case <-ctx.Done():
			return QueryResult{}, fmt.Errorf("waiting for a selection: %w", ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

func count(ctx context.Context, s browser.Session, selector string) (QueryResult, error) {
	elems, err := s.FindAll(ctx, browser.CSS(selector))
	if err != nil {
		return QueryResult{}, err
	}
	return QueryResult{Selector: selector, State: gadget.Selected.String(), Count: len(elems)}, nil
}

func writeResult(w io.Writer, res QueryResult, jsonOutput bool) error {
	if jsonOutput {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(res); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		return nil
	}
	if res.Selector == "" {
		_, err := fmt.Fprintln(w, res.State)
		return err
	}
	_, err := fmt.Fprintf(w, "%s\t%d\n", res.Selector, res.Count)
	return err
}
