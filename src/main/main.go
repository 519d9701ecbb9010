package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"interactive-scraper/src/browser"
	"interactive-scraper/src/config"
	"interactive-scraper/src/eventchan"
	"interactive-scraper/src/eventloop"
	"interactive-scraper/src/hotkey"
	"interactive-scraper/src/logutil"
	"interactive-scraper/src/runtimeinit"
	"interactive-scraper/src/session"
	"interactive-scraper/src/singleinstance"
)

const (
	exitFailure     = 1
	exitUnreachable = 2
)

const connectHint = `Could not reach the browser.
Start Chrome or Chromium with remote debugging enabled, for example:
> chromium --remote-debugging-port=9222 --disable-dev-shm-usage
or set BROWSER_URL= (empty) to let the tool launch its own browser.`

type mainOptions struct {
	envPath    string
	startURL   string
	browserURL string
	headless   bool
	modifier   string
	copySel    bool
	logLevel   string
}

// deps are the process-level collaborators; tests substitute fakes.
type deps struct {
	connect   runtimeinit.ConnectFunc
	newSource func() (hotkey.Source, error)
	port      int
	stdout    io.Writer
	stderr    io.Writer
}

func defaultDeps() deps {
	return deps{
		newSource: hotkey.NewHookSource,
		port:      singleinstance.ConfiguredPort(),
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
}

func main() {
	os.Exit(run(normalizeLegacyArgs(os.Args), defaultDeps()))
}

func run(args []string, d deps) int {
	if len(args) == 0 {
		args = []string{"interactive-scraper"}
	}
	cmd := newRootCmd(&mainOptions{}, d)
	cmd.SetArgs(args[1:])
	cmd.SetOut(d.stdout)
	cmd.SetErr(d.stderr)

	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, browser.ErrConnect):
		fmt.Fprintf(d.stderr, "Error: %v\n%s\n", err, connectHint)
		return exitUnreachable
	default:
		fmt.Fprintf(d.stderr, "Error: %v\n", err)
		return exitFailure
	}
}

func newRootCmd(opts *mainOptions, d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "interactive-scraper",
		Short:         "Pick CSS selectors in a live browser with global hotkeys",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runInteractive(ctx, loadOptions(cmd, opts), d)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.envPath, "env", "", "Path to .env file (highest precedence)")
	flags.StringVar(&opts.modifier, "modifier", "", "Chord modifier: Alt, Ctrl, Shift or Win")
	cmd.Flags().StringVar(&opts.startURL, "url", "", "Page to open at startup")
	cmd.Flags().StringVar(&opts.browserURL, "browser-url", "", "DevTools endpoint of a running browser; empty launches one")
	cmd.Flags().BoolVar(&opts.headless, "headless", false, "Launch the browser headless")
	cmd.Flags().BoolVar(&opts.copySel, "copy", false, "Copy every resolved selector to the clipboard")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	cmd.AddCommand(newHelpKeysCmd(opts))
	return cmd
}

func newHelpKeysCmd(opts *mainOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "help-keys",
		Short: "Print the hotkeys and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithOptions(config.LoadOptions{
				EnvPathOverride:  opts.envPath,
				ModifierOverride: opts.modifier,
			})
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			km, err := hotkey.NewKeymap(cfg.Modifier)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), eventloop.HelpText(km))
			return err
		},
	}
}

// loadOptions turns flags into config overrides. Boolean and browser URL flags only
// override when given explicitly, since their zero values are meaningful.
func loadOptions(cmd *cobra.Command, opts *mainOptions) config.LoadOptions {
	lo := config.LoadOptions{
		EnvPathOverride:  opts.envPath,
		StartURLOverride: opts.startURL,
		ModifierOverride: opts.modifier,
		LogLevelOverride: opts.logLevel,
	}
	if cmd.Flags().Changed("browser-url") {
		lo.BrowserURLOverride = &opts.browserURL
	}
	if cmd.Flags().Changed("headless") {
		lo.HeadlessOverride = &opts.headless
	}
	if cmd.Flags().Changed("copy") {
		lo.CopyOverride = &opts.copySel
	}
	return lo
}

func runInteractive(ctx context.Context, lo config.LoadOptions, d deps) error {
	guard, err := singleinstance.Acquire(ctx, d.port)
	if err != nil {
		return err
	}
	defer guard.Close()

	// The session outlives ctx so it can still be closed after a signal.
	rt, err := runtimeinit.Bootstrap(context.WithoutCancel(ctx), runtimeinit.Options{
		LoadOptions: lo,
		LogConsole:  d.stderr,
		Connect:     d.connect,
	})
	if err != nil {
		return err
	}
	log := logutil.For(logutil.CompMain)

	loopErr := runLoop(ctx, rt, d)

	log.Info("quitting")
	if err := rt.Close(); err != nil {
		if loopErr == nil {
			loopErr = fmt.Errorf("close browser session: %w", err)
		}
	}
	return loopErr
}

func runLoop(ctx context.Context, rt *runtimeinit.Runtime, d deps) error {
	cfg := rt.Config
	km, err := hotkey.NewKeymap(cfg.Modifier)
	if err != nil {
		return err
	}
	help := eventloop.HelpText(km)

	targets := session.Targets{session.LogTarget{}, session.StdoutTarget{Writer: d.stdout}}
	if cfg.CopySelector {
		targets = append(targets, session.ClipboardTarget{})
	}

	src, err := d.newSource()
	if err != nil {
		return err
	}
	defer src.Stop()

	tx, rx := eventchan.New()
	defer rx.Close()
	hotkey.Start(src, hotkey.NewDecoder(km), tx)

	fmt.Fprintln(d.stdout, help)

	loop := eventloop.New(rt.Session, eventloop.Options{
		GadgetScriptURL: cfg.GadgetScriptURL,
		Target:          targets,
		Help:            help,
		HelpOut:         d.stdout,
	})
	return loop.Run(ctx, rx)
}

// normalizeLegacyArgs maps single-dash long flags such as -url to --url.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	long := []string{"env", "url", "browser-url", "headless", "modifier", "copy", "log-level"}

	normalized := make([]string, len(args))
	copy(normalized, args)
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range long {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}
	return normalized
}
