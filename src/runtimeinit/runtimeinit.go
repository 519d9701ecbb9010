package runtimeinit

import (
	"context"
	"fmt"
	"io"

	"interactive-scraper/src/browser"
	"interactive-scraper/src/config"
	"interactive-scraper/src/logutil"
)

// ConnectFunc opens the remote session. Tests replace it with a fake.
type ConnectFunc func(ctx context.Context, opts browser.Options) (browser.Session, error)

type Options struct {
	LoadOptions config.LoadOptions
	// LogConsole receives log records when file logging is off. Defaults to stderr.
	LogConsole io.Writer
	Connect    ConnectFunc
}

// Runtime is everything a command needs once startup succeeded.
type Runtime struct {
	Config  *config.Config
	Session browser.Session
	logs    io.Closer
}

// Close ends the remote session and then releases the log file.
func (r *Runtime) Close() error {
	err := r.Session.Close()
	if err != nil {
		logutil.For(logutil.CompMain).Warn("closing browser session failed", "err", err)
	}
	_ = r.logs.Close()
	return err
}

func defaultConnect(ctx context.Context, opts browser.Options) (browser.Session, error) {
	return browser.Connect(ctx, opts)
}

// Bootstrap loads configuration, installs logging, opens the browser session and
// navigates to the configured start page. Errors from Connect keep browser.ErrConnect
// in their chain.
func Bootstrap(ctx context.Context, opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logs := logutil.Setup(logutil.Options{
		EnableFileLogging: cfg.EnableFileLogging,
		FilePath:          cfg.LogFile,
		Level:             cfg.LogLevel,
		Console:           opts.LogConsole,
	})
	log := logutil.For(logutil.CompMain)
	if cfg.EnvPath != "" {
		log.Info("configuration loaded", "env", cfg.EnvPath)
	}

	connect := opts.Connect
	if connect == nil {
		connect = defaultConnect
	}
	sess, err := connect(ctx, browser.Options{URL: cfg.BrowserURL, Headless: cfg.Headless})
	if err != nil {
		_ = logs.Close()
		return nil, err
	}

	if cfg.StartURL != "" {
		log.Info("opening start page", "url", cfg.StartURL)
		if err := sess.Navigate(ctx, cfg.StartURL); err != nil {
			_ = sess.Close()
			_ = logs.Close()
			return nil, err
		}
	}

	return &Runtime{Config: cfg, Session: sess, logs: logs}, nil
}
