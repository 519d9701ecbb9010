package eventloop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"interactive-scraper/src/browser"
	"interactive-scraper/src/gadget"
	"interactive-scraper/src/logutil"
	"interactive-scraper/src/messages"
	"interactive-scraper/src/session"
)

// Receiver is the consuming end of the event channel.
type Receiver interface {
	Recv(ctx context.Context) (messages.AppEvent, error)
}

type Options struct {
	// GadgetScriptURL is passed to gadget.New; empty uses the public build.
	GadgetScriptURL string
	// Target receives every resolved selection. Defaults to session.LogTarget.
	Target session.ResultTarget
	Help   string
	// HelpOut receives the help text. Defaults to stdout.
	HelpOut io.Writer
}

// Loop is the single-threaded consumer of AppEvents. It is the only user of the
// browser session while it runs.
type Loop struct {
	session browser.Session
	gadget  *gadget.Gadget
	target  session.ResultTarget
	help    string
	helpOut io.Writer
}

func New(s browser.Session, opts Options) *Loop {
	target := opts.Target
	if target == nil {
		target = session.LogTarget{}
	}
	helpOut := opts.HelpOut
	if helpOut == nil {
		helpOut = os.Stdout
	}
	return &Loop{
		session: s,
		gadget:  gadget.New(s, opts.GadgetScriptURL),
		target:  target,
		help:    opts.Help,
		helpOut: helpOut,
	}
}

// Run dispatches events until Quit, the end of the stream, or ctx cancellation, all of
// which return nil. A failed session call aborts the loop with that error. The caller
// closes the session afterwards.
func (l *Loop) Run(ctx context.Context, rx Receiver) error {
	log := logutil.For(logutil.CompLoop)
	for {
		if ctx.Err() != nil {
			log.Info("event loop cancelled")
			return nil
		}

		ev, err := rx.Recv(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Info("event channel closed")
				return nil
			}
			if ctx.Err() != nil {
				log.Info("event loop cancelled")
				return nil
			}
			return fmt.Errorf("receive event: %w", err)
		}

		log.Debug("dispatching event", "event", ev.String())
		quit, err := l.Dispatch(ctx, ev)
		if err != nil {
			return err
		}
		if quit {
			log.Info("quit requested")
			return nil
		}
	}
}

// Dispatch handles one event and reports whether the loop should terminate.
func (l *Loop) Dispatch(ctx context.Context, ev messages.AppEvent) (bool, error) {
	switch ev {
	case messages.InitializeGadget:
		return false, l.handleInitialize(ctx)
	case messages.GetSelected:
		return false, l.handleGetSelected(ctx)
	case messages.GetHelp:
		l.handleHelp()
		return false, nil
	case messages.Quit:
		return true, nil
	default:
		logutil.For(logutil.CompLoop).Warn("ignoring unknown event", "event", int(ev))
		return false, nil
	}
}

func (l *Loop) handleInitialize(ctx context.Context) error {
	if _, err := l.gadget.EnsureInitialized(ctx); err != nil {
		return fmt.Errorf("initialize gadget: %w", err)
	}
	return nil
}

func (l *Loop) handleGetSelected(ctx context.Context) error {
	log := logutil.For(logutil.CompLoop)

	sel, err := l.gadget.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("get selection: %w", err)
	}

	switch sel.Kind {
	case gadget.Empty:
		log.Info("no selector chosen")
		return nil

	case gadget.Selected:
		log.Info("got user selector", "selector", logutil.Sanitize(sel.Selector))
		elems, err := l.session.FindAll(ctx, browser.CSS(sel.Selector))
		if err != nil {
			return fmt.Errorf("query selected elements: %w", err)
		}
		log.Info("found elements", "count", len(elems))
		if err := l.target.OnSelection(session.Result{Selector: sel.Selector, Count: len(elems)}); err != nil {
			log.Warn("delivering selection failed", "err", err)
		}
		return nil

	case gadget.MissingGadget:
		// The operator has to ask again once the gadget is up.
		log.Info("no gadget present, initializing it")
		return l.handleInitialize(ctx)

	default:
		return fmt.Errorf("unexpected selection state %v", sel.Kind)
	}
}

func (l *Loop) handleHelp() {
	if l.help == "" {
		return
	}
	if _, err := fmt.Fprintln(l.helpOut, l.help); err != nil {
		logutil.For(logutil.CompLoop).Warn("writing help failed", "err", err)
	}
}
