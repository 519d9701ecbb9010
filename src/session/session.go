// Package session delivers resolved selections to the places the operator wants them.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"

	"interactive-scraper/src/clipboard"
	"interactive-scraper/src/logutil"
)

// Result is one resolved selection: the selector and how many elements it matched.
type Result struct {
	Selector string
	Count    int
}

// ResultTarget receives results from the event loop. Errors are reported by the loop
// but never stop it.
type ResultTarget interface {
	OnSelection(res Result) error
}

type LogTarget struct{}

func (LogTarget) OnSelection(res Result) error {
	logutil.For(logutil.CompLoop).Info("selector resolved",
		"selector", logutil.Sanitize(res.Selector),
		"matches", res.Count)
	return nil
}

// StdoutTarget prints one line per result.
type StdoutTarget struct {
	Writer io.Writer
}

func (t StdoutTarget) OnSelection(res Result) error {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	_, err := fmt.Fprintf(w, "%s\t%d elements\n", res.Selector, res.Count)
	return err
}

// ClipboardTarget copies the selector to the system clipboard.
type ClipboardTarget struct {
	Write func(text string) error
}

func (t ClipboardTarget) OnSelection(res Result) error {
	write := t.Write
	if write == nil {
		write = clipboard.Write
	}
	if err := write(res.Selector); err != nil {
		return fmt.Errorf("clipboard error: %w", err)
	}
	return nil
}

// Targets fans a result out to several targets.
type Targets []ResultTarget

func (ts Targets) OnSelection(res Result) error {
	var errs []error
	for _, t := range ts {
		if err := t.OnSelection(res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
