package hotkey

import (
	"interactive-scraper/src/logutil"
	"interactive-scraper/src/messages"
)

// Decoder turns raw key transitions into AppEvents.
//
// A command registers only while the chord modifier is held, and each modifier hold
// yields at most one command: after emitting, the decoder forgets the modifier until it
// is pressed again. Auto-repeated presses of the command key are therefore ignored.
// A Decoder is not safe for concurrent use; it belongs to the listener goroutine.
type Decoder struct {
	keymap Keymap
	held   bool
}

func NewDecoder(km Keymap) *Decoder {
	return &Decoder{keymap: km}
}

// Decode consumes one raw event and returns the AppEvent it completes, if any.
func (d *Decoder) Decode(ev RawEvent) (messages.AppEvent, bool) {
	key := d.keymap.Classify(ev.Code)

	switch ev.Kind {
	case Press:
		if key == KeyModifier {
			d.held = true
			return 0, false
		}
		if !d.held {
			logutil.For(logutil.CompHotkey).Debug("unhandled key press", "code", ev.Code, "modifier", false)
			return 0, false
		}
		event, ok := commandFor(key)
		if !ok {
			logutil.For(logutil.CompHotkey).Debug("unhandled key press", "code", ev.Code, "modifier", true)
			return 0, false
		}
		d.held = false
		return event, true

	case Release:
		if key == KeyModifier {
			d.held = false
		}
	}
	return 0, false
}

// Held reports whether the chord modifier is currently considered held.
func (d *Decoder) Held() bool { return d.held }
