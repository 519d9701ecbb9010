package hotkey

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	gohook "github.com/robotn/gohook"

	"interactive-scraper/src/logutil"
	"interactive-scraper/src/messages"
)

// Source is a blocking supply of raw key events.
type Source interface {
	// Next blocks until a key event arrives. ok is false once the source has ended.
	Next() (ev RawEvent, ok bool)
	// Stop ends the underlying OS hook.
	Stop()
}

// Sender receives decoded events. Send must not block. Close marks the end of the
// stream for the consumer.
type Sender interface {
	Send(messages.AppEvent) error
	Close()
}

// Run feeds every event of src through dec and forwards the decoded AppEvents to out.
// It returns nil when the source ends, or the send error once the consumer is gone.
func Run(src Source, dec *Decoder, out Sender) error {
	log := logutil.For(logutil.CompHotkey)
	for {
		ev, ok := src.Next()
		if !ok {
			log.Info("key event source closed")
			return nil
		}
		event, emit := dec.Decode(ev)
		if !emit {
			continue
		}
		log.Debug("hotkey decoded", "event", event.String())
		if err := out.Send(event); err != nil {
			return fmt.Errorf("forward %s: %w", event, err)
		}
	}
}

// Start runs the listener on a dedicated OS thread. When the listener stops, for
// whatever reason, out is closed and then the returned channel is closed; there is no
// other shutdown path.
func Start(src Source, dec *Decoder, out Sender) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer out.Close()
		defer func() {
			if r := recover(); r != nil {
				logutil.For(logutil.CompHotkey).Error("panic in hotkey listener", "panic", r)
			}
		}()

		runtime.LockOSThread()
		log := logutil.For(logutil.CompHotkey)
		log.Info("hotkey listener started")
		if err := Run(src, dec, out); err != nil {
			log.Error("hotkey listener stopped", "err", err)
		}
	}()
	return done
}

// ErrHookUnavailable is returned when the OS hook cannot be started.
var ErrHookUnavailable = errors.New("global keyboard hook unavailable")

type hookSource struct {
	events   chan gohook.Event
	stopOnce sync.Once
}

// NewHookSource starts the global keyboard hook.
func NewHookSource() (Source, error) {
	evChan := gohook.Start()
	if evChan == nil {
		return nil, ErrHookUnavailable
	}
	return &hookSource{events: evChan}, nil
}

func (s *hookSource) Next() (RawEvent, bool) {
	for ev := range s.events {
		if raw, ok := translate(ev); ok {
			return raw, true
		}
	}
	return RawEvent{}, false
}

func (s *hookSource) Stop() {
	s.stopOnce.Do(gohook.End)
}

// translate keeps key-pressed and key-released events. gohook passes libuiohook's event
// type through, so KeyDown is key-pressed and KeyHold is the typed-character event, which
// is never sent for modifiers and carries no keycode.
func translate(ev gohook.Event) (RawEvent, bool) {
	switch ev.Kind {
	case gohook.KeyDown:
		return RawEvent{Kind: Press, Code: ev.Keycode}, true
	case gohook.KeyUp:
		return RawEvent{Kind: Release, Code: ev.Keycode}, true
	default:
		return RawEvent{}, false
	}
}
