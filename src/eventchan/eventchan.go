// Package eventchan is the unbounded single-producer/single-consumer queue that carries
// AppEvents from the hotkey listener thread to the event loop.
package eventchan

import (
	"context"
	"errors"
	"io"
	"sync"

	"interactive-scraper/src/messages"
)

// ErrReceiverClosed is returned by Send once the consumer has gone away.
var ErrReceiverClosed = errors.New("eventchan: receiver closed")

type queue struct {
	mu       sync.Mutex
	items    []messages.AppEvent
	ready    chan struct{}
	sendDone bool
	recvDone bool
}

// Sender is the producing end. Send never blocks.
type Sender struct{ q *queue }

// Receiver is the consuming end.
type Receiver struct{ q *queue }

func New() (*Sender, *Receiver) {
	q := &queue{ready: make(chan struct{}, 1)}
	return &Sender{q: q}, &Receiver{q: q}
}

// Send appends ev to the queue.
func (s *Sender) Send(ev messages.AppEvent) error {
	q := s.q
	q.mu.Lock()
	if q.recvDone {
		q.mu.Unlock()
		return ErrReceiverClosed
	}
	q.items = append(q.items, ev)
	q.mu.Unlock()
	q.signal()
	return nil
}

// Close marks the end of the stream. Events already queued are still delivered.
func (s *Sender) Close() {
	q := s.q
	q.mu.Lock()
	q.sendDone = true
	q.mu.Unlock()
	q.signal()
}

// Recv blocks until an event is available. It returns io.EOF after the sender closed
// and the queue drained, or ctx.Err() if ctx is done first.
func (r *Receiver) Recv(ctx context.Context) (messages.AppEvent, error) {
	q := r.q
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			ev := q.items[0]
			q.items[0] = 0
			q.items = q.items[1:]
			q.mu.Unlock()
			return ev, nil
		}
		if q.sendDone {
			q.mu.Unlock()
			return 0, io.EOF
		}
		q.mu.Unlock()

		select {
		case <-q.ready:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// Close drops the consumer. Pending events are discarded and later sends fail.
func (r *Receiver) Close() {
	q := r.q
	q.mu.Lock()
	q.recvDone = true
	q.items = nil
	q.mu.Unlock()
}

// Len reports the number of queued events.
func (r *Receiver) Len() int {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()
	return len(r.q.items)
}

func (q *queue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
