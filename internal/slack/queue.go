package slack

import (
	"context"
	"sync"
)

// eventQueue is an unbounded, strictly FIFO queue of inbound events. Put
// never blocks; Get blocks until an event is available, the context is
// cancelled, or the queue is closed. A pump goroutine shuttles events from
// the in channel to the out channel through an internal buffer, so producers
// (the demultiplexer) are never slowed by a consumer stuck in Listen.
type eventQueue struct {
	in        chan Event
	out       chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func newEventQueue() *eventQueue {
	q := &eventQueue{
		in:   make(chan Event),
		out:  make(chan Event),
		done: make(chan struct{}),
	}
	go q.pump()
	return q
}

func (q *eventQueue) pump() {
	defer close(q.out)

	var buf []Event
	for {
		// Only offer the head for delivery when the buffer is non-empty;
		// a nil channel makes that select arm inert.
		var out chan Event
		var head Event
		if len(buf) > 0 {
			out = q.out
			head = buf[0]
		}

		select {
		case ev := <-q.in:
			buf = append(buf, ev)
		case out <- head:
			buf = buf[1:]
		case <-q.done:
			return
		}
	}
}

// Put appends an event. Events put after Close are dropped.
func (q *eventQueue) Put(ev Event) {
	select {
	case q.in <- ev:
	case <-q.done:
	}
}

// Get removes and returns the oldest event, blocking until one is available.
func (q *eventQueue) Get(ctx context.Context) (Event, error) {
	select {
	case ev, ok := <-q.out:
		if !ok {
			return Event{}, ErrConversationClosed
		}
		return ev, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Close shuts the queue down. Pending and future Gets fail with
// ErrConversationClosed once the buffer goroutine exits.
func (q *eventQueue) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}
