package infra

import (
	"sync"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
)

// eventQueue hands window events to the dispatcher in delivery order.
// push never blocks and never drops: whatever the channel cannot take yet
// waits in memory until the pump forwards it.
type eventQueue struct {
	mu      sync.Mutex
	pending []domain.Event
	closed  bool

	wake chan struct{}
	out  chan domain.Event
}

func newEventQueue(buffer int) *eventQueue {
	q := &eventQueue{
		wake: make(chan struct{}, 1),
		out:  make(chan domain.Event, buffer),
	}
	go q.pump()
	return q
}

// Events is closed after close has been called and every queued event
// delivered.
func (q *eventQueue) Events() <-chan domain.Event {
	return q.out
}

// push is ignored once the queue is closed.
func (q *eventQueue) push(ev domain.Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, ev)
	q.mu.Unlock()
	q.signal()
}

func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *eventQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *eventQueue) pump() {
	defer close(q.out)
	for {
		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		closed := q.closed
		q.mu.Unlock()

		for _, ev := range batch {
			q.out <- ev
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-q.wake
	}
}
