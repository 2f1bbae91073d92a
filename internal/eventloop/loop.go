// Package eventloop runs closures one at a time on a single goroutine.
//
// State owned by a loop (form fields, dialogs, range-check sessions) is only
// read or written from closures posted to that loop. Work that blocks, such as
// a remote call, runs on its own goroutine and posts its result back with Post.
//
// LIFECYCLE:
//   - New creates a stopped loop with a bounded FIFO queue
//   - Start (or Run on a caller-owned goroutine) begins draining the queue
//   - Stop closes the loop; queued closures that have not started are dropped
package eventloop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrStopped is returned when work is handed to a loop that has been stopped.
var ErrStopped = errors.New("event loop stopped")

// DefaultQueueSize is the queue capacity used when New is given a size <= 0.
const DefaultQueueSize = 64

// Loop is a single-consumer FIFO of closures.
type Loop struct {
	queue    chan func()
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
}

// New creates a loop whose queue holds up to queueSize pending closures.
func New(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Loop{
		queue:  make(chan func(), queueSize),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start runs the loop on a new goroutine.
func (l *Loop) Start() {
	go l.Run()
}

// Run drains the queue on the calling goroutine until Stop is called.
// Calling Run more than once is a no-op.
func (l *Loop) Run() {
	if !l.started.CompareAndSwap(false, true) {
		return
	}
	defer close(l.done)

	for {
		// Stop wins over pending work so late results are never applied
		// after the owner has shut the loop down.
		select {
		case <-l.stopCh:
			return
		default:
		}

		select {
		case <-l.stopCh:
			return
		case fn := <-l.queue:
			fn()
		}
	}
}

// Post queues fn and returns immediately. It blocks only while the queue is
// full and returns false once the loop is stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopCh:
		return false
	default:
	}

	select {
	case <-l.stopCh:
		return false
	case l.queue <- fn:
		return true
	}
}

// Do posts fn and waits for it to finish. Never call Do from a closure
// running on the same loop; it would wait on itself.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}

	select {
	case <-finished:
		return nil
	case <-l.stopCh:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the loop and waits for the running closure, if any, to return.
// Safe to call more than once and from any goroutine except the loop itself.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})
	if l.started.Load() {
		<-l.done
	}
}

// Stopped reports whether Stop has been called.
func (l *Loop) Stopped() bool {
	select {
	case <-l.stopCh:
		return true
	default:
		return false
	}
}
