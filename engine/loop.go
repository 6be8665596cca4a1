// Package engine provides the cooperative event loop that owns all
// policy state. Every callback (pipe triggers, timer fires, sensor
// readiness, inbound control calls) is posted onto the loop and runs to
// completion before the next is dispatched, so the policy packages need
// no locking discipline.
package engine

import (
	"context"
	"log/slog"
	"time"
)

const defaultQueueLen = 64

// Loop is a single-threaded run-to-completion dispatcher.
type Loop struct {
	ops  chan func()
	done chan struct{}
	log  *slog.Logger
}

// New creates a loop. queueLen <= 0 selects a safe default.
func New(queueLen int, log *slog.Logger) *Loop {
	if queueLen <= 0 {
		queueLen = defaultQueueLen
	}
	if log == nil {
		log = slog.Default()
	}
	return &Loop{
		ops:  make(chan func(), queueLen),
		done: make(chan struct{}),
		log:  log,
	}
}

// Post enqueues fn for execution on the loop goroutine. It is safe from
// any goroutine; posts after the loop has stopped are dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.ops <- fn:
	case <-l.done:
	}
}

// Sync posts a barrier and waits for the loop to reach it. Returns false
// if the loop stopped first.
func (l *Loop) Sync() bool {
	ch := make(chan struct{})
	l.Post(func() { close(ch) })
	select {
	case <-ch:
		return true
	case <-l.done:
		return false
	}
}

// Run dispatches until ctx is cancelled. It must be called exactly once.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-l.ops:
			op()
		}
	}
}

// Timer is a one-shot timer whose callback runs on the loop. Cancel and
// the fire path are both loop-side, so a cancelled timer can never
// deliver a stale callback and cancelling twice is a no-op.
type Timer struct {
	loop *Loop
	fn   func()
	t    *time.Timer
	dead bool
}

// After arms a one-shot timer. fn runs on the loop goroutine.
func (l *Loop) After(d time.Duration, fn func()) *Timer {
	tm := &Timer{loop: l, fn: fn}
	tm.t = time.AfterFunc(d, func() {
		l.Post(func() {
			if tm.dead {
				return
			}
			tm.dead = true
			tm.fn()
		})
	})
	return tm
}

// Cancel stops the timer. Loop-side only; idempotent.
func (tm *Timer) Cancel() {
	if tm == nil || tm.dead {
		return
	}
	tm.dead = true
	tm.t.Stop()
}

// Active reports whether the timer may still fire. Loop-side only.
func (tm *Timer) Active() bool { return tm != nil && !tm.dead }
