// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package eventloop runs posted functions one at a time on a single
// goroutine.
package eventloop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Loop is a single goroutine draining an unbounded queue of functions.
// Post never blocks, so reader goroutines and timers can always hand off
// work even while the loop is busy.
type Loop struct {
	log *zap.Logger

	mu      sync.Mutex
	queue   []func()
	closed  bool
	started bool

	wake chan struct{}
	done chan struct{}
}

// New loop. Nothing runs until Run.
func New(log *zap.Logger) *Loop {
	if log == nil {
		log = zap.NewNop()
	}

	return &Loop{
		log:  log,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post queues fn to run on the loop goroutine.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}

	return nil
}

// Call runs fn on the loop goroutine and waits for it to return.
// Call must not be used from the loop goroutine itself.
func (l *Loop) Call(ctx context.Context, fn func()) (err error) {
	finished := make(chan struct{})
	err = l.Post(func() {
		defer close(finished)
		fn()
	})
	if err != nil {
		return
	}

	select {
	case <-finished:
	case <-ctx.Done():
		err = ctx.Err()
	case <-l.done:
		select {
		case <-finished:
		default:
			err = ErrClosed
		}
	}

	return
}

// AfterFunc posts fn to the loop after d. The returned stop function
// must be called on the loop goroutine; once it returns, fn will not run.
func (l *Loop) AfterFunc(d time.Duration, fn func()) func() bool {
	var stopped atomic.Bool

	timer := time.AfterFunc(d, func() {
		err := l.Post(func() {
			if !stopped.Load() {
				fn()
			}
		})
		if err != nil {
			l.log.Debug("eventloop: timer after close", zap.Duration("after", d))
		}
	})

	return func() bool {
		stopped.Store(true)
		return timer.Stop()
	}
}

// Close refuses further posts. Run finishes what is already queued, then
// returns.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run the loop until Close, or until ctx is cancelled. A cancelled loop
// drops whatever is still queued.
func (l *Loop) Run(ctx context.Context) (err error) {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		err = ErrRunning
		return
	}
	l.started = true
	l.mu.Unlock()

	defer close(l.done)

	for {
		fns, closed := l.take()
		for _, fn := range fns {
			if ctx.Err() != nil {
				break
			}
			l.dispatch(fn)
		}

		if ctx.Err() != nil {
			l.Close()
			err = ctx.Err()
			return
		}

		if len(fns) != 0 {
			continue
		}

		if closed {
			return
		}

		select {
		case <-ctx.Done():
		case <-l.wake:
		}
	}
}

func (l *Loop) take() (fns []func(), closed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fns = l.queue
	l.queue = nil
	closed = l.closed

	return
}

// dispatch runs fn, logging a panic instead of taking down the loop.
func (l *Loop) dispatch(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("eventloop: panic", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	fn()
}
