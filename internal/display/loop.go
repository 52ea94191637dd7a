// Package display drains the dispatch queue on a single UI goroutine.
//
// Loop owns that goroutine: every tick, timer callback and posted function
// runs on it, one at a time, so toolkit code needs no locking. Scheduler
// pops at most one item per tick and hands it to a Renderer.
package display

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrRunning is returned by Run when the loop is already running.
var ErrRunning = errors.New("display loop already running")

// Loop serializes work onto one goroutine.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	running atomic.Bool
}

// NewLoop creates an idle loop.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post queues fn to run on the loop. It never blocks. Functions posted
// after Run returns are dropped.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// AfterFunc runs fn on the loop once d has elapsed. The returned function
// cancels the timer and reports whether it stopped it before it fired.
func (l *Loop) AfterFunc(d time.Duration, fn func()) (stop func() bool) {
	t := time.AfterFunc(d, func() { l.Post(fn) })
	return t.Stop
}

// Run executes tick every period and posted functions as they arrive,
// until ctx is done. Posted work is drained before each tick.
func (l *Loop) Run(ctx context.Context, period time.Duration, tick func()) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer l.running.Store(false)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.wake:
			l.drain()
		case <-ticker.C:
			l.drain()
			if tick != nil {
				tick()
			}
		}
	}
}

func (l *Loop) drain() {
	l.mu.Lock()
	batch := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
}
