package display

import (
	"context"
	"sync/atomic"
	"time"

	"keyviz/internal/logging"
)

// DefaultInterval is the pause between queue polls.
const DefaultInterval = 50 * time.Millisecond

// Queue is the consumer side of the dispatch queue.
type Queue interface {
	Pop() (string, bool)
}

// Renderer shows one item. It runs on the UI goroutine.
type Renderer interface {
	Render(text string)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(text string)

func (f RenderFunc) Render(text string) { f(text) }

// Stats counts scheduler activity.
type Stats struct {
	Ticks    uint64
	Rendered uint64
}

// Scheduler moves items from the queue to the renderer, one per tick.
type Scheduler struct {
	queue    Queue
	render   Renderer
	interval time.Duration
	rec      logging.Recorder

	ticks    atomic.Uint64
	rendered atomic.Uint64
}

// NewScheduler creates a scheduler. A non-positive interval means
// DefaultInterval.
func NewScheduler(q Queue, r Renderer, interval time.Duration, rec logging.Recorder) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if rec == nil {
		rec = logging.Discard()
	}
	return &Scheduler{queue: q, render: r, interval: interval, rec: rec}
}

// Interval returns the tick period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Tick pops at most one item and renders it. It reports whether an item
// was rendered.
func (s *Scheduler) Tick() bool {
	s.ticks.Add(1)

	item, ok := s.queue.Pop()
	if !ok {
		return false
	}
	s.rendered.Add(1)
	s.rec.Log(context.Background(), logging.LevelInfo, "render", "item", item)
	s.render.Render(item)
	return true
}

// Run ticks on loop until ctx is done.
func (s *Scheduler) Run(ctx context.Context, loop *Loop) error {
	s.rec.Log(ctx, logging.LevelDebug, "scheduler started", "interval", s.interval)
	defer func() {
		s.rec.Log(ctx, logging.LevelDebug, "scheduler stopped",
			"ticks", s.ticks.Load(),
			"rendered", s.rendered.Load(),
		)
	}()

	return loop.Run(ctx, s.interval, func() { s.Tick() })
}

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() Stats {
	return Stats{Ticks: s.ticks.Load(), Rendered: s.rendered.Load()}
}
