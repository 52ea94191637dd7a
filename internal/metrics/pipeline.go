package metrics

import (
	"time"
)

// Pipeline holds the keyviz pipeline metrics.
type Pipeline struct {
	Registry *Registry

	Queued         *Counter
	Rendered       *Counter
	RenderFailures *Counter
	Listeners      *Gauge
	QueueDepth     *Gauge
	RenderSeconds  *Histogram
}

// NewPipeline registers the pipeline metrics on r.
func NewPipeline(r *Registry) *Pipeline {
	return &Pipeline{
		Registry:       r,
		Queued:         r.Counter("items_queued_total", "Display strings pushed onto the queue."),
		Rendered:       r.Counter("items_rendered_total", "Display strings handed to the presenter."),
		RenderFailures: r.Counter("render_failures_total", "Popups that could not be shown."),
		Listeners:      r.Gauge("listeners", "Keyboards currently being read."),
		QueueDepth:     r.Gauge("queue_depth", "Items waiting at the last tick."),
		RenderSeconds:  r.Histogram("render_seconds", "Time to rasterize and map one popup.", DurationBuckets),
	}
}

// Sink is the producer side of the queue.
type Sink interface {
	Push(item string)
}

type countingSink struct {
	next Sink
	p    *Pipeline
}

func (s countingSink) Push(item string) {
	s.p.Queued.Inc()
	s.next.Push(item)
}

// CountPushes wraps next so every push is counted.
func (p *Pipeline) CountPushes(next Sink) Sink {
	return countingSink{next: next, p: p}
}

// Renderer shows one item.
type Renderer interface {
	Render(text string)
}

type timedRenderer struct {
	next Renderer
	p    *Pipeline
}

func (r timedRenderer) Render(text string) {
	start := time.Now()
	r.next.Render(text)
	r.p.RenderSeconds.Since(start)
	r.p.Rendered.Inc()
}

// TimeRenders wraps next so every render is counted and timed.
func (p *Pipeline) TimeRenders(next Renderer) Renderer {
	return timedRenderer{next: next, p: p}
}
