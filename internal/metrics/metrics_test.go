package metrics

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterAndGauge(t *testing.T) {
	r := NewRegistry("keyviz")

	c := r.Counter("hits_total", "Hits.")
	c.Inc()
	c.Add(2)
	assert.EqualValues(t, 3, c.Value())
	assert.Same(t, c, r.Counter("hits_total", "ignored"))

	g := r.Gauge("depth", "Depth.")
	g.Set(5)
	g.Dec()
	g.Inc()
	g.Dec()
	assert.EqualValues(t, 4, g.Value())
}

func TestHistogram(t *testing.T) {
	r := NewRegistry("")
	h := r.Histogram("latency", "Latency.", []float64{1, 0.1})

	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(5)

	assert.EqualValues(t, 3, h.Count())
	assert.InDelta(t, 5.55/3, h.Mean(), 1e-9)
	assert.Equal(t, []float64{0.1, 1}, h.buckets)
	assert.Equal(t, []uint64{1, 1, 1}, h.counts)
}

func TestEmptyHistogramMean(t *testing.T) {
	h := NewRegistry("").Histogram("x", "", DurationBuckets)
	assert.Zero(t, h.Mean())
}

func TestSnapshot(t *testing.T) {
	r := NewRegistry("keyviz")
	r.Counter("a_total", "").Add(7)
	r.Gauge("b", "").Set(-2)
	r.Histogram("c", "", nil).Observe(1)

	assert.Equal(t, map[string]float64{
		"keyviz_a_total": 7,
		"keyviz_b":       -2,
		"keyviz_c_count": 1,
	}, r.Snapshot())
}

func TestWritePrometheus(t *testing.T) {
	r := NewRegistry("keyviz")
	r.Counter("items_total", "Items.").Add(2)
	r.Gauge("depth", "Depth.").Set(1)
	h := r.Histogram("seconds", "Seconds.", []float64{0.5})
	h.Observe(0.25)
	h.Observe(2)

	var buf bytes.Buffer
	require.NoError(t, r.WritePrometheus(&buf))

	assert.Equal(t, `# HELP keyviz_items_total Items.
# TYPE keyviz_items_total counter
keyviz_items_total 2
# HELP keyviz_depth Depth.
# TYPE keyviz_depth gauge
keyviz_depth 1
# HELP keyviz_seconds Seconds.
# TYPE keyviz_seconds histogram
keyviz_seconds_bucket{le="0.5"} 1
keyviz_seconds_bucket{le="+Inf"} 2
keyviz_seconds_sum 2.25
keyviz_seconds_count 2
`, buf.String())
}

type recordingSink struct{ items []string }

func (s *recordingSink) Push(item string) { s.items = append(s.items, item) }

type recordingRenderer struct{ items []string }

func (r *recordingRenderer) Render(text string) { r.items = append(r.items, text) }

func TestPipelineWrappers(t *testing.T) {
	p := NewPipeline(NewRegistry("keyviz"))

	sink := &recordingSink{}
	counted := p.CountPushes(sink)
	counted.Push("A")
	counted.Push("B")
	assert.Equal(t, []string{"A", "B"}, sink.items)
	assert.EqualValues(t, 2, p.Queued.Value())

	rend := &recordingRenderer{}
	timed := p.TimeRenders(rend)
	timed.Render("A")
	assert.Equal(t, []string{"A"}, rend.items)
	assert.EqualValues(t, 1, p.Rendered.Value())
	assert.EqualValues(t, 1, p.RenderSeconds.Count())
}
