package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	barsGenerated *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	errorsTotal   *prometheus.CounterVec
	cacheOps      *prometheus.CounterVec
	sinkDelivery  *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		barsGenerated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mockflow_bars_generated_total",
				Help: "Total number of candles generated",
			},
			[]string{"symbol", "timeframe", "scenario"},
		),
		duration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mockflow_generation_duration_seconds",
				Help:    "Duration of generation runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"timeframe"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mockflow_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		cacheOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mockflow_cache_lookups_total",
				Help: "Response cache lookups by result",
			},
			[]string{"result"},
		),
		sinkDelivery: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mockflow_sink_deliveries_total",
				Help: "Generated sequences delivered to a sink",
			},
			[]string{"sink", "symbol"},
		),
	}
}

// RecordBarsGenerated records candles produced by a run.
func (r *Recorder) RecordBarsGenerated(symbol, timeframe, scenario string, n int) {
	r.barsGenerated.WithLabelValues(symbol, timeframe, scenario).Add(float64(n))
}

// RecordGenerationDuration records how long a run took.
func (r *Recorder) RecordGenerationDuration(timeframe string, seconds float64) {
	r.duration.WithLabelValues(timeframe).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheHit records a response cache lookup.
func (r *Recorder) RecordCacheHit(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheOps.WithLabelValues(result).Inc()
}

// RecordSinkDelivery records a sequence delivered to a sink.
func (r *Recorder) RecordSinkDelivery(sink, symbol string) {
	r.sinkDelivery.WithLabelValues(sink, symbol).Inc()
}
