package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cycleDuration  prometheus.Histogram
	cyclePositions prometheus.Gauge
	sourceErrors   *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	blendedPrice   prometheus.Gauge
	subscribers    prometheus.Gauge
	broadcasts     prometheus.Counter
	broadcastBytes prometheus.Counter
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cycleDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "silverfetch_cycle_duration_seconds",
				Help:    "Duration of a full snapshot refresh cycle in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		cyclePositions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "silverfetch_cycle_positions",
				Help: "Number of timeframe positions produced by the last cycle",
			},
		),
		sourceErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "silverfetch_source_errors_total",
				Help: "Total number of price source fetch failures",
			},
			[]string{"source"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "silverfetch_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		blendedPrice: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "silverfetch_blended_price_usd",
				Help: "Last blended silver spot price in USD per troy ounce",
			},
		),
		subscribers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "silverfetch_ws_subscribers",
				Help: "Current number of connected websocket subscribers",
			},
		),
		broadcasts: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "silverfetch_broadcasts_total",
				Help: "Total number of snapshot broadcasts",
			},
		),
		broadcastBytes: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "silverfetch_broadcast_bytes_total",
				Help: "Total bytes of snapshot payloads broadcast",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "silverfetch_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCycle records the duration and output size of a refresh cycle.
func (r *Recorder) RecordCycle(seconds float64, positions int) {
	r.cycleDuration.Observe(seconds)
	r.cyclePositions.Set(float64(positions))
}

// RecordSourceError records a failed fetch from a price source.
func (r *Recorder) RecordSourceError(source string) {
	r.sourceErrors.WithLabelValues(source).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordBlendedPrice records the last blended spot price.
func (r *Recorder) RecordBlendedPrice(price float64) {
	r.blendedPrice.Set(price)
}

// RecordSubscribers records the current websocket subscriber count.
func (r *Recorder) RecordSubscribers(n int) {
	r.subscribers.Set(float64(n))
}

// RecordBroadcast records one snapshot broadcast of the given payload size.
func (r *Recorder) RecordBroadcast(bytes int) {
	r.broadcasts.Inc()
	r.broadcastBytes.Add(float64(bytes))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
