// Package metrics exposes Prometheus metrics about published batches.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the publish metrics in its own prometheus.Registry,
// so nothing is registered globally.
type Registry struct {
	registry *prometheus.Registry

	publishTotal     *prometheus.CounterVec
	messagesTotal    prometheus.Counter
	publishDuration  prometheus.Histogram
	publishBatchSize prometheus.Histogram
}

// NewRegistry returns a Registry with every metric registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		publishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kpub_publish_total",
				Help: "Total number of batches sent",
			},
			[]string{"status"}, // success, error
		),
		messagesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kpub_messages_published_total",
				Help: "Total number of messages in batches sent successfully",
			},
		),
		publishDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kpub_publish_duration_seconds",
				Help:    "Time spent sending batches",
				Buckets: prometheus.DefBuckets,
			},
		),
		publishBatchSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kpub_publish_batch_size",
				Help:    "Number of messages in batches sent",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
		),
	}
	r.registry.MustRegister(
		r.publishTotal,
		r.messagesTotal,
		r.publishDuration,
		r.publishBatchSize,
	)
	return r
}

// ReportBatch records one send of a batch of the given size.
func (r *Registry) ReportBatch(messages int, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	} else {
		r.messagesTotal.Add(float64(messages))
	}
	r.publishTotal.WithLabelValues(status).Inc()
	r.publishDuration.Observe(d.Seconds())
	r.publishBatchSize.Observe(float64(messages))
}

// Gatherer returns the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteToTextfile writes the current metric values to path in the
// text exposition format, for the node exporter textfile collector.
func (r *Registry) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
