package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type PrometheusRecorder struct {
	counters  *prometheus.CounterVec
	histogram *prometheus.HistogramVec
}

// NewPrometheusRecorder registers the gateway's metric vectors with the
// default registry. Call at most once per process.
func NewPrometheusRecorder() Recorder {
	counters := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payment_gateway",
			Name:      "events_total",
			Help:      "payment gateway event counters",
		},
		[]string{"type", "mode"},
	)

	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "payment_gateway",
			Name:      "latency_seconds",
			Help:      "payment gateway operation latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "mode"},
	)

	prometheus.MustRegister(counters, histogram)

	return &PrometheusRecorder{
		counters:  counters,
		histogram: histogram,
	}
}

func (p *PrometheusRecorder) IncCounter(name string, labels map[string]string) {
	p.counters.With(prometheus.Labels{
		"type": name,
		"mode": labels["mode"],
	}).Inc()
}

func (p *PrometheusRecorder) ObserveLatency(name string, d time.Duration, labels map[string]string) {
	p.histogram.With(prometheus.Labels{
		"operation": name,
		"mode":      labels["mode"],
	}).Observe(d.Seconds())
}
