// Package telemetry defines the Prometheus instruments for the scrape
// pipeline.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the pipeline's Prometheus collectors. Pass a nil registerer
// to get working but unregistered collectors (tests).
type Metrics struct {
	Fetches        *prometheus.CounterVec
	Retries        prometheus.Counter
	EventsEmitted  *prometheus.CounterVec
	EventsDropped  *prometheus.CounterVec
	ScrapeDuration *prometheus.HistogramVec
}

// New builds the collectors and registers them when reg is non-nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marquee",
			Name:      "fetches_total",
			Help:      "Fetch attempts by mode and outcome.",
		}, []string{"mode", "outcome"}),
		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marquee",
			Name:      "scrape_retries_total",
			Help:      "Scrape attempts that failed and were retried.",
		}),
		EventsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marquee",
			Name:      "events_emitted_total",
			Help:      "Normalized events emitted per venue.",
		}, []string{"venue"}),
		EventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marquee",
			Name:      "events_dropped_total",
			Help:      "Raw events dropped during normalization, by reason.",
		}, []string{"reason"}),
		ScrapeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "marquee",
			Name:      "scrape_duration_seconds",
			Help:      "Wall time of one venue scrape, by terminal status.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"venue", "status"}),
	}
	if reg != nil {
		reg.MustRegister(m.Fetches, m.Retries, m.EventsEmitted, m.EventsDropped, m.ScrapeDuration)
	}
	return m
}

// ObserveScrape records one venue's terminal scrape outcome.
func (m *Metrics) ObserveScrape(venue, status string, d time.Duration) {
	m.ScrapeDuration.WithLabelValues(venue, status).Observe(d.Seconds())
}
