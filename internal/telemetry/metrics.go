package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"toolshelf/internal/ingest"
)

func NewMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	registry.MustRegister(prometheus.NewGoCollector())
	return registry
}

type IngestMetrics struct {
	uploads        *prometheus.CounterVec
	added          prometheus.Counter
	skipped        prometheus.Counter
	uploadDuration *prometheus.HistogramVec
}

func NewIngestMetrics(registerer prometheus.Registerer) *IngestMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &IngestMetrics{
		uploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolshelf_uploads_total",
				Help: "Total number of bulk uploads by outcome",
			},
			[]string{"outcome"},
		),
		added: factory.NewCounter(prometheus.CounterOpts{
			Name: "toolshelf_tools_added_total",
			Help: "Total number of tools inserted by uploads",
		}),
		skipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "toolshelf_tools_skipped_total",
			Help: "Total number of uploaded tools skipped as duplicates",
		}),
		uploadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolshelf_upload_duration_seconds",
				Help:    "Duration of bulk uploads in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"outcome"},
		),
	}
}

func (m *IngestMetrics) ObserveUpload(outcome string, duration time.Duration, report *ingest.Report) {
	m.uploads.WithLabelValues(outcome).Inc()
	m.uploadDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	if report != nil {
		m.added.Add(float64(report.Added))
		m.skipped.Add(float64(report.Skipped))
	}
}

var _ ingest.Observer = (*IngestMetrics)(nil)
