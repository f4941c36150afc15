package serve

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry *prometheus.Registry

	builds      prometheus.Counter
	buildErrors prometheus.Counter
	duration    prometheus.Histogram
	banks       prometheus.Gauge
	ratio       *prometheus.GaugeVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		builds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dupont",
			Name:      "builds_total",
			Help:      "Report builds attempted.",
		}),
		buildErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dupont",
			Name:      "build_errors_total",
			Help:      "Report builds that failed.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dupont",
			Name:      "build_duration_seconds",
			Help:      "Time to load call reports and build the report.",
			Buckets:   prometheus.DefBuckets,
		}),
		banks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dupont",
			Name:      "banks",
			Help:      "Banks in the latest successful build.",
		}),
		ratio: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "dupont",
			Name:      "ratio",
			Help:      "Latest DuPont ratio per bank.",
		}, []string{"alias", "metric"}),
	}
	m.registry.MustRegister(
		m.builds,
		m.buildErrors,
		m.duration,
		m.banks,
		m.ratio,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *metrics) observe(b *Build, elapsed time.Duration, err error) {
	m.builds.Inc()
	m.duration.Observe(elapsed.Seconds())
	if err != nil {
		m.buildErrors.Inc()
		return
	}

	m.banks.Set(float64(len(b.Banks)))
	m.ratio.Reset()
	for _, br := range b.Banks {
		for _, metric := range metricOrder {
			m.ratio.WithLabelValues(br.Alias, string(metric)).Set(br.Value(metric))
		}
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
