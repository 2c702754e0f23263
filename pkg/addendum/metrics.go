package addendum

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects engine counters. A nil *Metrics records nothing.
type Metrics struct {
	parseCache    *prometheus.CounterVec
	constructions prometheus.Counter
	errors        *prometheus.CounterVec
	buildDuration prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewMetrics creates the engine collectors and registers them with reg. A nil
// reg registers them with a fresh private registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		parseCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "addendum",
				Name:      "parse_cache_total",
				Help:      "Parse cache lookups by result",
			},
			[]string{"result"},
		),
		constructions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "addendum",
				Name:      "constructions_total",
				Help:      "Total number of annotation instances constructed",
			},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "addendum",
				Name:      "errors_total",
				Help:      "Annotation errors by kind",
			},
			[]string{"kind"},
		),
		buildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "addendum",
				Name:      "build_duration_seconds",
				Help:      "Duration of collection builds in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
	}

	if reg == nil {
		registry := prometheus.NewRegistry()
		reg = registry
		m.gatherer = registry
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}

	for _, c := range []prometheus.Collector{m.parseCache, m.constructions, m.errors, m.buildDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler exposes the registry the metrics were registered with
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) cacheHit() {
	if m == nil {
		return
	}
	m.parseCache.WithLabelValues("hit").Inc()
}

func (m *Metrics) cacheMiss() {
	if m == nil {
		return
	}
	m.parseCache.WithLabelValues("miss").Inc()
}

func (m *Metrics) constructed() {
	if m == nil {
		return
	}
	m.constructions.Inc()
}

func (m *Metrics) failed(err error) {
	if m == nil || err == nil {
		return
	}
	kind := "other"
	if code, ok := CodeOf(err); ok {
		kind = code.String()
	}
	m.errors.WithLabelValues(kind).Inc()
}

func (m *Metrics) observeBuild(start time.Time) {
	if m == nil {
		return
	}
	m.buildDuration.Observe(time.Since(start).Seconds())
}
