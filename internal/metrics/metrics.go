package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"opswatch/internal/model"
)

const namespace = "opswatch"

// Metrics owns a private registry so that several instances (tests, the
// MCP server next to the HTTP API) never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	classified       *prometheus.CounterVec
	upstreamCalls    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	pollDuration     *prometheus.HistogramVec
	fleet            *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		classified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classified_records_total",
			Help:      "Log records classified, by attack type and severity.",
		}, []string{"attack_type", "severity"}),
		upstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Requests sent to upstream backends, by outcome.",
		}, []string{"backend", "operation", "outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of upstream requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend"}),
		pollDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Duration of one dashboard poll, by view and outcome.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"view", "outcome"}),
		fleet: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fleet_hosts",
			Help:      "Hosts seen in the last poll, by state.",
		}, []string{"state"}),
	}

	m.registry.MustRegister(
		m.classified,
		m.upstreamCalls,
		m.upstreamDuration,
		m.pollDuration,
		m.fleet,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveClassification(c model.Classification) {
	m.classified.WithLabelValues(string(c.AttackType), c.Severity.String()).Inc()
}

func (m *Metrics) ObserveUpstream(backend, operation string, err error, elapsed time.Duration) {
	m.upstreamCalls.WithLabelValues(backend, operation, outcome(err)).Inc()
	m.upstreamDuration.WithLabelValues(backend).Observe(elapsed.Seconds())
}

func (m *Metrics) ObservePoll(view string, err error, elapsed time.Duration) {
	m.pollDuration.WithLabelValues(view, outcome(err)).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveFleet(s model.FleetStats) {
	m.fleet.WithLabelValues("total").Set(float64(s.TotalHosts))
	m.fleet.WithLabelValues("up").Set(float64(s.ServersUp))
	m.fleet.WithLabelValues("down").Set(float64(s.ServersDown))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
