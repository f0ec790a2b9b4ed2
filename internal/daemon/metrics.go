package daemon

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theirongolddev/cusage/internal/pipeline"
)

// Metrics holds the daemon's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Reloads        *prometheus.CounterVec
	ReloadDuration prometheus.Histogram
	LastReload     prometheus.Gauge

	Records        prometheus.Gauge
	Requests       *prometheus.GaugeVec
	ModelRequests  *prometheus.GaugeVec
	UsersExceeding prometheus.Gauge
	PowerUsers     prometheus.Gauge
	ExcessCost     prometheus.Gauge
	Subscribers    prometheus.Gauge
}

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cusage",
				Name:      "reloads_total",
				Help:      "Total report rebuilds by result",
			},
			[]string{"result"},
		),
		ReloadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "cusage",
				Name:      "reload_duration_seconds",
				Help:      "Time to ingest inputs and rebuild the report",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		LastReload: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cusage",
			Name:      "last_reload_timestamp_seconds",
			Help:      "Unix time of the last successful rebuild",
		}),
		Records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cusage",
			Name:      "records",
			Help:      "Usage records in the current report",
		}),
		Requests: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "cusage",
				Name:      "requests",
				Help:      "Request volume by quota status",
			},
			[]string{"status"},
		),
		ModelRequests: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "cusage",
				Name:      "model_requests",
				Help:      "Request volume by model and quota status",
			},
			[]string{"model", "status"},
		),
		UsersExceeding: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cusage",
			Name:      "users_exceeding_quota",
			Help:      "Distinct users with at least one exceeding request",
		}),
		PowerUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cusage",
			Name:      "power_users",
			Help:      "Users in the top decile by volume",
		}),
		ExcessCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cusage",
			Name:      "excess_cost_usd",
			Help:      "Excess cost of exceeding requests",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cusage",
			Name:      "stream_subscribers",
			Help:      "Connected SSE clients",
		}),
	}

	m.registry.MustRegister(
		m.Reloads, m.ReloadDuration, m.LastReload, m.Records, m.Requests,
		m.ModelRequests, m.UsersExceeding, m.PowerUsers, m.ExcessCost, m.Subscribers,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeReload(err error, took time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Reloads.WithLabelValues(result).Inc()
	m.ReloadDuration.Observe(took.Seconds())
	if err == nil {
		m.LastReload.SetToCurrentTime()
	}
}

func (m *Metrics) setReport(r *pipeline.Report) {
	m.Records.Set(float64(r.Records))
	m.Requests.WithLabelValues("compliant").Set(r.Status.CompliantRequests)
	m.Requests.WithLabelValues("exceeding").Set(r.Status.ExceedingRequests)
	m.UsersExceeding.Set(float64(r.UsersExceedingQuota))
	m.PowerUsers.Set(float64(r.PowerUsers.TotalPowerUsers))
	m.ExcessCost.Set(r.ExcessCost)

	// Models can disappear between reloads.
	m.ModelRequests.Reset()
	for _, s := range r.ModelSummaries {
		m.ModelRequests.WithLabelValues(s.Model, "compliant").Set(s.CompliantRequests)
		m.ModelRequests.WithLabelValues(s.Model, "exceeding").Set(s.ExceedingRequests)
	}
}
