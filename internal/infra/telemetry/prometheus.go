package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records credential and outbound-call activity. A nil *Metrics is
// valid and drops every observation, so wiring stays optional.
type Metrics struct {
	tokenAcquisitions *prometheus.CounterVec
	authReplays       prometheus.Counter
	requestDuration   *prometheus.HistogramVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Metrics{
		tokenAcquisitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paypalmcp_token_acquisitions_total",
				Help: "Total number of OAuth2 token acquisition attempts",
			},
			[]string{"outcome"},
		),
		authReplays: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "paypalmcp_auth_replays_total",
				Help: "Total number of calls replayed after an authorization rejection",
			},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paypalmcp_request_duration_seconds",
				Help:    "Duration of outbound API requests in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "status"},
		),
	}
}

func (m *Metrics) ObserveTokenAcquisition(err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.tokenAcquisitions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveAuthReplay() {
	if m == nil {
		return
	}
	m.authReplays.Inc()
}

func (m *Metrics) ObserveRequest(method, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, status).Observe(duration.Seconds())
}
