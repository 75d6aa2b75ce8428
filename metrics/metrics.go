// Package metrics exposes Prometheus counters for the session lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "journal_client"

// Refresh outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeFailure        = "failure"
	OutcomeNoRefreshToken = "no_refresh_token"
	OutcomeAlreadyFresh   = "already_fresh"
)

// Metrics holds the client counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	RefreshAttempts *prometheus.CounterVec
	RefreshJoins    prometheus.Counter
	Replays         *prometheus.CounterVec
	Logouts         *prometheus.CounterVec
	Logins          *prometheus.CounterVec
	Requests        *prometheus.CounterVec
}

// New registers the counters on reg. Pass prometheus.DefaultRegisterer to
// expose them on the default /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RefreshAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "Token refresh flights by outcome",
		}, []string{"outcome"}),
		RefreshJoins: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refresh_joins_total",
			Help:      "Authentication failures that joined an in-flight refresh",
		}),
		Replays: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_replays_total",
			Help:      "Requests replayed after a refresh, by result",
		}, []string{"result"}),
		Logouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logouts_total",
			Help:      "Logouts by reason",
		}, []string{"reason"}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result",
		}, []string{"result"}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Authenticated requests by method and status class",
		}, []string{"method", "class"}),
	}
}

func (m *Metrics) IncrementRefresh(outcome string) {
	if m == nil {
		return
	}
	m.RefreshAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementRefreshJoins() {
	if m == nil {
		return
	}
	m.RefreshJoins.Inc()
}

func (m *Metrics) IncrementReplay(result string) {
	if m == nil {
		return
	}
	m.Replays.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementLogout(reason string) {
	if m == nil {
		return
	}
	m.Logouts.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementLogin(result string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(result).Inc()
}

// ObserveRequest counts a finished gateway request. status 0 is a transport
// failure.
func (m *Metrics) ObserveRequest(method string, status int) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status == 0:
		return "transport_error"
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
