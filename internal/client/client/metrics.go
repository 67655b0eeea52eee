package client

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics counts refresh activity. A nil *Metrics records nothing.
type Metrics struct {
	Refreshes *prometheus.CounterVec
	Queued    prometheus.Counter
	Replays   *prometheus.CounterVec
	InFlight  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg (when not nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "iamclient",
			Subsystem: "token",
			Name:      "refresh_cycles_total",
			Help:      "Refresh cycles by outcome.",
		}, []string{"outcome"}),
		Queued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "iamclient",
			Subsystem: "token",
			Name:      "queued_requests_total",
			Help:      "Requests that waited for an in-flight refresh.",
		}),
		Replays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "iamclient",
			Subsystem: "token",
			Name:      "replays_total",
			Help:      "Requests replayed after a refresh, by outcome.",
		}, []string{"outcome"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "iamclient",
			Subsystem: "token",
			Name:      "refresh_in_flight",
			Help:      "1 while a refresh call is in flight.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Refreshes, m.Queued, m.Replays, m.InFlight)
	}
	return m
}

func (m *Metrics) refreshStarted() {
	if m != nil {
		m.InFlight.Inc()
	}
}

func (m *Metrics) refreshDone(ok bool) {
	if m == nil {
		return
	}
	m.InFlight.Dec()
	m.Refreshes.WithLabelValues(outcomeLabel(ok)).Inc()
}

func (m *Metrics) queued() {
	if m != nil {
		m.Queued.Inc()
	}
}

func (m *Metrics) replayed(ok bool) {
	if m != nil {
		m.Replays.WithLabelValues(outcomeLabel(ok)).Inc()
	}
}

func outcomeLabel(ok bool) string {
	if ok {
		return outcomeSuccess
	}
	return outcomeFailure
}
