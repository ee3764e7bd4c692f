package dispatch

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics is the optional Prometheus instrumentation a Dispatcher
// registers when constructed with a non-nil *prometheus.Registry. A
// Dispatcher built with a nil registry behaves identically and pays no
// metrics cost.
type metrics struct {
	datagramsReceived  *prometheus.CounterVec
	datagramsSent      *prometheus.CounterVec
	datagramsDropped   *prometheus.CounterVec
	reliableRetransmit prometheus.Counter
	connectionsActive  prometheus.Gauge
}

func newMetrics(reg *prometheus.Registry) *metrics {
	if reg == nil {
		return nil
	}

	m := &metrics{
		datagramsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netcore_datagrams_received_total",
			Help: "Datagrams received by command byte.",
		}, []string{"command"}),
		datagramsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netcore_datagrams_sent_total",
			Help: "Datagrams sent by command byte.",
		}, []string{"command"}),
		datagramsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "netcore_datagrams_dropped_total",
			Help: "Datagrams dropped without dispatch, by reason.",
		}, []string{"reason"}),
		reliableRetransmit: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "netcore_reliable_retransmits_total",
			Help: "Reliable datagrams retransmitted after reliableTimeout.",
		}),
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netcore_connections_active",
			Help: "Connections currently registered with the Dispatcher.",
		}),
	}

	reg.MustRegister(m.datagramsReceived, m.datagramsSent, m.datagramsDropped, m.reliableRetransmit, m.connectionsActive)
	return m
}

func (m *metrics) dropped(reason string) {
	if m == nil {
		return
	}
	m.datagramsDropped.WithLabelValues(reason).Inc()
}

func (m *metrics) received(command byte) {
	if m == nil {
		return
	}
	m.datagramsReceived.WithLabelValues(commandLabel(command)).Inc()
}

func (m *metrics) sent(command byte) {
	if m == nil {
		return
	}
	m.datagramsSent.WithLabelValues(commandLabel(command)).Inc()
}

func (m *metrics) retransmit() {
	if m == nil {
		return
	}
	m.reliableRetransmit.Inc()
}

func (m *metrics) setActiveConnections(n int) {
	if m == nil {
		return
	}
	m.connectionsActive.Set(float64(n))
}

func commandLabel(command byte) string {
	return strconv.Itoa(int(command))
}
