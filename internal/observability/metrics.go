package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and gauges for the listener.
type Metrics struct {
	DatagramsReceived  prometheus.Counter
	PacketsDecoded     *prometheus.CounterVec // labels: type={obs_st,rapid_wind,...,unrecognized}
	DecodeErrors       *prometheus.CounterVec // labels: kind={unparseable,malformed}
	ObservationsStored prometheus.Counter
	StorageErrors      prometheus.Counter
	TransportErrors    prometheus.Counter
	ListenerRunning    prometheus.Gauge
}

// NewMetrics creates and registers all listener metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DatagramsReceived,
		m.PacketsDecoded,
		m.DecodeErrors,
		m.ObservationsStored,
		m.StorageErrors,
		m.TransportErrors,
		m.ListenerRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatagramsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tempest",
			Name:      "datagrams_received_total",
			Help:      "Total UDP datagrams received.",
		}),
		PacketsDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tempest",
			Name:      "packets_decoded_total",
			Help:      "Successfully decoded packets by type.",
		}, []string{"type"}),
		DecodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tempest",
			Name:      "decode_errors_total",
			Help:      "Datagrams that failed to decode, by kind.",
		}, []string{"kind"}),
		ObservationsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tempest",
			Name:      "observations_stored_total",
			Help:      "Total observations handed to storage without error.",
		}),
		StorageErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tempest",
			Name:      "storage_errors_total",
			Help:      "Total observations lost to storage failures.",
		}),
		TransportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tempest",
			Name:      "transport_errors_total",
			Help:      "Total failed receive calls.",
		}),
		ListenerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tempest",
			Name:      "listener_running",
			Help:      "1 when the ingestion loop is active, 0 when shut down.",
		}),
	}
}
