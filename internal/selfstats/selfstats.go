// Package selfstats provides ambient internal instrumentation for the
// daemon, the Prometheus-backed analogue of telegraf's selfstat package
// (which is internal to the telegraf module and so cannot be imported
// directly — see SPEC_FULL.md "DOMAIN STACK"). None of this is consulted by
// the CORE's own control flow; it exists purely for operators.
package selfstats

import "github.com/prometheus/client_golang/prometheus"

// Stats bundles the counters and gauges an operator would want when running
// this daemon: samples accepted, parse failures, connections, rotations and
// sink outcomes.
type Stats struct {
	SamplesAccepted  prometheus.Counter
	ParseErrors      prometheus.Counter
	ConnectionsOpen  prometheus.Gauge
	ConnectionsTotal prometheus.Counter
	Rotations        prometheus.Counter
	SinkFailures     prometheus.Counter
}

// New registers and returns a fresh Stats against reg.
func New(reg prometheus.Registerer) *Stats {
	s := &Stats{
		SamplesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "statsited",
			Name:      "samples_accepted_total",
			Help:      "Number of samples successfully recorded into the live generation.",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "statsited",
			Name:      "parse_errors_total",
			Help:      "Number of connections closed due to malformed input.",
		}),
		ConnectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "statsited",
			Name:      "connections_open",
			Help:      "Number of currently open TCP connections.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "statsited",
			Name:      "connections_total",
			Help:      "Number of TCP connections accepted since start.",
		}),
		Rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "statsited",
			Name:      "rotations_total",
			Help:      "Number of flush-interval rotations performed.",
		}),
		SinkFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "statsited",
			Name:      "sink_failures_total",
			Help:      "Number of drains whose streaming command exited non-zero or failed to write.",
		}),
	}
	reg.MustRegister(
		s.SamplesAccepted,
		s.ParseErrors,
		s.ConnectionsOpen,
		s.ConnectionsTotal,
		s.Rotations,
		s.SinkFailures,
	)
	return s
}
