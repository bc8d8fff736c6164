package server

import "github.com/prometheus/client_golang/prometheus"

var opsApplied = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "loom",
	Subsystem: "server",
	Name:      "ops_applied",
}, []string{"doc", "kind"})

var activeClients = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "loom",
	Subsystem: "server",
	Name:      "active_clients",
}, []string{"doc"})

var rebaseInvalidations = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "loom",
	Subsystem: "server",
	Name:      "rebase_invalidations",
}, []string{"doc"})

var framesRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "loom",
	Subsystem: "server",
	Name:      "frames_rejected",
}, []string{"doc", "reason"})

func init() {
	prometheus.MustRegister(opsApplied, activeClients, rebaseInvalidations, framesRejected)
}
