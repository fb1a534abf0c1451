package diag

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	probesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scout_probes_total",
		Help: "Total number of diagnostic probes executed",
	})

	probeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scout_probe_failures_total",
		Help: "Total number of probes that failed in the GPU or stress step",
	})

	stressRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scout_stress_runs_total",
		Help: "Total number of matmul stress checks executed",
	})
)
