package device

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	poolHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scout_tensor_pool_hits_total",
		Help: "Total number of successful tensor pool retrievals",
	})

	poolMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scout_tensor_pool_misses_total",
		Help: "Total number of tensor pool misses (fresh allocations)",
	})

	tensorsAllocated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_tensors_allocated_total",
		Help: "Total number of tensors allocated, by backend",
	}, []string{"backend"})
)
