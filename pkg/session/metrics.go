package session

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreOps tracks credential store operations by backend, operation
	// and result.
	StoreOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudplaya_session_store_ops_total",
			Help: "Total number of credential store operations",
		},
		[]string{"backend", "operation", "result"}, // "file"|"redis", "load"|"save"|"delete", "ok"|"miss"|"error"
	)
)

func observe(backend, operation string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNoCredentials):
		result = "miss"
	default:
		result = "error"
	}
	StoreOps.WithLabelValues(backend, operation, result).Inc()
}
