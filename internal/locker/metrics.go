package locker

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	lockAcquisitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "economy_lock_acquisitions_total",
			Help: "Successful advisory lock acquisitions",
		},
		[]string{"key_prefix"},
	)
	lockTimeouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "economy_lock_timeouts_total",
			Help: "Lock acquisitions that failed within the timeout budget",
		},
		[]string{"key_prefix"},
	)
	lockRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "economy_lock_retries_total",
			Help: "Retry attempts consumed by locked operations",
		},
	)
	lockSweeps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "economy_lock_sweep_forced_total",
			Help: "Expired locks force-released by the background sweep",
		},
	)
)

func init() {
	prometheus.MustRegister(lockAcquisitions, lockTimeouts, lockRetries, lockSweeps)
}
