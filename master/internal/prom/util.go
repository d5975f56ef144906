// Package prom holds helpers shared by the packages that export prometheus metrics.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is the namespace of every metric the master exports.
const Namespace = "computeplane"

// Time starts a timer and returns a function that records the elapsed seconds in o. Use it as
// `defer prom.Time(o)()`.
func Time(o prometheus.Observer) func() {
	start := time.Now()
	return func() {
		o.Observe(time.Since(start).Seconds())
	}
}

// ErrCount increments c if *err is non-nil. Use it deferred, with err a named return value.
func ErrCount(c prometheus.Counter, err *error) {
	if err != nil && *err != nil {
		c.Inc()
	}
}
