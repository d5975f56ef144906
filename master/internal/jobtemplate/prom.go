package jobtemplate

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/computeplane/computeplane/master/internal/prom"
)

const promSubsystem = "jobtemplate"

// Resolution outcomes.
const (
	outcomeOK           = "ok"
	outcomeInvalid      = "invalid"
	outcomeNotFound     = "not_found"
	outcomeNotPermitted = "not_permitted"
	outcomeError        = "error"
)

var (
	resolveHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: prom.Namespace,
		Subsystem: promSubsystem,
		Name:      "seconds",
		Help:      "duration of job template operations",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
	resolveErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: prom.Namespace,
		Subsystem: promSubsystem,
		Name:      "errors",
		Help:      "errors from job template operations",
	}, []string{"method"})
	resolveOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: prom.Namespace,
		Subsystem: promSubsystem,
		Name:      "resolutions",
		Help:      "job template resolutions by outcome",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(resolveHistogram)
	prometheus.MustRegister(resolveErrors)
	prometheus.MustRegister(resolveOutcomes)
}
