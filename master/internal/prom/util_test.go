package prom_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/computeplane/computeplane/master/internal/prom"
)

var (
	labels    = []string{"method"}
	histogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: prom.Namespace,
		Subsystem: "my_subsystem",
		Name:      "seconds",
		Buckets:   prometheus.DefBuckets,
	}, labels)
)

func ExampleTime() {
	defer prom.Time(histogram.WithLabelValues("GET"))()

	// do thing you want to time.
	time.Sleep(time.Millisecond)
	// Output:
}

var counter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: prom.Namespace,
	Subsystem: "my_subsystem",
	Name:      "errors",
}, labels)

func ExampleErrCount() {
	var err error
	defer prom.ErrCount(counter.WithLabelValues("GET"), &err)

	// do some stuff that may cause error to be non-nil
	_, err = strconv.Atoi("abc")
	// Output:
}

func TestErrCount(t *testing.T) {
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_errors"})

	parse := func(s string) (err error) {
		defer prom.ErrCount(c, &err)
		_, err = strconv.Atoi(s)
		return err
	}
	require.NoError(t, parse("1"))
	require.Error(t, parse("one"))
	require.Error(t, parse("two"))
	require.Equal(t, 2.0, testutil.ToFloat64(c))

	prom.ErrCount(c, nil)
	require.Equal(t, 2.0, testutil.ToFloat64(c))
}

func TestTime(t *testing.T) {
	h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "test_seconds"})
	func() {
		defer prom.Time(h)()
	}()
	require.Equal(t, 1, testutil.CollectAndCount(h))
}
