package lifecycle

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/computeplane/computeplane/master/internal/api"
	"github.com/computeplane/computeplane/master/internal/prom"
	"github.com/computeplane/computeplane/master/pkg/logger"
	"github.com/computeplane/computeplane/master/pkg/model"
)

var (
	eventCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: prom.Namespace,
		Subsystem: "lifecycle",
		Name:      "events",
		Help:      "lifecycle events recorded, by operation and status",
	}, []string{"operation", "status"})
	eventErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: prom.Namespace,
		Subsystem: "lifecycle",
		Name:      "errors",
		Help:      "lifecycle events that could not be recorded",
	})
)

func init() {
	prometheus.MustRegister(eventCounter)
	prometheus.MustRegister(eventErrors)
}

// Tracker records lifecycle events into a store.
type Tracker struct {
	store  Store
	syslog *log.Entry
}

// NewTracker returns a tracker over the store.
func NewTracker(store Store) *Tracker {
	return &Tracker{
		store:  store,
		syslog: log.WithFields(logger.Context{"component": "lifecycle"}.Fields()),
	}
}

// Record appends the event to the log of its tracking id. A stored log that cannot be parsed is
// left untouched and ErrMalformedPayload is returned.
func (t *Tracker) Record(ctx context.Context, event model.LifecycleEvent) (err error) {
	defer prom.ErrCount(eventErrors, &err)

	err = t.store.Update(ctx, event.TrackingID, func(current []byte) ([]byte, error) {
		return AppendEvent(event.TrackingID, event, current)
	})
	if err != nil {
		return errors.Wrapf(err, "recording %s event for %s", event.Operation, event.TrackingID)
	}

	eventCounter.WithLabelValues(string(event.Operation), string(event.Status)).Inc()
	t.syslog.WithFields(log.Fields{
		"tracking-id": event.TrackingID,
		"operation":   event.Operation,
		"status":      event.Status,
		"progress":    event.Progress,
	}).Debug("recorded lifecycle event")
	return nil
}

// Entries returns the log of a tracking id, oldest first.
func (t *Tracker) Entries(ctx context.Context, trackingID string) ([]Entry, error) {
	if trackingID == "" {
		return nil, api.AsValidationError("tracking id must be provided")
	}
	payload, err := t.store.Payload(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	return Decode(payload)
}

// Latest returns the newest entry of a tracking id.
func (t *Tracker) Latest(ctx context.Context, trackingID string) (Entry, error) {
	entries, err := t.Entries(ctx, trackingID)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, api.AsErrNotFound("lifecycle log %s is empty", trackingID)
	}
	return entries[len(entries)-1], nil
}

// TrackingIDs lists the tracking ids with a stored log.
func (t *Tracker) TrackingIDs(ctx context.Context) ([]string, error) {
	return t.store.TrackingIDs(ctx)
}

// Run records events from the channel until it is closed or the context is done. Failures are
// logged and do not stop the loop.
func (t *Tracker) Run(ctx context.Context, events <-chan model.LifecycleEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := t.Record(ctx, event); err != nil {
				t.syslog.WithError(err).WithField("tracking-id", event.TrackingID).
					Error("failed to record lifecycle event")
			}
		}
	}
}
