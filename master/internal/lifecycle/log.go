// Package lifecycle keeps the append-only, time-ordered status log of compute sessions.
package lifecycle

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/computeplane/computeplane/master/internal/api"
	"github.com/computeplane/computeplane/master/pkg/check"
	"github.com/computeplane/computeplane/master/pkg/model"
)

// ErrMalformedPayload is returned when a stored log cannot be parsed. Callers decide whether to
// discard the log or surface the error.
var ErrMalformedPayload = errors.New("malformed lifecycle payload")

// Entry is one record of a persisted lifecycle log. Readers of historical payloads rely on
// status, event_time and message; operation and progress are optional.
type Entry struct {
	Status    model.LifecycleStatus    `json:"status"`
	EventTime time.Time                `json:"event_time"`
	Message   string                   `json:"message"`
	Operation model.LifecycleOperation `json:"operation,omitempty"`
	Progress  int                      `json:"progress,omitempty"`
}

// IsSuccess is true for every status except Failed.
func (e Entry) IsSuccess() bool {
	return e.Status != model.FailedStatus
}

// IsCompleted is true once progress reaches 100.
func (e Entry) IsCompleted() bool {
	return e.Progress == 100
}

// AppendEvent adds the event to the log in current and returns the new payload, sorted by event
// time. A nil or empty current payload starts a new log. Entries with equal event times keep
// their insertion order. The event must carry a known operation and status and a progress between
// 0 and 100, but it is not checked against earlier entries.
func AppendEvent(trackingID string, event model.LifecycleEvent, current []byte) ([]byte, error) {
	if trackingID == "" {
		return nil, api.AsValidationError("tracking id must be provided")
	}
	if event.TrackingID != "" && event.TrackingID != trackingID {
		return nil, api.AsValidationError("event for %s appended to log %s",
			event.TrackingID, trackingID)
	}
	if err := check.Validate(event); err != nil {
		return nil, api.AsValidationError("invalid lifecycle event for %s: %s", trackingID, err)
	}

	entries, err := Decode(current)
	if err != nil {
		return nil, err
	}
	entries = append(entries, Entry{
		Status:    event.Status,
		EventTime: event.EventTime,
		Message:   event.Message,
		Operation: event.Operation,
		Progress:  event.Progress,
	})
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].EventTime.Before(entries[j].EventTime)
	})

	bs, err := json.Marshal(entries)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding lifecycle log %s", trackingID)
	}
	return bs, nil
}

// Decode parses a payload. A nil or empty payload is an empty log.
func Decode(payload []byte) ([]Entry, error) {
	entries := []Entry{}
	if len(payload) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, errors.Wrapf(ErrMalformedPayload, "%s", err)
	}
	return entries, nil
}
