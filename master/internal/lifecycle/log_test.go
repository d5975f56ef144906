package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/computeplane/computeplane/master/internal/api"
	"github.com/computeplane/computeplane/master/pkg/model"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func event(status model.LifecycleStatus, at time.Time, msg string) model.LifecycleEvent {
	return model.LifecycleEvent{
		TrackingID: "t-1",
		UserID:     1,
		Operation:  model.StartOperation,
		Status:     status,
		EventTime:  at,
		Message:    msg,
	}
}

func TestAppendEventOutOfOrder(t *testing.T) {
	first, err := AppendEvent("t-1", event(model.InProgressStatus, t0.Add(time.Minute), "pulling"), nil)
	require.NoError(t, err)
	second, err := AppendEvent("t-1", event(model.InProgressStatus, t0, "queued"), first)
	require.NoError(t, err)

	entries, err := Decode(second)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "queued", entries[0].Message)
	require.Equal(t, "pulling", entries[1].Message)
	require.True(t, entries[0].EventTime.Equal(t0))
}

func TestAppendEventStableForEqualTimes(t *testing.T) {
	var payload []byte
	var err error
	for _, msg := range []string{"a", "b", "c"} {
		payload, err = AppendEvent("t-1", event(model.WarningStatus, t0, msg), payload)
		require.NoError(t, err)
	}
	payload, err = AppendEvent("t-1", event(model.CompletedStatus, t0.Add(-time.Second), "z"),
		payload)
	require.NoError(t, err)

	entries, err := Decode(payload)
	require.NoError(t, err)
	var msgs []string
	for _, e := range entries {
		msgs = append(msgs, e.Message)
	}
	require.Equal(t, []string{"z", "a", "b", "c"}, msgs)
}

func TestAppendEventAnyStatusOrder(t *testing.T) {
	payload, err := AppendEvent("t-1", event(model.FailedStatus, t0, "failed"), []byte{})
	require.NoError(t, err)
	ev := event(model.InProgressStatus, t0.Add(time.Second), "retrying")
	ev.Progress = 10
	payload, err = AppendEvent("t-1", ev, payload)
	require.NoError(t, err)

	entries, err := Decode(payload)
	require.NoError(t, err)
	require.False(t, entries[0].IsSuccess())
	require.True(t, entries[1].IsSuccess())
	require.False(t, entries[1].IsCompleted())
}

func TestAppendEventErrors(t *testing.T) {
	_, err := AppendEvent("t-1", event(model.InProgressStatus, t0, "x"), []byte("{not json"))
	require.ErrorIs(t, err, ErrMalformedPayload)

	_, err = AppendEvent("", event(model.InProgressStatus, t0, "x"), nil)
	require.ErrorIs(t, err, api.ErrInvalid)

	_, err = AppendEvent("t-2", event(model.InProgressStatus, t0, "x"), nil)
	require.ErrorIs(t, err, api.ErrInvalid)
}

func TestAppendEventRejectsInvalidEvents(t *testing.T) {
	tests := map[string]struct {
		mutate func(e *model.LifecycleEvent)
		want   string
	}{
		"unknown operation": {
			mutate: func(e *model.LifecycleEvent) { e.Operation = "Restart" },
			want:   "lifecycle operation: Restart not in",
		},
		"missing operation": {
			mutate: func(e *model.LifecycleEvent) { e.Operation = "" },
			want:   "lifecycle operation",
		},
		"unknown status": {
			mutate: func(e *model.LifecycleEvent) { e.Status = "Paused" },
			want:   "lifecycle status: Paused not in",
		},
		"negative progress": {
			mutate: func(e *model.LifecycleEvent) { e.Progress = -1 },
			want:   "progress: -1 is not greater than or equal to 0",
		},
		"progress above 100": {
			mutate: func(e *model.LifecycleEvent) { e.Progress = 101 },
			want:   "progress: 101 is not less than or equal to 100",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ev := event(model.InProgressStatus, t0, "x")
			tc.mutate(&ev)
			payload, err := AppendEvent("t-1", ev, nil)
			require.ErrorIs(t, err, api.ErrInvalid)
			require.ErrorContains(t, err, tc.want)
			require.Nil(t, payload)
		})
	}

	for _, progress := range []int{0, 100} {
		ev := event(model.CompletedStatus, t0, "edge")
		ev.Progress = progress
		_, err := AppendEvent("t-1", ev, nil)
		require.NoError(t, err)
	}
}

func TestPayloadFieldNames(t *testing.T) {
	payload, err := AppendEvent("t-1", event(model.CompletedStatus, t0, "done"), nil)
	require.NoError(t, err)
	require.JSONEq(t,
		`[{"status":"Completed","event_time":"2024-03-01T12:00:00Z","message":"done","operation":"Start"}]`,
		string(payload))
}
