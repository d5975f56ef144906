package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/computeplane/computeplane/master/internal/lifecycle"
	"github.com/computeplane/computeplane/master/pkg/model"
)

func serveTestRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLifecycleCallbacks(t *testing.T) {
	tracker := lifecycle.NewTracker(lifecycle.NewMemoryStore())
	events := make(chan model.LifecycleEvent, 2)
	e := newEcho(tracker, events, clockwork.NewRealClock())

	rec := serveTestRequest(t, e, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serveTestRequest(t, e, http.MethodPost, "/api/v1/lifecycle/events", `{
		"tracking_id": "abc",
		"operation": "Start",
		"status": "Completed",
		"progress": 100,
		"event_time": "2024-03-01T10:00:00Z",
		"message": "running"
	}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	event := <-events
	require.Equal(t, "abc", event.TrackingID)
	require.True(t, event.IsCompleted())
	require.NoError(t, tracker.Record(context.Background(), event))

	rec = serveTestRequest(t, e, http.MethodGet, "/api/v1/lifecycle/sessions/abc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Entries []lifecycle.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Entries, 1)
	require.Equal(t, "running", body.Entries[0].Message)

	rec = serveTestRequest(t, e, http.MethodGet, "/api/v1/lifecycle/sessions/abc/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var latest lifecycle.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	require.True(t, latest.IsCompleted())

	rec = serveTestRequest(t, e, http.MethodGet, "/api/v1/lifecycle/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"tracking_ids": ["abc"]}`, rec.Body.String())
}

func TestLifecycleCallbackErrors(t *testing.T) {
	tracker := lifecycle.NewTracker(lifecycle.NewMemoryStore())
	e := newEcho(tracker, make(chan model.LifecycleEvent, 1), clockwork.NewRealClock())

	rec := serveTestRequest(t, e, http.MethodPost, "/api/v1/lifecycle/events",
		`{"operation": "Start", "status": "InProgress"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "tracking_id must be provided")

	rec = serveTestRequest(t, e, http.MethodPost, "/api/v1/lifecycle/events",
		`{"tracking_id": "abc", "operation": "Restart", "status": "InProgress", "progress": 101}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "lifecycle operation")
	require.Contains(t, rec.Body.String(), "progress: 101 is not less than or equal to 100")

	rec = serveTestRequest(t, e, http.MethodGet, "/api/v1/lifecycle/sessions/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLifecycleCallbackDefaultsEventTime(t *testing.T) {
	tracker := lifecycle.NewTracker(lifecycle.NewMemoryStore())
	events := make(chan model.LifecycleEvent, 1)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	e := newEcho(tracker, events, clockwork.NewFakeClockAt(now))

	rec := serveTestRequest(t, e, http.MethodPost, "/api/v1/lifecycle/events",
		`{"tracking_id": "abc", "operation": "Stop", "status": "InProgress"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, now, (<-events).EventTime)
}
