package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/computeplane/computeplane/master/pkg/check"
)

// LifecycleOperation is the operation a compute session lifecycle event reports on.
type LifecycleOperation string

const (
	// StartOperation is the start of a compute session.
	StartOperation LifecycleOperation = "Start"
	// StopOperation is the stop of a compute session.
	StopOperation LifecycleOperation = "Stop"
)

// LifecycleStatus is the status reported by a lifecycle event. Any status may follow any other.
type LifecycleStatus string

const (
	// InProgressStatus means the operation is still running.
	InProgressStatus LifecycleStatus = "InProgress"
	// WarningStatus means the operation hit a recoverable problem.
	WarningStatus LifecycleStatus = "Warning"
	// CompletedStatus means the operation finished.
	CompletedStatus LifecycleStatus = "Completed"
	// FailedStatus means the operation failed.
	FailedStatus LifecycleStatus = "Failed"
)

// EntityRef points at the entity a compute session was launched for.
type EntityRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// LifecycleEvent is one status report for a running compute session.
type LifecycleEvent struct {
	TrackingID string             `json:"tracking_id"`
	UserID     UserID             `json:"user_id"`
	Entity     *EntityRef         `json:"entity,omitempty"`
	Operation  LifecycleOperation `json:"operation"`
	Status     LifecycleStatus    `json:"status"`
	Progress   int                `json:"progress"`
	EventTime  time.Time          `json:"event_time"`
	Message    string             `json:"message"`
}

// Validate implements the check.Validatable interface.
func (e LifecycleEvent) Validate() []error {
	return []error{
		check.In(string(e.Operation), []string{
			string(StartOperation), string(StopOperation),
		}, "lifecycle operation"),
		check.In(string(e.Status), []string{
			string(InProgressStatus), string(WarningStatus),
			string(CompletedStatus), string(FailedStatus),
		}, "lifecycle status"),
		check.GreaterThanOrEqualTo(float64(e.Progress), 0, "progress"),
		check.LessThanOrEqualTo(float64(e.Progress), 100, "progress"),
	}
}

// IsSuccess is true for every status except Failed.
func (e LifecycleEvent) IsSuccess() bool {
	return e.Status != FailedStatus
}

// IsCompleted is true once progress reaches 100.
func (e LifecycleEvent) IsCompleted() bool {
	return e.Progress == 100
}

// NewTrackingID returns a fresh tracking id for a compute session.
func NewTrackingID() string {
	return uuid.New().String()
}
