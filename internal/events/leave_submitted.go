package events

import "time"

const (
	LeaveSubmittedTopic     = "faculty.leave.submitted.v1"
	LeaveSubmittedEventType = "leave_submitted"
)

type LeaveSubmittedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id"`
	LeaveID     string    `json:"leave_id"`
	RequesterID string    `json:"requester_id"`
	Department  string    `json:"department"`
	LeaveType   string    `json:"leave_type"`
	Days        int       `json:"days"`
	OccurredAt  time.Time `json:"occurred_at"`
}
