package events

import "time"

const (
	LeaveDecidedTopic     = "faculty.leave.decided.v1"
	LeaveDecidedEventType = "leave_decided"
)

type LeaveDecidedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id"`
	LeaveID     string    `json:"leave_id"`
	RequesterID string    `json:"requester_id"`
	Department  string    `json:"department"`
	Outcome     string    `json:"outcome"`
	DecidedBy   string    `json:"decided_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// LeaveAggregateType is the outbox aggregate for both leave events.
const LeaveAggregateType = "leave_request"
