package notification

import (
	"context"

	"go-faculty-leave/internal/events"

	"go.uber.org/zap"
)

// Notifier delivers leave workflow notifications to people.
type Notifier interface {
	LeaveSubmitted(ctx context.Context, event events.LeaveSubmittedEvent) error
	LeaveDecided(ctx context.Context, event events.LeaveDecidedEvent) error
}

// LogNotifier writes notifications as structured log lines.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger ...*zap.Logger) *LogNotifier {
	l := zap.L().Named("notification")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification")
	}
	return &LogNotifier{logger: l}
}

func (n *LogNotifier) LeaveSubmitted(_ context.Context, event events.LeaveSubmittedEvent) error {
	n.logger.Info("notify department head of new leave request",
		zap.String("request_id", event.RequestID),
		zap.String("leave_id", event.LeaveID),
		zap.String("department", event.Department),
		zap.String("requester_id", event.RequesterID),
		zap.String("leave_type", event.LeaveType),
		zap.Int("days", event.Days),
	)
	return nil
}

func (n *LogNotifier) LeaveDecided(_ context.Context, event events.LeaveDecidedEvent) error {
	n.logger.Info("notify requester of leave decision",
		zap.String("request_id", event.RequestID),
		zap.String("leave_id", event.LeaveID),
		zap.String("requester_id", event.RequesterID),
		zap.String("outcome", event.Outcome),
		zap.String("decided_by", event.DecidedBy),
	)
	return nil
}
