package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go-faculty-leave/internal/events"
	"go-faculty-leave/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// errPoisonMessage marks messages that can never be processed and are
// committed so they do not block the partition.
var errPoisonMessage = errors.New("undecodable leave event")

func ConsumeLeaveNotifications(
	ctx context.Context,
	reader MessageReader,
	notifier notification.Notifier,
	logger *zap.Logger,
) {
	if logger == nil {
		logger = zap.L()
	}
	log := logger.Named("kafka.consumer.leave_notification")
	log.Info("leave notification consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave notification consumer stopped")
				return
			}
			log.Error("fetch leave message failed", zap.Error(err))
			continue
		}

		if err := HandleMessage(ctx, msg, notifier); err != nil {
			if !errors.Is(err, errPoisonMessage) {
				log.Error("handle leave message failed",
					zap.String("topic", msg.Topic),
					zap.String("key", string(msg.Key)),
					zap.Error(err),
				)
				continue
			}
			log.Error("skipping leave message", zap.String("topic", msg.Topic), zap.Error(err))
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave message failed", zap.Error(err))
			continue
		}

		log.Debug("leave message processed",
			zap.String("topic", msg.Topic),
			zap.String("key", string(msg.Key)),
		)
	}
}

// HandleMessage routes one message to the notifier by topic.
func HandleMessage(ctx context.Context, msg kafkago.Message, notifier notification.Notifier) error {
	switch msg.Topic {
	case events.LeaveSubmittedTopic:
		var event events.LeaveSubmittedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("%w: %v", errPoisonMessage, err)
		}
		return notifier.LeaveSubmitted(ctx, event)
	case events.LeaveDecidedTopic:
		var event events.LeaveDecidedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("%w: %v", errPoisonMessage, err)
		}
		return notifier.LeaveDecided(ctx, event)
	default:
		return fmt.Errorf("%w: unknown topic %q", errPoisonMessage, msg.Topic)
	}
}
