package service

import (
	"context"
	"encoding/json"

	"guideline-agent-be/internal/dto"
	"guideline-agent-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IUsageConsumerService interface {
	Consume(ctx context.Context) error
}

type usageConsumerService struct {
	subscriber    message.Subscriber
	topicName     string
	conversations IConversationService
	logger        logger.ILogger
}

func NewUsageConsumerService(
	subscriber message.Subscriber,
	topicName string,
	conversations IConversationService,
	log logger.ILogger,
) IUsageConsumerService {
	return &usageConsumerService{
		subscriber:    subscriber,
		topicName:     topicName,
		conversations: conversations,
		logger:        log,
	}
}

// Consume subscribes until ctx is cancelled. Callers cancel ctx only after
// publishers have drained, otherwise late records reach a topic with no subscriber.
func (s *usageConsumerService) Consume(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *usageConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.GuidelineUsageMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("USAGE", "Failed to unmarshal usage message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // a malformed payload never becomes valid
		return
	}

	// A delivered record is written even when the subscription is shutting down.
	s.conversations.RecordGuidelineUsage(context.WithoutCancel(ctx), payload.ConversationId, payload.GuidelineId, payload.Score, payload.Applied)
	msg.Ack()
}
