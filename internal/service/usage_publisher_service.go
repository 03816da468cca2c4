package service

import (
	"context"
	"encoding/json"

	"guideline-agent-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// IUsagePublisherService queues usage records for the usage consumer.
type IUsagePublisherService interface {
	RecordUsage(ctx context.Context, conversationId, guidelineId uuid.UUID, score float64, applied bool) error
}

type usagePublisherService struct {
	topicName string
	publisher message.Publisher
}

func NewUsagePublisherService(topicName string, publisher message.Publisher) IUsagePublisherService {
	return &usagePublisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (s *usagePublisherService) RecordUsage(ctx context.Context, conversationId, guidelineId uuid.UUID, score float64, applied bool) error {
	payload, err := json.Marshal(dto.GuidelineUsageMessage{
		ConversationId: conversationId,
		GuidelineId:    guidelineId,
		Score:          score,
		Applied:        applied,
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return s.publisher.Publish(s.topicName, msg)
}
