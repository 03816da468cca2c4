package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guideline-agent-be/internal/dto"
	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/pkg/logger"
	"guideline-agent-be/internal/repository/specification"
	"guideline-agent-be/internal/repository/unitofwork"
	"guideline-agent-be/pkg/matching"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type IConversationService interface {
	CreateOrGet(ctx context.Context, sessionId string) (*entity.Conversation, error)
	AddMessage(ctx context.Context, conversationId uuid.UUID, message entity.ContextMessage) error
	GetRecentMessages(ctx context.Context, conversationId uuid.UUID, limit int) []entity.ContextMessage
	GetGuidelineUsageCounts(ctx context.Context, conversationId uuid.UUID) map[uuid.UUID]int
	RecordGuidelineUsage(ctx context.Context, conversationId, guidelineId uuid.UUID, score float64, applied bool)
	GetBySession(ctx context.Context, sessionId string) (*dto.ConversationResponse, error)
	DeleteBySession(ctx context.Context, sessionId string) error

	matching.ConversationSource
}

type conversationService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewConversationService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IConversationService {
	return &conversationService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

// CreateOrGet returns the conversation of the session, creating it on first use.
// A concurrent create for the same session surfaces as a unique violation and is resolved by re-reading.
func (s *conversationService) CreateOrGet(ctx context.Context, sessionId string) (*entity.Conversation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ConversationRepository()

	existing, err := repo.FindOne(ctx, specification.BySessionID{SessionID: sessionId})
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	conversation := &entity.Conversation{
		Id:        uuid.New(),
		SessionId: sessionId,
		Messages:  []entity.ContextMessage{},
		CreatedAt: time.Now(),
	}
	err = repo.Create(ctx, conversation)
	if err == nil {
		return conversation, nil
	}

	if !isUniqueViolation(err) {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	raced, refetchErr := repo.FindOne(ctx, specification.BySessionID{SessionID: sessionId})
	if refetchErr != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", refetchErr)
	}
	if raced == nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return raced, nil
}

// AddMessage appends under a row lock and keeps only the most recent history.
func (s *conversationService) AddMessage(ctx context.Context, conversationId uuid.UUID, message entity.ContextMessage) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.ForUpdate{},
	)
	if err != nil {
		return fmt.Errorf("failed to add message: %w", err)
	}
	if conversation == nil {
		return ErrConversationNotFound
	}

	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	conversation.Messages = appendBounded(conversation.Messages, message, entity.ConversationMaxHistory)

	if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
		return fmt.Errorf("failed to add message: %w", err)
	}
	return uow.Commit()
}

func (s *conversationService) FetchRecentMessages(ctx context.Context, conversationId uuid.UUID, limit int) ([]entity.ContextMessage, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return []entity.ContextMessage{}, nil
	}
	return lastMessages(conversation.Messages, limit), nil
}

func (s *conversationService) FetchGuidelineUsageCounts(ctx context.Context, conversationId uuid.UUID) (map[uuid.UUID]int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.GuidelineUsageRepository().CountByGuideline(ctx, conversationId)
}

// GetRecentMessages degrades to an empty window on failure.
func (s *conversationService) GetRecentMessages(ctx context.Context, conversationId uuid.UUID, limit int) []entity.ContextMessage {
	messages, err := s.FetchRecentMessages(ctx, conversationId, limit)
	if err != nil {
		s.logger.Warn("CONVERSATION", "Failed to get recent messages", map[string]interface{}{
			"conversation_id": conversationId.String(),
			"error":           err.Error(),
		})
		return []entity.ContextMessage{}
	}
	return messages
}

// GetGuidelineUsageCounts degrades to no usage on failure.
func (s *conversationService) GetGuidelineUsageCounts(ctx context.Context, conversationId uuid.UUID) map[uuid.UUID]int {
	counts, err := s.FetchGuidelineUsageCounts(ctx, conversationId)
	if err != nil {
		s.logger.Warn("CONVERSATION", "Failed to get guideline usage", map[string]interface{}{
			"conversation_id": conversationId.String(),
			"error":           err.Error(),
		})
		return map[uuid.UUID]int{}
	}
	return counts
}

// RecordGuidelineUsage is best effort: failures are logged and dropped.
func (s *conversationService) RecordGuidelineUsage(ctx context.Context, conversationId, guidelineId uuid.UUID, score float64, applied bool) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	err := uow.GuidelineUsageRepository().Create(ctx, &entity.GuidelineUsage{
		Id:             uuid.New(),
		ConversationId: conversationId,
		GuidelineId:    guidelineId,
		Score:          score,
		Applied:        applied,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		s.logger.Error("CONVERSATION", "Failed to record guideline usage", map[string]interface{}{
			"conversation_id": conversationId.String(),
			"guideline_id":    guidelineId.String(),
			"error":           err.Error(),
		})
	}
}

func (s *conversationService) GetBySession(ctx context.Context, sessionId string) (*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.BySessionID{SessionID: sessionId})
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}

	res := &dto.ConversationResponse{
		SessionId:        conversation.SessionId,
		ConversationId:   conversation.Id,
		Messages:         make([]dto.ConversationMessageResponse, len(conversation.Messages)),
		UsedGuidelineIds: usedGuidelineIds(conversation.Messages),
		CreatedAt:        conversation.CreatedAt,
		UpdatedAt:        conversation.UpdatedAt,
	}
	for i, m := range conversation.Messages {
		res.Messages[i] = dto.ConversationMessageResponse{
			Role:           m.Role,
			Content:        m.Content,
			Timestamp:      m.Timestamp,
			GuidelinesUsed: m.GuidelinesUsed,
		}
	}
	return res, nil
}

// DeleteBySession removes the conversation together with its usage records.
func (s *conversationService) DeleteBySession(ctx context.Context, sessionId string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.BySessionID{SessionID: sessionId})
	if err != nil {
		return err
	}
	if conversation == nil {
		return ErrConversationNotFound
	}

	if err := uow.GuidelineUsageRepository().DeleteByConversation(ctx, conversation.Id); err != nil {
		return err
	}
	if err := uow.ConversationRepository().Delete(ctx, conversation.Id); err != nil {
		return err
	}
	return uow.Commit()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func appendBounded(messages []entity.ContextMessage, message entity.ContextMessage, max int) []entity.ContextMessage {
	messages = append(messages, message)
	if len(messages) > max {
		messages = messages[len(messages)-max:]
	}
	return messages
}

func lastMessages(messages []entity.ContextMessage, limit int) []entity.ContextMessage {
	if limit <= 0 || len(messages) <= limit {
		return messages
	}
	return messages[len(messages)-limit:]
}

func usedGuidelineIds(messages []entity.ContextMessage) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	ids := []uuid.UUID{}
	for _, m := range messages {
		for _, id := range m.GuidelinesUsed {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}
