package service

import (
	"context"
	"fmt"
	"time"

	"guideline-agent-be/internal/dto"
	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/pkg/logger"
	"guideline-agent-be/pkg/events"
	"guideline-agent-be/pkg/llm"
	"guideline-agent-be/pkg/matching"
	"guideline-agent-be/pkg/prompt"

	"github.com/google/uuid"
)

// TurnRanker is satisfied by *matching.Orchestrator.
type TurnRanker interface {
	Rank(ctx context.Context, req matching.TurnRequest) (*matching.TurnResult, error)
	CommitUsage(ctx context.Context, conversationId uuid.UUID, result *matching.TurnResult)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IChatService interface {
	ProcessMessage(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type chatService struct {
	conversations IConversationService
	lexical       TurnRanker
	vector        TurnRanker // nil when no embedding provider is configured
	prompts       *prompt.Builder
	llmProvider   llm.LLMProvider
	events        EventPublisher // optional
	logger        logger.ILogger
}

func NewChatService(
	conversations IConversationService,
	lexical TurnRanker,
	vector TurnRanker,
	prompts *prompt.Builder,
	llmProvider llm.LLMProvider,
	eventPublisher EventPublisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		conversations: conversations,
		lexical:       lexical,
		vector:        vector,
		prompts:       prompts,
		llmProvider:   llmProvider,
		events:        eventPublisher,
		logger:        log,
	}
}

func (s *chatService) ProcessMessage(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	sessionId := req.SessionId
	if sessionId == "" {
		sessionId = uuid.NewString()
	}

	conversation, err := s.conversations.CreateOrGet(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	ranker := s.rankerFor(req.MatchingMethod)
	result, err := ranker.Rank(ctx, matching.TurnRequest{
		SessionId:      sessionId,
		Message:        req.Message,
		ConversationId: conversation.Id,
		HybridWeight:   req.HybridWeight,
		DeferUsage:     true,
	})
	if err != nil {
		return nil, err
	}

	guidelines := make([]*entity.Guideline, len(result.Guidelines))
	for i, rg := range result.Guidelines {
		guidelines[i] = rg.Guideline
	}

	reply, err := s.llmProvider.Chat(ctx, buildHistory(s.prompts.Build(guidelines), result.RecentMessages, req.Message))
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	now := time.Now()
	if err := s.conversations.AddMessage(ctx, conversation.Id, entity.ContextMessage{
		Role:      entity.MessageRoleUser,
		Content:   req.Message,
		Timestamp: now,
	}); err != nil {
		return nil, err
	}
	if err := s.conversations.AddMessage(ctx, conversation.Id, entity.ContextMessage{
		Role:           entity.MessageRoleAssistant,
		Content:        reply,
		Timestamp:      time.Now(),
		GuidelinesUsed: result.GuidelineIds(),
	}); err != nil {
		return nil, err
	}

	// Usage counts only once the reply exists.
	ranker.CommitUsage(ctx, conversation.Id, result)
	s.publishMatched(ctx, sessionId, conversation.Id, result)

	res := &dto.ChatResponse{
		Response:         reply,
		GuidelinesUsed:   make([]dto.GuidelineUsedResponse, len(result.Guidelines)),
		SessionId:        sessionId,
		ConversationId:   conversation.Id,
		DetectedCategory: optionalString(result.DetectedCategory),
		MatchingMethod:   result.Method,
	}
	for i, rg := range result.Guidelines {
		res.GuidelinesUsed[i] = dto.GuidelineUsedResponse{
			Id:         rg.Guideline.Id,
			Condition:  rg.Guideline.Condition,
			Action:     rg.Guideline.Action,
			Score:      rg.Score,
			UsageCount: rg.UsageCount,
		}
	}
	return res, nil
}

// rankerFor defaults to vector ranking and falls back to lexical when it is unavailable.
func (s *chatService) rankerFor(method string) TurnRanker {
	if method == matching.StrategyLexical {
		return s.lexical
	}
	if s.vector == nil {
		s.logger.Debug("CHAT", "Vector matching requested but unavailable, using text matching", nil)
		return s.lexical
	}
	return s.vector
}

func (s *chatService) publishMatched(ctx context.Context, sessionId string, conversationId uuid.UUID, result *matching.TurnResult) {
	if s.events == nil {
		return
	}

	matched := make([]events.MatchedGuideline, len(result.Guidelines))
	for i, rg := range result.Guidelines {
		matched[i] = events.MatchedGuideline{
			Id:         rg.Guideline.Id.String(),
			Score:      rg.Score,
			UsageCount: rg.UsageCount,
		}
	}

	evt := events.NewGuidelinesMatchedEvent(sessionId, conversationId.String(), result.DetectedCategory, result.Method, result.CandidateCount, matched)
	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.Warn("CHAT", "Failed to publish GUIDELINES_MATCHED event", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

func buildHistory(systemPrompt string, recent []entity.ContextMessage, message string) []llm.Message {
	history := make([]llm.Message, 0, len(recent)+2)
	history = append(history, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	for _, m := range recent {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}
	return append(history, llm.Message{Role: llm.RoleUser, Content: message})
}
