package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"guideline-agent-be/internal/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationService_CreateOrGet(t *testing.T) {
	store := newMemoryStore()
	svc := NewConversationService(&fakeFactory{store: store}, testLogger)

	first, err := svc.CreateOrGet(context.Background(), "session-1")
	require.NoError(t, err)
	second, err := svc.CreateOrGet(context.Background(), "session-1")
	require.NoError(t, err)

	assert.Equal(t, first.Id, second.Id)
	assert.Len(t, store.conversations, 1)
}

func TestConversationService_CreateOrGet_ResolvesUniqueViolation(t *testing.T) {
	store := newMemoryStore()
	winner := &entity.Conversation{Id: uuid.New(), SessionId: "session-1"}
	store.beforeConversationCreate = func(c *entity.Conversation) error {
		// another turn created the row between our read and our insert
		store.mu.Lock()
		store.conversations[winner.Id] = winner
		store.mu.Unlock()
		return fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	}
	svc := NewConversationService(&fakeFactory{store: store}, testLogger)

	conv, err := svc.CreateOrGet(context.Background(), "session-1")

	require.NoError(t, err)
	assert.Equal(t, winner.Id, conv.Id)
}

func TestConversationService_CreateOrGet_OtherErrorsSurface(t *testing.T) {
	store := newMemoryStore()
	boom := errors.New("connection reset")
	store.beforeConversationCreate = func(c *entity.Conversation) error { return boom }
	svc := NewConversationService(&fakeFactory{store: store}, testLogger)

	_, err := svc.CreateOrGet(context.Background(), "session-1")

	assert.ErrorIs(t, err, boom)
}

func TestConversationService_AddMessageKeepsLastTwenty(t *testing.T) {
	store := newMemoryStore()
	svc := NewConversationService(&fakeFactory{store: store}, testLogger)
	conv, err := svc.CreateOrGet(context.Background(), "session-1")
	require.NoError(t, err)

	for i := 0; i < 25; i++ {
		require.NoError(t, svc.AddMessage(context.Background(), conv.Id, entity.ContextMessage{
			Role:    entity.MessageRoleUser,
			Content: fmt.Sprintf("mensaje %d", i),
		}))
	}

	stored := store.conversations[conv.Id]
	require.Len(t, stored.Messages, entity.ConversationMaxHistory)
	assert.Equal(t, "mensaje 5", stored.Messages[0].Content)
	assert.Equal(t, "mensaje 24", stored.Messages[19].Content)
	assert.False(t, stored.Messages[0].Timestamp.IsZero())
}

func TestConversationService_AddMessageUnknownConversation(t *testing.T) {
	svc := NewConversationService(&fakeFactory{store: newMemoryStore()}, testLogger)

	err := svc.AddMessage(context.Background(), uuid.New(), entity.ContextMessage{Role: "user", Content: "hola"})

	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestConversationService_RecentMessagesOldestFirst(t *testing.T) {
	store := newMemoryStore()
	svc := NewConversationService(&fakeFactory{store: store}, testLogger)
	conv, _ := svc.CreateOrGet(context.Background(), "s")
	for _, content := range []string{"uno", "dos", "tres", "cuatro"} {
		require.NoError(t, svc.AddMessage(context.Background(), conv.Id, entity.ContextMessage{Role: "user", Content: content, Timestamp: time.Now()}))
	}

	recent := svc.GetRecentMessages(context.Background(), conv.Id, 3)

	require.Len(t, recent, 3)
	assert.Equal(t, "dos", recent[0].Content)
	assert.Equal(t, "cuatro", recent[2].Content)
}

func TestConversationService_DegradesOnReadFailures(t *testing.T) {
	store := newMemoryStore()
	store.fail("Conversation.FindOne", errors.New("timeout"))
	store.fail("Usage.CountByGuideline", errors.New("timeout"))
	svc := NewConversationService(&fakeFactory{store: store}, testLogger)

	assert.Empty(t, svc.GetRecentMessages(context.Background(), uuid.New(), 3))
	assert.Empty(t, svc.GetGuidelineUsageCounts(context.Background(), uuid.New()))

	_, err := svc.FetchRecentMessages(context.Background(), uuid.New(), 3)
	assert.Error(t, err)
}

func TestConversationService_RecordUsageFailureIsSwallowed(t *testing.T) {
	store := newMemoryStore()
	store.fail("Usage.Create", errors.New("disk full"))
	svc := NewConversationService(&fakeFactory{store: store}, testLogger)

	assert.NotPanics(t, func() {
		svc.RecordGuidelineUsage(context.Background(), uuid.New(), uuid.New(), 70, true)
	})
	assert.Zero(t, store.usageCount())
}

func TestConversationService_UsageCounts(t *testing.T) {
	store := newMemoryStore()
	svc := NewConversationService(&fakeFactory{store: store}, testLogger)
	conv, g1, g2 := uuid.New(), uuid.New(), uuid.New()

	svc.RecordGuidelineUsage(context.Background(), conv, g1, 80, true)
	svc.RecordGuidelineUsage(context.Background(), conv, g1, 76, true)
	svc.RecordGuidelineUsage(context.Background(), conv, g2, 50, true)
	svc.RecordGuidelineUsage(context.Background(), uuid.New(), g2, 50, true)

	counts := svc.GetGuidelineUsageCounts(context.Background(), conv)
	assert.Equal(t, map[uuid.UUID]int{g1: 2, g2: 1}, counts)
}

func TestConversationService_GetAndDeleteBySession(t *testing.T) {
	store := newMemoryStore()
	svc := NewConversationService(&fakeFactory{store: store}, testLogger)
	conv, _ := svc.CreateOrGet(context.Background(), "s")
	gid := uuid.New()
	require.NoError(t, svc.AddMessage(context.Background(), conv.Id, entity.ContextMessage{Role: "user", Content: "hola"}))
	require.NoError(t, svc.AddMessage(context.Background(), conv.Id, entity.ContextMessage{Role: "assistant", Content: "buenas", GuidelinesUsed: []uuid.UUID{gid}}))
	svc.RecordGuidelineUsage(context.Background(), conv.Id, gid, 90, true)

	res, err := svc.GetBySession(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, conv.Id, res.ConversationId)
	assert.Len(t, res.Messages, 2)
	assert.Equal(t, []uuid.UUID{gid}, res.UsedGuidelineIds)

	require.NoError(t, svc.DeleteBySession(context.Background(), "s"))
	assert.Empty(t, store.conversations)
	assert.Zero(t, store.usageCount())

	_, err = svc.GetBySession(context.Background(), "s")
	assert.ErrorIs(t, err, ErrConversationNotFound)
	assert.ErrorIs(t, svc.DeleteBySession(context.Background(), "s"), ErrConversationNotFound)
}
