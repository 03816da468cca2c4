package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActiveOnly keeps guidelines flagged as active
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}

type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category = ?", s.Category)
}

// GuidelineSearchQuery filters guidelines by condition, action or category (case-insensitive)
type GuidelineSearchQuery struct {
	Query string
}

func (s GuidelineSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Query + "%"
	return db.Where("condition ILIKE ? OR action ILIKE ? OR category ILIKE ?", pattern, pattern, pattern)
}

type WithoutEmbedding struct{}

func (s WithoutEmbedding) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("condition_embedding IS NULL")
}

type WithEmbedding struct{}

func (s WithEmbedding) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("condition_embedding IS NOT NULL")
}

type ByConversationID struct {
	ConversationID uuid.UUID
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type ByMessageHash struct {
	Hash string
}

func (s ByMessageHash) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("message_hash = ?", s.Hash)
}

type CreatedBefore struct {
	Time time.Time
}

func (s CreatedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at < ?", s.Time)
}
