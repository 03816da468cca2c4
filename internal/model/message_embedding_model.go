package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type MessageEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MessageHash    string          `gorm:"type:char(64);not null;uniqueIndex"`
	MessageText    string          `gorm:"type:text"`
	Embedding      pgvector.Vector `gorm:"type:vector"`
	EmbeddingModel string          `gorm:"type:varchar(100)"`
	CreatedAt      time.Time       `gorm:"autoCreateTime;index"`
}

func (MessageEmbedding) TableName() string {
	return "message_embeddings"
}
