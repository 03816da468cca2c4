package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageEmbedding struct {
	Id             uuid.UUID
	MessageHash    string
	MessageText    string
	Embedding      []float32
	EmbeddingModel string
	CreatedAt      time.Time
}
