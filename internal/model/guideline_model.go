package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type Guideline struct {
	Id                   uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Condition            string           `gorm:"type:text;not null"`
	Action               string           `gorm:"type:text;not null"`
	Priority             int              `gorm:"not null;default:0;index"`
	Active               bool             `gorm:"not null;default:true;index"`
	Category             *string          `gorm:"type:varchar(50);index"`
	ConditionEmbedding   *pgvector.Vector `gorm:"type:vector"` // dimension depends on the embedding provider
	EmbeddingModel       *string          `gorm:"type:varchar(100)"`
	EmbeddingGeneratedAt *time.Time
	CreatedAt            time.Time `gorm:"autoCreateTime"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime"`
}

func (Guideline) TableName() string {
	return "guidelines"
}
