package model

import (
	"time"

	"github.com/google/uuid"
)

type GuidelineUsage struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId uuid.UUID  `gorm:"type:uuid;not null;index"`
	GuidelineId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Score          float64    `gorm:"not null"`
	Applied        bool       `gorm:"not null;default:true"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	Guideline      *Guideline `gorm:"foreignKey:GuidelineId"`
}

func (GuidelineUsage) TableName() string {
	return "guideline_usage"
}
