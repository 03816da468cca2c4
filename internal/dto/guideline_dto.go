package dto

import (
	"time"

	"github.com/google/uuid"
)

type GuidelineResponse struct {
	Id           uuid.UUID  `json:"id"`
	Condition    string     `json:"condition"`
	Action       string     `json:"action"`
	Priority     int        `json:"priority"`
	Active       bool       `json:"active"`
	Category     *string    `json:"category"`
	HasEmbedding bool       `json:"has_embedding"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type GuidelineListResponse struct {
	Guidelines []GuidelineResponse `json:"guidelines"`
	Count      int                 `json:"count"`
}

type CreateGuidelineRequest struct {
	Condition string  `json:"condition" validate:"required"`
	Action    string  `json:"action" validate:"required"`
	Priority  *int    `json:"priority" validate:"omitempty,min=0,max=10"`
	Active    *bool   `json:"active"`
	Category  *string `json:"category" validate:"omitempty,max=50"`
}

type SearchGuidelineResponse struct {
	Query      string              `json:"query"`
	Guidelines []GuidelineResponse `json:"guidelines"`
	Count      int                 `json:"count"`
}

type GuidelineSummary struct {
	Condition string  `json:"condition"`
	Action    string  `json:"action"`
	Category  *string `json:"category"`
}

type TopGuidelineUsage struct {
	GuidelineId uuid.UUID         `json:"guideline_id"`
	Count       int               `json:"count"`
	Guideline   *GuidelineSummary `json:"guideline"`
}

type GuidelineStatisticsResponse struct {
	TotalUsages      int                 `json:"total_usages"`
	UniqueGuidelines int                 `json:"unique_guidelines"`
	AverageScore     float64             `json:"average_score"`
	AppliedCount     int                 `json:"applied_count"`
	ApplicationRate  float64             `json:"application_rate"`
	TopGuidelines    []TopGuidelineUsage `json:"top_guidelines"`
	UsagesByCategory map[string]int      `json:"usages_by_category"`
}

type GuidelineUsageSummary struct {
	TotalUsageRecords int     `json:"total_usage_records"`
	AppliedCount      int     `json:"applied_count"`
	NotAppliedCount   int     `json:"not_applied_count"`
	AverageScore      float64 `json:"average_score"`
}

type GuidelineUsageDetail struct {
	Guideline    *GuidelineSummary `json:"guideline"`
	GuidelineId  uuid.UUID         `json:"guideline_id"`
	UsageCount   int               `json:"usage_count"`
	AppliedCount int               `json:"applied_count"`
	AverageScore float64           `json:"average_score"`
}

type GuidelineUsageReportResponse struct {
	Summary    GuidelineUsageSummary  `json:"summary"`
	Guidelines []GuidelineUsageDetail `json:"guidelines"`
}

type SimilarGuidelineResponse struct {
	Id         uuid.UUID `json:"id"`
	Condition  string    `json:"condition"`
	Action     string    `json:"action"`
	Category   *string   `json:"category"`
	Similarity float64   `json:"similarity"`
}

type SimilarGuidelinesResponse struct {
	GuidelineId uuid.UUID                  `json:"guideline_id"`
	Threshold   float64                    `json:"threshold"`
	Similar     []SimilarGuidelineResponse `json:"similar"`
}
