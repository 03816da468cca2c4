package dto

import "github.com/google/uuid"

type GuidelineEmbeddingCounts struct {
	Total             int64 `json:"total"`
	WithEmbeddings    int64 `json:"with_embeddings"`
	MissingEmbeddings int64 `json:"missing_embeddings"`
}

type MessageCacheStats struct {
	Total int64 `json:"total"`
}

type EmbeddingStatusResponse struct {
	Status              string                   `json:"status"`
	ProviderConfigured  bool                     `json:"provider_configured"`
	Guidelines          GuidelineEmbeddingCounts `json:"guidelines"`
	MessageCache        MessageCacheStats        `json:"message_cache"`
	EmbeddingModel      *string                  `json:"embedding_model"`
	VectorSearchEnabled bool                     `json:"vector_search_enabled"`
}

type GenerateEmbeddingsRequest struct {
	GuidelineIds []uuid.UUID `json:"guideline_ids"`
}

type GenerateEmbeddingsResponse struct {
	Updated                  int   `json:"updated"`
	Failed                   int   `json:"failed"`
	GuidelinesWithEmbeddings int64 `json:"guidelines_with_embeddings"`
}

type CleanupEmbeddingsResponse struct {
	DeletedCount  int64 `json:"deleted_count"`
	OlderThanDays int   `json:"older_than_days"`
}

type VectorSearchTestRequest struct {
	Query     string   `json:"query" validate:"required"`
	Threshold *float64 `json:"threshold" validate:"omitempty,min=0,max=1"`
	Limit     *int     `json:"limit" validate:"omitempty,min=1,max=50"`
}

type VectorSearchResult struct {
	Id                   uuid.UUID `json:"id"`
	Condition            string    `json:"condition"`
	Action               string    `json:"action"`
	Category             *string   `json:"category"`
	Similarity           float64   `json:"similarity"`
	SimilarityPercentage string    `json:"similarity_percentage"`
}

type VectorSearchTestResponse struct {
	Query   string               `json:"query"`
	Results []VectorSearchResult `json:"results"`
}

type GuidelineEmbeddingInfoResponse struct {
	GuidelineResponse
	EmbeddingModel     *string `json:"embedding_model"`
	EmbeddingDimension *int    `json:"embedding_dimension"`
}
