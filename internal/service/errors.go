package service

import "errors"

var (
	ErrGuidelineNotFound     = errors.New("guideline not found")
	ErrConversationNotFound  = errors.New("conversation not found")
	ErrEmbeddingNotAvailable = errors.New("no embedding provider configured")
	ErrGuidelineNoEmbedding  = errors.New("guideline has no embedding")
	ErrInvalidPriority       = errors.New("priority must be between 0 and 10")
)
