package mapper

import (
	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type MessageEmbeddingMapper struct{}

func NewMessageEmbeddingMapper() *MessageEmbeddingMapper {
	return &MessageEmbeddingMapper{}
}

func (m *MessageEmbeddingMapper) ToEntity(e *model.MessageEmbedding) *entity.MessageEmbedding {
	if e == nil {
		return nil
	}
	return &entity.MessageEmbedding{
		Id:             e.Id,
		MessageHash:    e.MessageHash,
		MessageText:    e.MessageText,
		Embedding:      e.Embedding.Slice(),
		EmbeddingModel: e.EmbeddingModel,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *MessageEmbeddingMapper) ToModel(e *entity.MessageEmbedding) *model.MessageEmbedding {
	if e == nil {
		return nil
	}
	return &model.MessageEmbedding{
		Id:             e.Id,
		MessageHash:    e.MessageHash,
		MessageText:    e.MessageText,
		Embedding:      pgvector.NewVector(e.Embedding),
		EmbeddingModel: e.EmbeddingModel,
		CreatedAt:      e.CreatedAt,
	}
}
