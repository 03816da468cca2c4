package implementation

import (
	"context"
	"errors"
	"time"

	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/mapper"
	"guideline-agent-be/internal/model"
	"guideline-agent-be/internal/repository/contract"
	"guideline-agent-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MessageEmbeddingMapper
}

func NewMessageEmbeddingRepository(db *gorm.DB) contract.MessageEmbeddingRepository {
	return &MessageEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewMessageEmbeddingMapper(),
	}
}

func (r *MessageEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MessageEmbeddingRepositoryImpl) Upsert(ctx context.Context, embedding *entity.MessageEmbedding) error {
	m := r.mapper.ToModel(embedding)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{"message_text", "embedding", "embedding_model"}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *MessageEmbeddingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MessageEmbedding, error) {
	var m model.MessageEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MessageEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.MessageEmbedding{}).Count(&count).Error
	return count, err
}

func (r *MessageEmbeddingRepositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.applySpecifications(r.db.WithContext(ctx), specification.CreatedBefore{Time: cutoff}).Delete(&model.MessageEmbedding{})
	return res.RowsAffected, res.Error
}
