package implementation

import (
	"context"
	"errors"
	"time"

	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/mapper"
	"guideline-agent-be/internal/model"
	"guideline-agent-be/internal/repository/contract"
	"guideline-agent-be/internal/repository/scope"
	"guideline-agent-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type GuidelineRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GuidelineMapper
}

func NewGuidelineRepository(db *gorm.DB) contract.GuidelineRepository {
	return &GuidelineRepositoryImpl{
		db:     db,
		mapper: mapper.NewGuidelineMapper(),
	}
}

func (r *GuidelineRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *GuidelineRepositoryImpl) Create(ctx context.Context, guideline *entity.Guideline) error {
	m := r.mapper.ToModel(guideline)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*guideline = *r.mapper.ToEntity(m)
	return nil
}

func (r *GuidelineRepositoryImpl) Update(ctx context.Context, guideline *entity.Guideline) error {
	m := r.mapper.ToModel(guideline)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*guideline = *r.mapper.ToEntity(m)
	return nil
}

func (r *GuidelineRepositoryImpl) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32, embeddingModel string, generatedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Guideline{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"condition_embedding":    pgvector.NewVector(embedding),
			"embedding_model":        embeddingModel,
			"embedding_generated_at": generatedAt,
		}).Error
}

func (r *GuidelineRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Guideline, error) {
	var m model.Guideline
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

// FindAll lists guidelines by priority, highest first.
func (r *GuidelineRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Guideline, error) {
	var models []*model.Guideline
	query := r.applySpecifications(r.db.WithContext(ctx), specs...).Scopes(scope.OrderByPriorityDesc)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *GuidelineRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Guideline{}).Count(&count).Error
	return count, err
}

// SearchByVector ranks active guidelines by cosine similarity to the query vector.
// Cosine distance in pgvector is: 1 - cosine_similarity
func (r *GuidelineRepositoryImpl) SearchByVector(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*contract.ScoredGuideline, error) {
	if limit <= 0 {
		limit = 20
	}

	type result struct {
		model.Guideline
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("guidelines").
		Select("guidelines.*, 1 - (condition_embedding <=> ?) as similarity", queryVector).
		Where("active = ?", true).
		Where("condition_embedding IS NOT NULL").
		Where("1 - (condition_embedding <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredGuideline, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredGuideline{
			Guideline:  r.mapper.ToEntity(&res.Guideline),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
