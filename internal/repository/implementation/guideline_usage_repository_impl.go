package implementation

import (
	"context"

	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/mapper"
	"guideline-agent-be/internal/model"
	"guideline-agent-be/internal/repository/contract"
	"guideline-agent-be/internal/repository/scope"
	"guideline-agent-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GuidelineUsageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GuidelineUsageMapper
}

func NewGuidelineUsageRepository(db *gorm.DB) contract.GuidelineUsageRepository {
	return &GuidelineUsageRepositoryImpl{
		db:     db,
		mapper: mapper.NewGuidelineUsageMapper(),
	}
}

func (r *GuidelineUsageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *GuidelineUsageRepositoryImpl) Create(ctx context.Context, usage *entity.GuidelineUsage) error {
	m := r.mapper.ToModel(usage)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*usage = *r.mapper.ToEntity(m)
	return nil
}

func (r *GuidelineUsageRepositoryImpl) FindAllWithGuideline(ctx context.Context, specs ...specification.Specification) ([]*entity.GuidelineUsage, error) {
	var models []*model.GuidelineUsage
	query := r.applySpecifications(r.db.WithContext(ctx).Preload("Guideline"), specs...).Scopes(scope.OrderByCreatedAsc)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.GuidelineUsage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *GuidelineUsageRepositoryImpl) CountByGuideline(ctx context.Context, conversationId uuid.UUID) (map[uuid.UUID]int, error) {
	type row struct {
		GuidelineId uuid.UUID
		Count       int
	}
	var rows []row

	err := r.db.WithContext(ctx).
		Model(&model.GuidelineUsage{}).
		Select("guideline_id, COUNT(*) as count").
		Where("conversation_id = ?", conversationId).
		Group("guideline_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		counts[r.GuidelineId] = r.Count
	}
	return counts, nil
}

func (r *GuidelineUsageRepositoryImpl) DeleteByConversation(ctx context.Context, conversationId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("conversation_id = ?", conversationId).Delete(&model.GuidelineUsage{}).Error
}
