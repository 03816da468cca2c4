package mapper

import (
	"guideline-agent-be/internal/entity"
	"guideline-agent-be/internal/model"
)

type GuidelineUsageMapper struct {
	guidelineMapper *GuidelineMapper
}

func NewGuidelineUsageMapper() *GuidelineUsageMapper {
	return &GuidelineUsageMapper{guidelineMapper: NewGuidelineMapper()}
}

func (m *GuidelineUsageMapper) ToEntity(u *model.GuidelineUsage) *entity.GuidelineUsage {
	if u == nil {
		return nil
	}
	return &entity.GuidelineUsage{
		Id:             u.Id,
		ConversationId: u.ConversationId,
		GuidelineId:    u.GuidelineId,
		Score:          u.Score,
		Applied:        u.Applied,
		CreatedAt:      u.CreatedAt,
		Guideline:      m.guidelineMapper.ToEntity(u.Guideline),
	}
}

func (m *GuidelineUsageMapper) ToModel(u *entity.GuidelineUsage) *model.GuidelineUsage {
	if u == nil {
		return nil
	}
	return &model.GuidelineUsage{
		Id:             u.Id,
		ConversationId: u.ConversationId,
		GuidelineId:    u.GuidelineId,
		Score:          u.Score,
		Applied:        u.Applied,
		CreatedAt:      u.CreatedAt,
	}
}
