package scope

import "gorm.io/gorm"

func OrderByCreatedAsc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// OrderByPriorityDesc breaks priority ties by creation time so listings are stable.
func OrderByPriorityDesc(db *gorm.DB) *gorm.DB {
	return db.Order("priority DESC").Order("created_at ASC")
}
