package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/riverkeep/river-ops/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// DateBetween restricts a civil-date column to [from, to] inclusive.
func DateBetween(column string, from, to time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" >= ? AND "+column+" <= ?", from, to)
	}
}

// SectionOrder is the manual upstream-to-downstream ordering of sections.
func SectionOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("name ASC")
}
