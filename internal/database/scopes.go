package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/projectplanning/planning-cloud-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// ForUpdate locks the selected rows until the surrounding transaction ends.
// Dialects without row locks (sqlite) drop the clause.
func ForUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
