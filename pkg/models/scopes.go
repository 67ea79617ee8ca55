package models

import "gorm.io/gorm"

// ActiveOnly is the read intent for soft-deletable entities: list/get must
// never surface deleted rows. Soft-delete and restore deliberately skip
// this scope — they look a row up in any state and report the conflict
// themselves, so an unknown id (404) stays distinguishable from a wrong
// state (409).
func ActiveOnly(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}
