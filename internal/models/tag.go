package models

import "time"

// Tag labels catalog jerseys (e.g. "Retro", "Match Worn", "Signed").
// Hard delete: a deleted name must be reusable without tripping the unique
// index, same as relationships and collection items.
type Tag struct {
	ID        uint   `gorm:"primarykey"`
	Name      string `gorm:"size:100;unique;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
