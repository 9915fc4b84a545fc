package models

import "time"

// ItemCondition grades the physical state of a collected jersey.
type ItemCondition string

const (
	ConditionNew       ItemCondition = "new"
	ConditionExcellent ItemCondition = "excellent"
	ConditionGood      ItemCondition = "good"
	ConditionWorn      ItemCondition = "worn"
)

// CollectionItem represents one jersey in a user's personal collection.
// A user may own the same catalog jersey only once; removal is a hard
// delete so the jersey can be re-added later.
type CollectionItem struct {
	ID        uint          `gorm:"primarykey"`
	UserID    uint          `gorm:"not null;uniqueIndex:idx_collection_user_jersey;index"`
	JerseyID  uint          `gorm:"not null;uniqueIndex:idx_collection_user_jersey"`
	Size      string        `gorm:"size:20"`
	Condition ItemCondition `gorm:"type:varchar(20);not null;default:'good'"`
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time

	User   User   `gorm:"foreignKey:UserID"`
	Jersey Jersey `gorm:"foreignKey:JerseyID"`
}
