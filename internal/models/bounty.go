package models

import "gorm.io/gorm"

// BountyStatus tracks the lifecycle of a community bounty.
type BountyStatus string

const (
	BountyOpen      BountyStatus = "open"
	BountyFulfilled BountyStatus = "fulfilled"
	BountyClosed    BountyStatus = "closed"
)

// Bounty represents a "wanted" post for a jersey a user is missing.
type Bounty struct {
	gorm.Model
	UserID      uint   `gorm:"not null;index"`
	Title       string `gorm:"size:255;not null"`
	Description string
	Reward      string       `gorm:"size:255"`
	Club        string       `gorm:"size:255;index"`
	Season      string       `gorm:"size:20"`
	Status      BountyStatus `gorm:"type:varchar(20);not null;default:'open';index"`

	User User `gorm:"foreignKey:UserID"`
}
