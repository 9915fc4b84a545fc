package models

import "gorm.io/gorm"

// SpotStatus tracks whether a spotted listing is still worth chasing.
type SpotStatus string

const (
	SpotOpen   SpotStatus = "open"
	SpotClosed SpotStatus = "closed"
)

// Spot represents a marketplace listing a user found elsewhere and shared
// with the community.
type Spot struct {
	gorm.Model
	UserID      uint   `gorm:"not null;index"`
	JerseyID    *uint  `gorm:"index"` // optional link to a catalog jersey
	Title       string `gorm:"size:255;not null"`
	Description string
	URL         string     `gorm:"size:512;not null"`
	Price       float64    `gorm:"not null;default:0"`
	Currency    string     `gorm:"size:3;not null;default:'EUR'"`
	Location    string     `gorm:"size:255"`
	ImageURL    string     `gorm:"size:512"`
	Status      SpotStatus `gorm:"type:varchar(20);not null;default:'open';index"`

	User   User    `gorm:"foreignKey:UserID"`
	Jersey *Jersey `gorm:"foreignKey:JerseyID"`
}
