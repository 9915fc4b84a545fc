package models

import "gorm.io/gorm"

// JerseyKind identifies which kit a jersey belongs to within a season.
type JerseyKind string

const (
	KindHome   JerseyKind = "home"
	KindAway   JerseyKind = "away"
	KindThird  JerseyKind = "third"
	KindKeeper JerseyKind = "keeper"
)

// Jersey represents an entry in the shared public catalog.
type Jersey struct {
	gorm.Model
	Club         string     `gorm:"size:255;not null;index"`
	Season       string     `gorm:"size:20;not null;index"` // e.g. "2003/04"
	Kind         JerseyKind `gorm:"type:varchar(20);not null;default:'home'"`
	Brand        string     `gorm:"size:255"`
	PlayerName   string     `gorm:"size:255"`
	PlayerNumber *int
	Description  string
	ImageURL     string `gorm:"size:512"`
	Tags         []*Tag `gorm:"many2many:jersey_tags;"`
}
