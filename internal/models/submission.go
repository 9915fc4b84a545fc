package models

import "gorm.io/gorm"

// SubmissionStatus tracks a community kit submission through review.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// KitSubmission holds the fields accumulated by the kit submission wizard.
// On approval an admin turns it into a catalog Jersey and links it back.
type KitSubmission struct {
	gorm.Model
	UserID       uint       `gorm:"not null;index"`
	Club         string     `gorm:"size:255;not null"`
	Season       string     `gorm:"size:20;not null"`
	Kind         JerseyKind `gorm:"type:varchar(20);not null;default:'home'"`
	Brand        string     `gorm:"size:255"`
	ImageURL     string     `gorm:"size:512"`
	Notes        string
	Status       SubmissionStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ReviewedByID *uint
	JerseyID     *uint // set when approved

	User       User    `gorm:"foreignKey:UserID"`
	ReviewedBy *User   `gorm:"foreignKey:ReviewedByID"`
	Jersey     *Jersey `gorm:"foreignKey:JerseyID"`
}
