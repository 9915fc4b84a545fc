package models

import "gorm.io/gorm"

// User represents a registered collector.
type User struct {
	gorm.Model
	Username     string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	DisplayName  string `gorm:"size:255"`
	AvatarURL    string `gorm:"size:512"`
	Role         string `gorm:"size:50;not null;default:'user';index"`
}
