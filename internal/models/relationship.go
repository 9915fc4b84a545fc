package models

import "time"

// RelationshipStatus defines the stored state of a relationship between two users.
type RelationshipStatus string

const (
	// StatusPending means a friend request has been sent but not yet accepted.
	StatusPending RelationshipStatus = "pending"

	// StatusAccepted means the request was accepted, and the users are now friends.
	StatusAccepted RelationshipStatus = "accepted"
)

// Relationship represents a friend request or an accepted friendship.
// Rejection, cancellation and unfriending delete the row; there is no
// "rejected" or "blocked" status.
//
// The requester/addressee roles are fixed at creation and do not change on
// acceptance. The unique index covers the ordered pair only; the service layer
// checks both directions before inserting.
// Deletion is a hard delete: a removed pair must be able to start over
// without tripping the unique index.
type Relationship struct {
	ID          uint               `gorm:"primarykey"`
	RequesterID uint               `gorm:"not null;uniqueIndex:idx_relationship_pair;index"`
	AddresseeID uint               `gorm:"not null;uniqueIndex:idx_relationship_pair;index"`
	Status      RelationshipStatus `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Requester User `gorm:"foreignKey:RequesterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Addressee User `gorm:"foreignKey:AddresseeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Other returns the participant that is not userID, with whatever profile
// fields were preloaded. Returns the zero value when userID is not a
// participant.
func (r Relationship) Other(userID uint) User {
	switch userID {
	case r.RequesterID:
		return r.Addressee
	case r.AddresseeID:
		return r.Requester
	}
	return User{}
}

// Involves reports whether userID is one of the two participants.
func (r Relationship) Involves(userID uint) bool {
	return r.RequesterID == userID || r.AddresseeID == userID
}
