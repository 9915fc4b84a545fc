// Package relations owns the friend-request lifecycle: sending, accepting and
// deleting relationship records, and deriving the viewer-relative status the
// rest of the application renders.
//
// Every operation takes the acting user's id explicitly; nothing here reads
// authentication state. Handlers are expected to pass the id they resolved
// from the request context.
package relations

import (
	"context"
	"errors"
	"fmt"

	"kitlocker/backend/internal/feed"
	"kitlocker/backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrRelationshipExists   = errors.New("relationship already exists")
	ErrCannotRequestSelf    = errors.New("cannot send a friend request to yourself")
	ErrNotPending           = errors.New("relationship is not pending")
	ErrNotFriends           = errors.New("relationship is not accepted")
	ErrNotAddressee         = errors.New("only the addressee can do this")
	ErrNotRequester         = errors.New("only the requester can do this")
	ErrNotParticipant       = errors.New("user is not part of this relationship")
)

// ViewStatus is the relationship status as seen from a particular user's
// perspective. It is derived per query, never stored.
type ViewStatus string

const (
	StatusNone            ViewStatus = "none"
	StatusPendingSent     ViewStatus = "pending_sent"
	StatusPendingReceived ViewStatus = "pending_received"
	StatusAccepted        ViewStatus = "accepted"
)

// StatusResult pairs a derived status with the backing record's id, so callers
// can invoke accept/reject/cancel/remove directly. RelationshipID is nil when
// the status is none.
type StatusResult struct {
	Status         ViewStatus `json:"status"`
	RelationshipID *uint      `json:"relationship_id"`
}

// ProfileSummary is the public identity attached to each list entry.
type ProfileSummary struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Entry is one row of a relationship list: the other party plus the record id.
type Entry struct {
	RelationshipID uint           `json:"relationship_id"`
	User           ProfileSummary `json:"user"`
}

// Overview partitions every relationship involving a user.
type Overview struct {
	Friends         []Entry `json:"friends"`
	PendingReceived []Entry `json:"pending_received"`
	PendingSent     []Entry `json:"pending_sent"`
}

// GetStatus derives the viewer-relative status between two users.
//
// A missing or self-referential pair short-circuits to none without touching
// the store. A pair with no record is a valid none, not an error; a store
// failure is returned alongside a none result so callers can degrade and log.
func GetStatus(db *gorm.DB, viewerID, targetID uint) (StatusResult, error) {
	none := StatusResult{Status: StatusNone}

	if viewerID == 0 || targetID == 0 || viewerID == targetID {
		return none, nil
	}

	var rel models.Relationship
	err := db.
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			viewerID, targetID, targetID, viewerID).
		First(&rel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return none, nil
	}
	if err != nil {
		return none, fmt.Errorf("fetching relationship: %w", err)
	}

	return StatusResult{
		Status:         deriveStatus(rel, viewerID),
		RelationshipID: &rel.ID,
	}, nil
}

func deriveStatus(rel models.Relationship, viewerID uint) ViewStatus {
	if rel.Status == models.StatusAccepted {
		return StatusAccepted
	}
	if rel.RequesterID == viewerID {
		return StatusPendingSent
	}
	return StatusPendingReceived
}

// ListRelationships fetches every relationship involving userID and partitions
// it into friends, received requests and sent requests, resolving the other
// party's profile for each. Order follows store return order.
func ListRelationships(db *gorm.DB, userID uint) (Overview, error) {
	overview := Overview{
		Friends:         []Entry{},
		PendingReceived: []Entry{},
		PendingSent:     []Entry{},
	}

	var rels []models.Relationship
	err := db.
		Where("requester_id = ? OR addressee_id = ?", userID, userID).
		Preload("Requester").
		Preload("Addressee").
		Find(&rels).Error
	if err != nil {
		return overview, fmt.Errorf("fetching relationships: %w", err)
	}

	for _, rel := range rels {
		other := rel.Other(userID)
		if other.ID == 0 {
			// Preload missed; skip rather than emit an empty profile.
			continue
		}

		entry := Entry{
			RelationshipID: rel.ID,
			User: ProfileSummary{
				ID:          other.ID,
				Username:    other.Username,
				DisplayName: other.DisplayName,
				AvatarURL:   other.AvatarURL,
			},
		}

		switch deriveStatus(rel, userID) {
		case StatusAccepted:
			overview.Friends = append(overview.Friends, entry)
		case StatusPendingReceived:
			overview.PendingReceived = append(overview.PendingReceived, entry)
		case StatusPendingSent:
			overview.PendingSent = append(overview.PendingSent, entry)
		}
	}

	return overview, nil
}

// SendRequest creates a pending relationship from requester to addressee.
// The existence check covers both directions, but the unique index is on the
// ordered pair only, so a concurrent mutual send can still slip through; the
// store conflict that follows is surfaced as ErrRelationshipExists.
func SendRequest(db *gorm.DB, requesterID, addresseeID uint) (*models.Relationship, error) {
	if requesterID == addresseeID {
		return nil, ErrCannotRequestSelf
	}

	var count int64
	err := db.Model(&models.Relationship{}).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			requesterID, addresseeID, addresseeID, requesterID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("checking existing relationship: %w", err)
	}
	if count > 0 {
		return nil, ErrRelationshipExists
	}

	rel := models.Relationship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      models.StatusPending,
	}
	if err := db.Create(&rel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRelationshipExists
		}
		return nil, fmt.Errorf("creating relationship: %w", err)
	}

	publishChange("requested", rel)
	return &rel, nil
}

// AcceptRequest transitions a pending relationship to accepted. Only the
// addressee may accept, and only while the record is still pending. A record
// that no longer exists is a surfaced failure, not a silent no-op.
func AcceptRequest(db *gorm.DB, userID, relationshipID uint) (*models.Relationship, error) {
	rel, err := getByID(db, relationshipID)
	if err != nil {
		return nil, err
	}

	if rel.AddresseeID != userID {
		return nil, ErrNotAddressee
	}
	if rel.Status != models.StatusPending {
		return nil, ErrNotPending
	}

	if err := db.Model(&rel).Update("status", models.StatusAccepted).Error; err != nil {
		return nil, fmt.Errorf("accepting relationship: %w", err)
	}

	rel.Status = models.StatusAccepted
	publishChange("accepted", rel)
	return &rel, nil
}

// RejectRequest deletes a pending request received by userID.
func RejectRequest(db *gorm.DB, userID, relationshipID uint) error {
	return deleteRelationship(db, userID, relationshipID, "rejected", func(rel models.Relationship) error {
		if rel.AddresseeID != userID {
			return ErrNotAddressee
		}
		if rel.Status != models.StatusPending {
			return ErrNotPending
		}
		return nil
	})
}

// CancelRequest deletes a pending request sent by userID.
func CancelRequest(db *gorm.DB, userID, relationshipID uint) error {
	return deleteRelationship(db, userID, relationshipID, "cancelled", func(rel models.Relationship) error {
		if rel.RequesterID != userID {
			return ErrNotRequester
		}
		if rel.Status != models.StatusPending {
			return ErrNotPending
		}
		return nil
	})
}

// RemoveFriend deletes an accepted relationship. Either party may do it.
func RemoveFriend(db *gorm.DB, userID, relationshipID uint) error {
	return deleteRelationship(db, userID, relationshipID, "removed", func(rel models.Relationship) error {
		if !rel.Involves(userID) {
			return ErrNotParticipant
		}
		if rel.Status != models.StatusAccepted {
			return ErrNotFriends
		}
		return nil
	})
}

// deleteRelationship is the single primitive behind reject, cancel and
// remove. The three exported wrappers differ only in which party and status
// they verify, preserving caller intent.
func deleteRelationship(db *gorm.DB, userID, relationshipID uint, action string, check func(models.Relationship) error) error {
	rel, err := getByID(db, relationshipID)
	if err != nil {
		return err
	}

	if err := check(rel); err != nil {
		return err
	}

	result := db.Delete(&models.Relationship{}, relationshipID)
	if result.Error != nil {
		return fmt.Errorf("deleting relationship: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Lost a race with the other party.
		return ErrRelationshipNotFound
	}

	publishChange(action, rel)
	return nil
}

func getByID(db *gorm.DB, relationshipID uint) (models.Relationship, error) {
	var rel models.Relationship
	err := db.First(&rel, relationshipID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rel, ErrRelationshipNotFound
	}
	if err != nil {
		return rel, fmt.Errorf("fetching relationship: %w", err)
	}
	return rel, nil
}

func publishChange(action string, rel models.Relationship) {
	feed.Publish(context.Background(), feed.Event{
		Type: "relations.changed",
		Payload: map[string]interface{}{
			"action":          action,
			"relationship_id": rel.ID,
			"users":           []uint{rel.RequesterID, rel.AddresseeID},
		},
	}, rel.RequesterID, rel.AddresseeID)
}
