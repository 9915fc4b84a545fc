package relations

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"kitlocker/backend/internal/database"
	"kitlocker/backend/internal/feed"
	"kitlocker/backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter int64

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:relations_%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		DisplayName:  username,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("creating user %s: %v", username, err)
	}
	return user
}

func TestGetStatusNoRelationship(t *testing.T) {
	db := setupDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	status, err := GetStatus(db, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Status != StatusNone {
		t.Errorf("status = %q, want %q", status.Status, StatusNone)
	}
	if status.RelationshipID != nil {
		t.Errorf("relationship id = %v, want nil", *status.RelationshipID)
	}
}

func TestGetStatusSelf(t *testing.T) {
	db := setupDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	// Even with a record in the store, a self-pair is always none.
	if _, err := SendRequest(db, alice.ID, bob.ID); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	status, err := GetStatus(db, alice.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Status != StatusNone || status.RelationshipID != nil {
		t.Errorf("self status = %+v, want none with nil id", status)
	}
}

func TestGetStatusMissingIDs(t *testing.T) {
	db := setupDB(t)

	for _, pair := range [][2]uint{{0, 5}, {5, 0}, {0, 0}} {
		status, err := GetStatus(db, pair[0], pair[1])
		if err != nil {
			t.Fatalf("GetStatus(%d, %d): %v", pair[0], pair[1], err)
		}
		if status.Status != StatusNone {
			t.Errorf("GetStatus(%d, %d) = %q, want none", pair[0], pair[1], status.Status)
		}
	}
}

func TestSendRequestDerivesBothDirections(t *testing.T) {
	db := setupDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	rel, err := SendRequest(db, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if rel.Status != models.StatusPending {
		t.Errorf("stored status = %q, want pending", rel.Status)
	}

	sent, err := GetStatus(db, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("GetStatus(alice, bob): %v", err)
	}
	if sent.Status != StatusPendingSent {
		t.Errorf("alice sees %q, want pending_sent", sent.Status)
	}

	received, err := GetStatus(db, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetStatus(bob, alice): %v", err)
	}
	if received.Status != StatusPendingReceived {
		t.Errorf("bob sees %q, want pending_received", received.Status)
	}

	// Both directions resolve to the same record.
	if sent.RelationshipID == nil || received.RelationshipID == nil {
		t.Fatal("expected relationship ids in both directions")
	}
	if *sent.RelationshipID != *received.RelationshipID {
		t.Errorf("relationship ids differ: %d vs %d", *sent.RelationshipID, *received.RelationshipID)
	}
	if *sent.RelationshipID != rel.ID {
		t.Errorf("derived id %d != created id %d", *sent.RelationshipID, rel.ID)
	}
}

func TestSendRequestSelf(t *testing.T) {
	db := setupDB(t)
	alice := createUser(t, db, "alice")

	if _, err := SendRequest(db, alice.ID, alice.ID); !errors.Is(err, ErrCannotRequestSelf) {
		t.Errorf("err = %v, want ErrCannotRequestSelf", err)
	}
}

func TestSendRequestDuplicate(t *testing.T) {
	db := setupDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	if _, err := SendRequest(db, alice.ID, bob.ID); err != nil {
		t.Fatalf("first SendRequest: %v", err)
	}

	if _, err := SendRequest(db, alice.ID, bob.ID); !errors.Is(err, ErrRelationshipExists) {
		t.Errorf("same direction: err = %v, want ErrRelationshipExists", err)
	}

	// The opposite direction is also blocked while a record exists.
	if _, err := SendRequest(db, bob.ID, alice.ID); !errors.Is(err, ErrRelationshipExists) {
		t.Errorf("opposite direction: err = %v, want ErrRelationshipExists", err)
	}
}

func TestAcceptRequest(t *testing.T) {
	db := setupDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	rel, err := SendRequest(db, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	accepted, err := AcceptRequest(db, bob.ID, rel.ID)
	if err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}
	if accepted.Status != models.StatusAccepted {
		t.Errorf("status = %q, want accepted", accepted.Status)
	}

	// Both parties now see accepted.
	for _, pair := range [][2]uint{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		status, err := GetStatus(db, pair[0], pair[1])
		if err != nil {
			t.Fatalf("GetStatus(%d, %d): %v", pair[0], pair[1], err)
		}
		if status.Status != StatusAccepted {
			t.Errorf("GetStatus(%d, %d) = %q, want accepted", pair[0], pair[1], status.Status)
		}
	}

	// And the record appears in both friends lists.
	for _, u := range []models.User{alice, bob} {
		overview, err := ListRelationships(db, u.ID)
		if err != nil {
			t.Fatalf("ListRelationships(%s): %v", u.Username, err)
		}
		if len(overview.Friends) != 1 {
			t.Fatalf("%s has %d friends, want 1", u.Username, len(overview.Friends))
		}
		if overview.Friends[0].RelationshipID != rel.ID {
			t.Errorf("%s friend entry id = %d, want %d", u.Username, overview.Friends[0].RelationshipID, rel.ID)
		}
	}
}

func TestAcceptRequestGuards(t *testing.T) {
	db := setupDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	rel, err := SendRequest(db, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	// The requester cannot accept their own request.
	if _, err := AcceptRequest(db, alice.ID, rel.ID); !errors.Is(err, ErrNotAddressee) {
		t.Errorf("requester accept: err = %v, want ErrNotAddressee", err)
	}

	// A third party cannot accept either.
	if _, err := AcceptRequest(db, carol.ID, rel.ID); !errors.Is(err, ErrNotAddressee) {
		t.Errorf("third party accept: err = %v, want ErrNotAddressee", err)
	}

	// Accepting a withdrawn request surfaces not-found rather than no-op.
	if err := CancelRequest(db, alice.ID, rel.ID); err != nil {
		t.Fatalf("CancelRequest: %v", err)
	}
	if _, err := AcceptRequest(db, bob.ID, rel.ID); !errors.Is(err, ErrRelationshipNotFound) {
		t.Errorf("accept withdrawn: err = %v, want ErrRelationshipNotFound", err)
	}
}

func TestDeleteOperationsResetToNone(t *testing.T) {
	tests := []struct {
		name   string
		accept bool
		delete func(db *gorm.DB, aliceID, bobID, relID uint) error
	}{
		{
			name: "reject by addressee",
			delete: func(db *gorm.DB, aliceID, bobID, relID uint) error {
				return RejectRequest(db, bobID, relID)
			},
		},
		{
			name: "cancel by requester",
			delete: func(db *gorm.DB, aliceID, bobID, relID uint) error {
				return CancelRequest(db, aliceID, relID)
			},
		},
		{
			name:   "remove by requester",
			accept: true,
			delete: func(db *gorm.DB, aliceID, bobID, relID uint) error {
				return RemoveFriend(db, aliceID, relID)
			},
		},
		{
			name:   "remove by addressee",
			accept: true,
			delete: func(db *gorm.DB, aliceID, bobID, relID uint) error {
				return RemoveFriend(db, bobID, relID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupDB(t)
			alice := createUser(t, db, "alice")
			bob := createUser(t, db, "bob")

			rel, err := SendRequest(db, alice.ID, bob.ID)
			if err != nil {
				t.Fatalf("SendRequest: %v", err)
			}
			if tt.accept {
				if _, err := AcceptRequest(db, bob.ID, rel.ID); err != nil {
					t.Fatalf("AcceptRequest: %v", err)
				}
			}

			if err := tt.delete(db, alice.ID, bob.ID, rel.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}

			status, err := GetStatus(db, alice.ID, bob.ID)
			if err != nil {
				t.Fatalf("GetStatus: %v", err)
			}
			if status.Status != StatusNone {
				t.Errorf("status after delete = %q, want none", status.Status)
			}

			for _, id := range []uint{alice.ID, bob.ID} {
				overview, err := ListRelationships(db, id)
				if err != nil {
					t.Fatalf("ListRelationships: %v", err)
				}
				total := len(overview.Friends) + len(overview.PendingReceived) + len(overview.PendingSent)
				if total != 0 {
					t.Errorf("user %d still has %d entries after delete", id, total)
				}
			}
		})
	}
}

func TestDeleteGuards(t *testing.T) {
	db := setupDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	rel, err := SendRequest(db, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	// Reject is addressee-only, cancel is requester-only.
	if err := RejectRequest(db, alice.ID, rel.ID); !errors.Is(err, ErrNotAddressee) {
		t.Errorf("requester reject: err = %v, want ErrNotAddressee", err)
	}
	if err := CancelRequest(db, bob.ID, rel.ID); !errors.Is(err, ErrNotRequester) {
		t.Errorf("addressee cancel: err = %v, want ErrNotRequester", err)
	}

	// RemoveFriend requires an accepted record and a participant.
	if err := RemoveFriend(db, alice.ID, rel.ID); !errors.Is(err, ErrNotFriends) {
		t.Errorf("remove pending: err = %v, want ErrNotFriends", err)
	}
	if _, err := AcceptRequest(db, bob.ID, rel.ID); err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}
	if err := RemoveFriend(db, carol.ID, rel.ID); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("outsider remove: err = %v, want ErrNotParticipant", err)
	}
}

func TestDeleteIdempotenceReportsNotFound(t *testing.T) {
	db := setupDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	rel, err := SendRequest(db, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	other, err := SendRequest(db, carol.ID, alice.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	if err := RejectRequest(db, bob.ID, rel.ID); err != nil {
		t.Fatalf("first reject: %v", err)
	}
	if err := RejectRequest(db, bob.ID, rel.ID); !errors.Is(err, ErrRelationshipNotFound) {
		t.Errorf("second reject: err = %v, want ErrRelationshipNotFound", err)
	}

	// The unrelated record is untouched.
	status, err := GetStatus(db, carol.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Status != StatusPendingSent || status.RelationshipID == nil || *status.RelationshipID != other.ID {
		t.Errorf("unrelated record disturbed: %+v", status)
	}
}

func TestListRelationshipsPartitions(t *testing.T) {
	db := setupDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	dave := createUser(t, db, "dave")

	// alice -> bob accepted, carol -> alice pending, alice -> dave pending.
	relBob, err := SendRequest(db, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if _, err := AcceptRequest(db, bob.ID, relBob.ID); err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}
	if _, err := SendRequest(db, carol.ID, alice.ID); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if _, err := SendRequest(db, alice.ID, dave.ID); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	overview, err := ListRelationships(db, alice.ID)
	if err != nil {
		t.Fatalf("ListRelationships: %v", err)
	}

	if len(overview.Friends) != 1 || overview.Friends[0].User.Username != "bob" {
		t.Errorf("friends = %+v, want [bob]", overview.Friends)
	}
	if len(overview.PendingReceived) != 1 || overview.PendingReceived[0].User.Username != "carol" {
		t.Errorf("pending received = %+v, want [carol]", overview.PendingReceived)
	}
	if len(overview.PendingSent) != 1 || overview.PendingSent[0].User.Username != "dave" {
		t.Errorf("pending sent = %+v, want [dave]", overview.PendingSent)
	}

	// Entries resolve the other party's profile summary.
	friend := overview.Friends[0].User
	if friend.ID != bob.ID || friend.DisplayName != "bob" {
		t.Errorf("friend profile = %+v, want bob's summary", friend)
	}
}

func TestFullLifecycle(t *testing.T) {
	db := setupDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	rel, err := SendRequest(db, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	var stored models.Relationship
	if err := db.First(&stored, rel.ID).Error; err != nil {
		t.Fatalf("loading record: %v", err)
	}
	if stored.RequesterID != alice.ID || stored.AddresseeID != bob.ID || stored.Status != models.StatusPending {
		t.Errorf("stored record = %+v", stored)
	}

	if _, err := AcceptRequest(db, bob.ID, rel.ID); err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}

	for _, u := range []models.User{alice, bob} {
		overview, err := ListRelationships(db, u.ID)
		if err != nil {
			t.Fatalf("ListRelationships(%s): %v", u.Username, err)
		}
		if len(overview.Friends) != 1 {
			t.Fatalf("%s has %d friends, want 1", u.Username, len(overview.Friends))
		}
	}

	// Either party may terminate; alice removes.
	if err := RemoveFriend(db, alice.ID, rel.ID); err != nil {
		t.Fatalf("RemoveFriend: %v", err)
	}

	for _, u := range []models.User{alice, bob} {
		overview, err := ListRelationships(db, u.ID)
		if err != nil {
			t.Fatalf("ListRelationships(%s): %v", u.Username, err)
		}
		if len(overview.Friends) != 0 {
			t.Errorf("%s still has friends after removal", u.Username)
		}
	}

	status, err := GetStatus(db, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Status != StatusNone {
		t.Errorf("final status = %q, want none", status.Status)
	}
}

func TestMutationsNotifyBothParticipants(t *testing.T) {
	db := setupDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	subscribe := func(userID uint) feed.Client {
		client := make(feed.Client, 8)
		feed.GlobalHub.Subscribe(userID, client)
		t.Cleanup(func() { feed.GlobalHub.Unsubscribe(userID, client) })
		return client
	}
	aliceFeed := subscribe(alice.ID)
	bobFeed := subscribe(bob.ID)
	carolFeed := subscribe(carol.ID)

	expectChange := func(client feed.Client, action string) {
		t.Helper()
		select {
		case raw := <-client:
			var event struct {
				Type    string `json:"type"`
				Payload struct {
					Action string `json:"action"`
				} `json:"payload"`
			}
			if err := json.Unmarshal(raw, &event); err != nil {
				t.Fatalf("decoding event %q: %v", raw, err)
			}
			if event.Type != "relations.changed" {
				t.Errorf("event type = %q, want relations.changed", event.Type)
			}
			if event.Payload.Action != action {
				t.Errorf("event action = %q, want %q", event.Payload.Action, action)
			}
		case <-time.After(time.Second):
			t.Fatalf("no %q event delivered", action)
		}
	}
	expectSilence := func(client feed.Client) {
		t.Helper()
		select {
		case raw := <-client:
			t.Fatalf("unexpected event delivered: %s", raw)
		default:
		}
	}

	rel, err := SendRequest(db, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	expectChange(aliceFeed, "requested")
	expectChange(bobFeed, "requested")
	expectSilence(carolFeed)

	if _, err := AcceptRequest(db, bob.ID, rel.ID); err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}
	expectChange(aliceFeed, "accepted")
	expectChange(bobFeed, "accepted")

	if err := RemoveFriend(db, alice.ID, rel.ID); err != nil {
		t.Fatalf("RemoveFriend: %v", err)
	}
	expectChange(aliceFeed, "removed")
	expectChange(bobFeed, "removed")
	expectSilence(carolFeed)

	// Failed mutations stay silent.
	if err := RemoveFriend(db, alice.ID, rel.ID); err == nil {
		t.Fatal("expected error removing twice")
	}
	expectSilence(aliceFeed)
	expectSilence(bobFeed)
}
