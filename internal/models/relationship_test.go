package models

import "testing"

func TestRelationshipParticipants(t *testing.T) {
	rel := Relationship{
		RequesterID: 1,
		AddresseeID: 2,
		Requester:   User{Username: "alice"},
		Addressee:   User{Username: "bob"},
	}
	rel.Requester.ID = 1
	rel.Addressee.ID = 2

	if got := rel.Other(1); got.Username != "bob" {
		t.Errorf("Other(1) = %q, want bob", got.Username)
	}
	if got := rel.Other(2); got.Username != "alice" {
		t.Errorf("Other(2) = %q, want alice", got.Username)
	}
	if got := rel.Other(3); got.ID != 0 {
		t.Errorf("Other(3) = %+v, want zero value", got)
	}

	if !rel.Involves(1) || !rel.Involves(2) {
		t.Error("expected both participants to be involved")
	}
	if rel.Involves(3) {
		t.Error("expected outsider not to be involved")
	}
}
