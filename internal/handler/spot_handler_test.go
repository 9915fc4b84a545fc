package handler

import (
	"fmt"
	"net/http"
	"testing"
)

func TestSpotLifecycle(t *testing.T) {
	router := setupTest(t)
	alice := createTestUser(t, "alice", "user")
	bob := createTestUser(t, "bob", "user")
	aliceToken := tokenFor(t, alice.ID)
	bobToken := tokenFor(t, bob.ID)

	w := doRequest(t, router, http.MethodPost, "/api/v1/spots", aliceToken, SpotInput{
		Title:    "1998 France home, size M",
		URL:      "https://example.com/listing/42",
		Price:    120,
		Currency: "EUR",
		Location: "Lyon",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating spot, got %d: %s", w.Code, w.Body.String())
	}
	var spot SpotResponse
	decodeBody(t, w, &spot)
	if spot.Status != "open" || spot.PostedBy.ID != alice.ID {
		t.Errorf("unexpected spot: %+v", spot)
	}

	// Only the poster can edit or close.
	w = doRequest(t, router, http.MethodPut, fmt.Sprintf("/api/v1/spots/%d", spot.ID), bobToken, SpotInput{
		Title: "hijacked", URL: "https://example.com/x",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for non-owner update, got %d", w.Code)
	}
	w = doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/close", spot.ID), bobToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for non-owner close, got %d", w.Code)
	}

	w = doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/spots/%d/close", spot.ID), aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 closing spot, got %d: %s", w.Code, w.Body.String())
	}
	w = doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/v1/spots/%d", spot.ID), aliceToken, nil)
	var closed SpotResponse
	decodeBody(t, w, &closed)
	if closed.Status != "closed" {
		t.Errorf("expected closed status, got %s", closed.Status)
	}

	// Closed spots drop out of the open listing.
	var page PaginatedResponse[SpotResponse]
	w = doRequest(t, router, http.MethodGet, "/api/v1/spots?status=open", bobToken, nil)
	decodeBody(t, w, &page)
	if len(page.Data) != 0 {
		t.Errorf("expected no open spots, got %d", len(page.Data))
	}
	w = doRequest(t, router, http.MethodGet, "/api/v1/spots?status=closed", bobToken, nil)
	decodeBody(t, w, &page)
	if len(page.Data) != 1 {
		t.Errorf("expected 1 closed spot, got %d", len(page.Data))
	}

	w = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/spots/%d", spot.ID), aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 deleting spot, got %d", w.Code)
	}
	w = doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/v1/spots/%d", spot.ID), aliceToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}

func TestSpotValidation(t *testing.T) {
	router := setupTest(t)
	alice := createTestUser(t, "alice", "user")
	token := tokenFor(t, alice.ID)

	w := doRequest(t, router, http.MethodPost, "/api/v1/spots", token, SpotInput{Title: "no url"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing url, got %d", w.Code)
	}

	badJersey := uint(99999)
	w = doRequest(t, router, http.MethodPost, "/api/v1/spots", token, SpotInput{
		Title: "listing", URL: "https://example.com/1", JerseyID: &badJersey,
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown linked jersey, got %d", w.Code)
	}

	jersey := seedJersey(t, "Ajax", "1995/96")
	w = doRequest(t, router, http.MethodPost, "/api/v1/spots", token, SpotInput{
		Title: "listing", URL: "https://example.com/1", JerseyID: &jersey.ID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 with valid jersey link, got %d: %s", w.Code, w.Body.String())
	}
	var spot SpotResponse
	decodeBody(t, w, &spot)
	if spot.JerseyID == nil || *spot.JerseyID != jersey.ID {
		t.Errorf("expected jersey link on spot, got %+v", spot.JerseyID)
	}
	if spot.Currency != "EUR" {
		t.Errorf("expected default currency EUR, got %q", spot.Currency)
	}
}
