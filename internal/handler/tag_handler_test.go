package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func createTag(t *testing.T, router *gin.Engine, token, name string) TagResponse {
	t.Helper()

	w := doRequest(t, router, http.MethodPost, "/api/v1/admin/tags", token, TagInput{Name: name})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating tag %q, got %d: %s", name, w.Code, w.Body.String())
	}
	var tag TagResponse
	decodeBody(t, w, &tag)
	return tag
}

func TestTagNameUniqueness(t *testing.T) {
	router := setupTest(t)
	admin := createTestUser(t, "admin", "admin")
	token := tokenFor(t, admin.ID)

	createTag(t, router, token, "Retro")
	signed := createTag(t, router, token, "Signed")

	// Duplicate names collide case-insensitively.
	w := doRequest(t, router, http.MethodPost, "/api/v1/admin/tags", token, TagInput{Name: "retro"})
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate name, got %d: %s", w.Code, w.Body.String())
	}

	// Renaming onto another tag's name collides too.
	w = doRequest(t, router, http.MethodPut, fmt.Sprintf("/api/v1/admin/tags/%d", signed.ID), token, TagInput{Name: "RETRO"})
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 renaming onto taken name, got %d", w.Code)
	}

	// Renaming a tag to itself (case change only) is allowed.
	w = doRequest(t, router, http.MethodPut, fmt.Sprintf("/api/v1/admin/tags/%d", signed.ID), token, TagInput{Name: "signed"})
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for self rename, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(t, router, http.MethodPost, "/api/v1/admin/tags", token, TagInput{Name: "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for blank name, got %d", w.Code)
	}
}

func TestGetTagsReportsJerseyUsage(t *testing.T) {
	router := setupTest(t)
	admin := createTestUser(t, "admin", "admin")
	token := tokenFor(t, admin.ID)

	retro := createTag(t, router, token, "Retro")
	rare := createTag(t, router, token, "Rare")

	w := doRequest(t, router, http.MethodPost, "/api/v1/admin/jerseys", token, JerseyInput{
		Club: "Milan", Season: "1990/91", TagIDs: []uint{retro.ID, rare.ID},
	})
	var milan JerseyResponse
	decodeBody(t, w, &milan)
	doRequest(t, router, http.MethodPost, "/api/v1/admin/jerseys", token, JerseyInput{
		Club: "Inter", Season: "2009/10", TagIDs: []uint{retro.ID},
	})

	counts := func() map[string]int64 {
		w := doRequest(t, router, http.MethodGet, "/api/v1/admin/tags", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 listing tags, got %d", w.Code)
		}
		var tags []TagResponse
		decodeBody(t, w, &tags)
		byName := make(map[string]int64, len(tags))
		for _, tag := range tags {
			byName[tag.Name] = tag.JerseyCount
		}
		return byName
	}

	got := counts()
	if got["Retro"] != 2 || got["Rare"] != 1 {
		t.Errorf("unexpected usage counts: %v", got)
	}

	// Deleted jerseys stop counting.
	doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/admin/jerseys/%d", milan.ID), token, nil)
	got = counts()
	if got["Retro"] != 1 || got["Rare"] != 0 {
		t.Errorf("unexpected usage counts after jersey delete: %v", got)
	}
}

func TestDeleteTagGuardsAttachedJerseys(t *testing.T) {
	router := setupTest(t)
	admin := createTestUser(t, "admin", "admin")
	token := tokenFor(t, admin.ID)

	retro := createTag(t, router, token, "Retro")
	w := doRequest(t, router, http.MethodPost, "/api/v1/admin/jerseys", token, JerseyInput{
		Club: "Milan", Season: "1990/91", TagIDs: []uint{retro.ID},
	})
	var milan JerseyResponse
	decodeBody(t, w, &milan)

	w = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/admin/tags/%d", retro.ID), token, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 deleting an attached tag, got %d: %s", w.Code, w.Body.String())
	}

	// Once no live jersey carries it, the tag can go, and its name is
	// immediately reusable.
	doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/admin/jerseys/%d", milan.ID), token, nil)
	w = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/admin/tags/%d", retro.ID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 deleting detached tag, got %d: %s", w.Code, w.Body.String())
	}
	w = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/admin/tags/%d", retro.ID), token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 deleting twice, got %d", w.Code)
	}
	createTag(t, router, token, "Retro")
}
