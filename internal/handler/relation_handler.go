package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"kitlocker/backend/internal/database"
	"kitlocker/backend/internal/models"
	"kitlocker/backend/internal/relations"

	"github.com/gin-gonic/gin"
)

// GetRelationships godoc
// @Summary      Get the current user's relationships
// @Description  Returns friends, received requests and sent requests, each entry carrying the relationship id.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  relations.Overview
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/me/relationships [get]
func GetRelationships(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	overview, err := relations.ListRelationships(database.DB, viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch relationships"})
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetRelationshipStatus godoc
// @Summary      Get relationship status with a user
// @Description  Derives the viewer-relative status (none, pending_sent, pending_received, accepted) against the target user.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  relations.StatusResult
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/{id}/status [get]
func GetRelationshipStatus(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
		return
	}

	status, err := relations.GetStatus(database.DB, viewerID.(uint), uint(targetUserID))
	if err != nil {
		// A store failure degrades to none rather than breaking the page.
		log.Printf("failed to derive relationship status: %v", err)
	}

	c.JSON(http.StatusOK, status)
}

// SendRequest godoc
// @Summary      Send friend request
// @Description  Sends a friend request to another user.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      201  {object}  relations.StatusResult
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      409  {object}  ErrorResponse "Relationship already exists"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/request [post]
func SendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
		return
	}

	var targetUser models.User
	if err := database.DB.First(&targetUser, uint(targetUserID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	rel, err := relations.SendRequest(database.DB, viewerID.(uint), uint(targetUserID))
	if err != nil {
		switch {
		case errors.Is(err, relations.ErrCannotRequestSelf):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot send request to yourself"})
		case errors.Is(err, relations.ErrRelationshipExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Relationship already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send request"})
		}
		return
	}

	c.JSON(http.StatusCreated, relations.StatusResult{
		Status:         relations.StatusPendingSent,
		RelationshipID: &rel.ID,
	})
}

// AcceptRequest godoc
// @Summary      Accept friend request
// @Description  Accepts a pending friend request. Only the addressee may accept.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Relationship ID"
// @Success      200  {object}  map[string]string "{"message": "Request accepted"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Not the addressee"
// @Failure      404  {object}  ErrorResponse "Relationship not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /relationships/{id}/accept [post]
func AcceptRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	relationshipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship ID"})
		return
	}

	if _, err := relations.AcceptRequest(database.DB, viewerID.(uint), uint(relationshipID)); err != nil {
		respondRelationError(c, err, "Failed to accept request")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request accepted"})
}

// RejectRequest godoc
// @Summary      Reject friend request
// @Description  Rejects (deletes) a pending friend request received by the current user.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Relationship ID"
// @Success      200  {object}  map[string]string "{"message": "Request rejected"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Not the addressee"
// @Failure      404  {object}  ErrorResponse "Relationship not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /relationships/{id}/reject [post]
func RejectRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	relationshipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship ID"})
		return
	}

	if err := relations.RejectRequest(database.DB, viewerID.(uint), uint(relationshipID)); err != nil {
		respondRelationError(c, err, "Failed to reject request")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request rejected"})
}

// CancelRequest godoc
// @Summary      Cancel friend request
// @Description  Cancels (deletes) a pending friend request sent by the current user.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Relationship ID"
// @Success      200  {object}  map[string]string "{"message": "Request cancelled"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Not the requester"
// @Failure      404  {object}  ErrorResponse "Relationship not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /relationships/{id}/cancel [post]
func CancelRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	relationshipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship ID"})
		return
	}

	if err := relations.CancelRequest(database.DB, viewerID.(uint), uint(relationshipID)); err != nil {
		respondRelationError(c, err, "Failed to cancel request")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request cancelled"})
}

// RemoveFriend godoc
// @Summary      Remove friend
// @Description  Deletes an accepted friendship. Either party may remove it.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Relationship ID"
// @Success      200  {object}  map[string]string "{"message": "Friend removed"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Not a participant"
// @Failure      404  {object}  ErrorResponse "Relationship not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /relationships/{id} [delete]
func RemoveFriend(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	relationshipID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relationship ID"})
		return
	}

	if err := relations.RemoveFriend(database.DB, viewerID.(uint), uint(relationshipID)); err != nil {
		respondRelationError(c, err, "Failed to remove friend")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend removed"})
}

func respondRelationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, relations.ErrRelationshipNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Relationship not found"})
	case errors.Is(err, relations.ErrNotAddressee),
		errors.Is(err, relations.ErrNotRequester),
		errors.Is(err, relations.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, relations.ErrNotPending),
		errors.Is(err, relations.ErrNotFriends):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
