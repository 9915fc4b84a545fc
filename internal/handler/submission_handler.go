package handler

import (
	"net/http"
	"strconv"
	"time"

	"kitlocker/backend/internal/database"
	"kitlocker/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type SubmissionInput struct {
	Club     string `json:"club" binding:"required"`
	Season   string `json:"season" binding:"required"`
	Kind     string `json:"kind" binding:"omitempty,oneof=home away third keeper"`
	Brand    string `json:"brand"`
	ImageURL string `json:"image_url"`
	Notes    string `json:"notes"`
}

type SubmissionResponse struct {
	ID        uint      `json:"id"`
	Club      string    `json:"club"`
	Season    string    `json:"season"`
	Kind      string    `json:"kind"`
	Brand     string    `json:"brand"`
	ImageURL  string    `json:"image_url"`
	Notes     string    `json:"notes"`
	Status    string    `json:"status"`
	JerseyID  *uint     `json:"jersey_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newSubmissionResponse(sub models.KitSubmission) SubmissionResponse {
	return SubmissionResponse{
		ID:        sub.ID,
		Club:      sub.Club,
		Season:    sub.Season,
		Kind:      string(sub.Kind),
		Brand:     sub.Brand,
		ImageURL:  sub.ImageURL,
		Notes:     sub.Notes,
		Status:    string(sub.Status),
		JerseyID:  sub.JerseyID,
		CreatedAt: sub.CreatedAt,
	}
}

// endregion

// CreateSubmission godoc
// @Summary      Submit a kit to the catalog
// @Description  Creates a pending kit submission from the wizard's accumulated fields.
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body SubmissionInput true "Submission Info"
// @Success      201  {object}  SubmissionResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /submissions [post]
func CreateSubmission(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input SubmissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind := models.JerseyKind(input.Kind)
	if kind == "" {
		kind = models.KindHome
	}

	sub := models.KitSubmission{
		UserID:   viewerID.(uint),
		Club:     input.Club,
		Season:   input.Season,
		Kind:     kind,
		Brand:    input.Brand,
		ImageURL: input.ImageURL,
		Notes:    input.Notes,
		Status:   models.SubmissionPending,
	}

	if err := database.DB.Create(&sub).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create submission"})
		return
	}

	c.JSON(http.StatusCreated, newSubmissionResponse(sub))
}

// GetMySubmissions godoc
// @Summary      Get the current user's submissions
// @Description  Lists the authenticated user's kit submissions, newest first.
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   SubmissionResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /submissions [get]
func GetMySubmissions(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var subs []models.KitSubmission
	if err := database.DB.Where("user_id = ?", viewerID).Order("created_at DESC").Find(&subs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve submissions"})
		return
	}

	response := []SubmissionResponse{}
	for _, sub := range subs {
		response = append(response, newSubmissionResponse(sub))
	}
	c.JSON(http.StatusOK, response)
}

// GetPendingSubmissions godoc
// @Summary      Get pending submissions
// @Description  Lists all submissions awaiting review.
// @Tags         admin-submissions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   SubmissionResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /admin/submissions [get]
func GetPendingSubmissions(c *gin.Context) {
	var subs []models.KitSubmission
	if err := database.DB.Where("status = ?", models.SubmissionPending).Order("created_at").Find(&subs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve submissions"})
		return
	}

	response := []SubmissionResponse{}
	for _, sub := range subs {
		response = append(response, newSubmissionResponse(sub))
	}
	c.JSON(http.StatusOK, response)
}

// ApproveSubmission godoc
// @Summary      Approve a submission
// @Description  Approves a pending submission and creates the catalog jersey from its fields.
// @Tags         admin-submissions
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Submission ID"
// @Success      200 {object} SubmissionResponse
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Submission not found"
// @Failure      409 {object} ErrorResponse "Submission already reviewed"
// @Router       /admin/submissions/{id}/approve [post]
func ApproveSubmission(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, _ := strconv.Atoi(c.Param("id"))

	var sub models.KitSubmission
	if err := database.DB.First(&sub, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}
	if sub.Status != models.SubmissionPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Submission already reviewed"})
		return
	}

	jersey := models.Jersey{
		Club:     sub.Club,
		Season:   sub.Season,
		Kind:     sub.Kind,
		Brand:    sub.Brand,
		ImageURL: sub.ImageURL,
	}
	if err := database.DB.Create(&jersey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create jersey from submission"})
		return
	}

	reviewerID := viewerID.(uint)
	sub.Status = models.SubmissionApproved
	sub.ReviewedByID = &reviewerID
	sub.JerseyID = &jersey.ID
	if err := database.DB.Save(&sub).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update submission"})
		return
	}

	c.JSON(http.StatusOK, newSubmissionResponse(sub))
}

// RejectSubmission godoc
// @Summary      Reject a submission
// @Description  Rejects a pending submission.
// @Tags         admin-submissions
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Submission ID"
// @Success      200 {object} SubmissionResponse
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Submission not found"
// @Failure      409 {object} ErrorResponse "Submission already reviewed"
// @Router       /admin/submissions/{id}/reject [post]
func RejectSubmission(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, _ := strconv.Atoi(c.Param("id"))

	var sub models.KitSubmission
	if err := database.DB.First(&sub, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}
	if sub.Status != models.SubmissionPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Submission already reviewed"})
		return
	}

	reviewerID := viewerID.(uint)
	sub.Status = models.SubmissionRejected
	sub.ReviewedByID = &reviewerID
	if err := database.DB.Save(&sub).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update submission"})
		return
	}

	c.JSON(http.StatusOK, newSubmissionResponse(sub))
}
