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

type BountyInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Reward      string `json:"reward"`
	Club        string `json:"club"`
	Season      string `json:"season"`
}

type BountyResponse struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Reward      string             `json:"reward"`
	Club        string             `json:"club,omitempty"`
	Season      string             `json:"season,omitempty"`
	Status      string             `json:"status"`
	PostedBy    PublicUserResponse `json:"posted_by"`
	CreatedAt   time.Time          `json:"created_at"`
}

func newBountyResponse(bounty models.Bounty, viewerID uint) BountyResponse {
	return BountyResponse{
		ID:          bounty.ID,
		Title:       bounty.Title,
		Description: bounty.Description,
		Reward:      bounty.Reward,
		Club:        bounty.Club,
		Season:      bounty.Season,
		Status:      string(bounty.Status),
		PostedBy:    buildPublicUserResponse(bounty.User, viewerID),
		CreatedAt:   bounty.CreatedAt,
	}
}

// endregion

// CreateBounty godoc
// @Summary      Post a bounty
// @Description  Creates a community bounty for a jersey the user is looking for.
// @Tags         bounties
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body BountyInput true "Bounty Info"
// @Success      201  {object}  BountyResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /bounties [post]
func CreateBounty(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input BountyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bounty := models.Bounty{
		UserID:      viewerID.(uint),
		Title:       input.Title,
		Description: input.Description,
		Reward:      input.Reward,
		Club:        input.Club,
		Season:      input.Season,
		Status:      models.BountyOpen,
	}

	if err := database.DB.Create(&bounty).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create bounty"})
		return
	}

	database.DB.Preload("User").First(&bounty, bounty.ID)
	c.JSON(http.StatusCreated, newBountyResponse(bounty, viewerID.(uint)))
}

// GetBounties godoc
// @Summary      Browse bounties
// @Description  Retrieves a paginated list of bounties, newest first, with an optional status filter.
// @Tags         bounties
// @Produce      json
// @Security     BearerAuth
// @Param        status query  string  false  "Filter by status (open, fulfilled, closed)"
// @Param        page   query  int     false  "Page number" default(1)
// @Param        limit  query  int     false  "Items per page" default(10)
// @Success      200  {object}  PaginatedResponse[BountyResponse]
// @Failure      401  {object}  ErrorResponse
// @Router       /bounties [get]
func GetBounties(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	page, limit := pageParams(c)
	offset := (page - 1) * limit

	query := database.DB.Model(&models.Bounty{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count bounties"})
		return
	}

	var bounties []models.Bounty
	if err := query.Preload("User").Order("created_at DESC").Offset(offset).Limit(limit).Find(&bounties).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve bounties"})
		return
	}

	response := []BountyResponse{}
	for _, bounty := range bounties {
		response = append(response, newBountyResponse(bounty, viewerID.(uint)))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(response, totalItems, page, limit))
}

// GetBountyByID godoc
// @Summary      Get a single bounty
// @Description  Retrieves one bounty by id.
// @Tags         bounties
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Bounty ID"
// @Success      200 {object} BountyResponse
// @Failure      404 {object} ErrorResponse "Bounty not found"
// @Router       /bounties/{id} [get]
func GetBountyByID(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, _ := strconv.Atoi(c.Param("id"))

	var bounty models.Bounty
	if err := database.DB.Preload("User").First(&bounty, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bounty not found"})
		return
	}

	c.JSON(http.StatusOK, newBountyResponse(bounty, viewerID.(uint)))
}

// UpdateBounty godoc
// @Summary      Update a bounty
// @Description  Updates an owned bounty's details.
// @Tags         bounties
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int         true  "Bounty ID"
// @Param        input body      BountyInput true  "New Bounty Info"
// @Success      200  {object}  BountyResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Bounty not found"
// @Router       /bounties/{id} [put]
func UpdateBounty(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, _ := strconv.Atoi(c.Param("id"))

	var bounty models.Bounty
	if err := database.DB.Where("user_id = ?", viewerID).First(&bounty, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bounty not found"})
		return
	}

	var input BountyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bounty.Title = input.Title
	bounty.Description = input.Description
	bounty.Reward = input.Reward
	bounty.Club = input.Club
	bounty.Season = input.Season

	if err := database.DB.Save(&bounty).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update bounty"})
		return
	}

	database.DB.Preload("User").First(&bounty, bounty.ID)
	c.JSON(http.StatusOK, newBountyResponse(bounty, viewerID.(uint)))
}

// FulfillBounty godoc
// @Summary      Mark a bounty fulfilled
// @Description  Marks an owned bounty as fulfilled.
// @Tags         bounties
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Bounty ID"
// @Success      200 {object} map[string]string "{"message": "Bounty fulfilled"}"
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Bounty not found"
// @Router       /bounties/{id}/fulfill [post]
func FulfillBounty(c *gin.Context) {
	setBountyStatus(c, models.BountyFulfilled, "Bounty fulfilled")
}

// CloseBounty godoc
// @Summary      Close a bounty
// @Description  Closes an owned bounty without fulfilling it.
// @Tags         bounties
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Bounty ID"
// @Success      200 {object} map[string]string "{"message": "Bounty closed"}"
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Bounty not found"
// @Router       /bounties/{id}/close [post]
func CloseBounty(c *gin.Context) {
	setBountyStatus(c, models.BountyClosed, "Bounty closed")
}

// DeleteBounty godoc
// @Summary      Delete a bounty
// @Description  Deletes an owned bounty.
// @Tags         bounties
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Bounty ID"
// @Success      200 {object} map[string]string "{"message": "Bounty deleted"}"
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Bounty not found"
// @Router       /bounties/{id} [delete]
func DeleteBounty(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, _ := strconv.Atoi(c.Param("id"))

	result := database.DB.Where("user_id = ?", viewerID).Delete(&models.Bounty{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete bounty"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bounty not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Bounty deleted"})
}

func setBountyStatus(c *gin.Context, status models.BountyStatus, message string) {
	viewerID, _ := c.Get("userID")
	id, _ := strconv.Atoi(c.Param("id"))

	result := database.DB.Model(&models.Bounty{}).
		Where("id = ? AND user_id = ?", id, viewerID).
		Update("status", status)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update bounty"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bounty not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}
