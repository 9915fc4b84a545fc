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

type SpotInput struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	URL         string  `json:"url" binding:"required,url"`
	Price       float64 `json:"price" binding:"omitempty,min=0"`
	Currency    string  `json:"currency" binding:"omitempty,len=3"`
	Location    string  `json:"location"`
	ImageURL    string  `json:"image_url"`
	JerseyID    *uint   `json:"jersey_id"`
}

type SpotResponse struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	URL         string             `json:"url"`
	Price       float64            `json:"price"`
	Currency    string             `json:"currency"`
	Location    string             `json:"location"`
	ImageURL    string             `json:"image_url"`
	Status      string             `json:"status"`
	JerseyID    *uint              `json:"jersey_id,omitempty"`
	PostedBy    PublicUserResponse `json:"posted_by"`
	CreatedAt   time.Time          `json:"created_at"`
}

func newSpotResponse(spot models.Spot, viewerID uint) SpotResponse {
	return SpotResponse{
		ID:          spot.ID,
		Title:       spot.Title,
		Description: spot.Description,
		URL:         spot.URL,
		Price:       spot.Price,
		Currency:    spot.Currency,
		Location:    spot.Location,
		ImageURL:    spot.ImageURL,
		Status:      string(spot.Status),
		JerseyID:    spot.JerseyID,
		PostedBy:    buildPublicUserResponse(spot.User, viewerID),
		CreatedAt:   spot.CreatedAt,
	}
}

// endregion

// CreateSpot godoc
// @Summary      Post a spot
// @Description  Shares a marketplace listing found elsewhere with the community.
// @Tags         spots
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body SpotInput true "Spot Info"
// @Success      201  {object}  SpotResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Linked jersey not found"
// @Router       /spots [post]
func CreateSpot(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input SpotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.JerseyID != nil {
		var jersey models.Jersey
		if err := database.DB.First(&jersey, *input.JerseyID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Linked jersey not found"})
			return
		}
	}

	currency := input.Currency
	if currency == "" {
		currency = "EUR"
	}

	spot := models.Spot{
		UserID:      viewerID.(uint),
		JerseyID:    input.JerseyID,
		Title:       input.Title,
		Description: input.Description,
		URL:         input.URL,
		Price:       input.Price,
		Currency:    currency,
		Location:    input.Location,
		ImageURL:    input.ImageURL,
		Status:      models.SpotOpen,
	}

	if err := database.DB.Create(&spot).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create spot"})
		return
	}

	database.DB.Preload("User").First(&spot, spot.ID)
	c.JSON(http.StatusCreated, newSpotResponse(spot, viewerID.(uint)))
}

// GetSpots godoc
// @Summary      Browse spots
// @Description  Retrieves a paginated list of spots, newest first, with optional text and status filters.
// @Tags         spots
// @Produce      json
// @Security     BearerAuth
// @Param        q      query  string  false  "Search query for title"
// @Param        status query  string  false  "Filter by status (open, closed)"
// @Param        page   query  int     false  "Page number" default(1)
// @Param        limit  query  int     false  "Items per page" default(10)
// @Success      200  {object}  PaginatedResponse[SpotResponse]
// @Failure      401  {object}  ErrorResponse
// @Router       /spots [get]
func GetSpots(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	page, limit := pageParams(c)
	offset := (page - 1) * limit

	query := database.DB.Model(&models.Spot{})
	if q := c.Query("q"); q != "" {
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+q+"%")
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count spots"})
		return
	}

	var spots []models.Spot
	if err := query.Preload("User").Order("created_at DESC").Offset(offset).Limit(limit).Find(&spots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve spots"})
		return
	}

	response := []SpotResponse{}
	for _, spot := range spots {
		response = append(response, newSpotResponse(spot, viewerID.(uint)))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(response, totalItems, page, limit))
}

// GetSpotByID godoc
// @Summary      Get a single spot
// @Description  Retrieves one spot by id.
// @Tags         spots
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Spot ID"
// @Success      200 {object} SpotResponse
// @Failure      404 {object} ErrorResponse "Spot not found"
// @Router       /spots/{id} [get]
func GetSpotByID(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, _ := strconv.Atoi(c.Param("id"))

	var spot models.Spot
	if err := database.DB.Preload("User").First(&spot, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Spot not found"})
		return
	}

	c.JSON(http.StatusOK, newSpotResponse(spot, viewerID.(uint)))
}

// UpdateSpot godoc
// @Summary      Update a spot
// @Description  Updates an owned spot's details.
// @Tags         spots
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int       true  "Spot ID"
// @Param        input body      SpotInput true  "New Spot Info"
// @Success      200  {object}  SpotResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Spot not found"
// @Router       /spots/{id} [put]
func UpdateSpot(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, _ := strconv.Atoi(c.Param("id"))

	var spot models.Spot
	if err := database.DB.Where("user_id = ?", viewerID).First(&spot, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Spot not found"})
		return
	}

	var input SpotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	spot.Title = input.Title
	spot.Description = input.Description
	spot.URL = input.URL
	spot.Price = input.Price
	if input.Currency != "" {
		spot.Currency = input.Currency
	}
	spot.Location = input.Location
	spot.ImageURL = input.ImageURL
	spot.JerseyID = input.JerseyID

	if err := database.DB.Save(&spot).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update spot"})
		return
	}

	database.DB.Preload("User").First(&spot, spot.ID)
	c.JSON(http.StatusOK, newSpotResponse(spot, viewerID.(uint)))
}

// CloseSpot godoc
// @Summary      Close a spot
// @Description  Marks an owned spot as closed (sold or gone).
// @Tags         spots
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Spot ID"
// @Success      200 {object} map[string]string "{"message": "Spot closed"}"
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Spot not found"
// @Router       /spots/{id}/close [post]
func CloseSpot(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, _ := strconv.Atoi(c.Param("id"))

	result := database.DB.Model(&models.Spot{}).
		Where("id = ? AND user_id = ?", id, viewerID).
		Update("status", models.SpotClosed)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close spot"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Spot not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Spot closed"})
}

// DeleteSpot godoc
// @Summary      Delete a spot
// @Description  Deletes an owned spot.
// @Tags         spots
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Spot ID"
// @Success      200 {object} map[string]string "{"message": "Spot deleted"}"
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Spot not found"
// @Router       /spots/{id} [delete]
func DeleteSpot(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, _ := strconv.Atoi(c.Param("id"))

	result := database.DB.Where("user_id = ?", viewerID).Delete(&models.Spot{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete spot"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Spot not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Spot deleted"})
}
