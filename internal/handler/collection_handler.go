package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"kitlocker/backend/internal/database"
	"kitlocker/backend/internal/models"
	"kitlocker/backend/internal/relations"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

type CollectionItemInput struct {
	JerseyID  uint   `json:"jersey_id" binding:"required"`
	Size      string `json:"size"`
	Condition string `json:"condition" binding:"omitempty,oneof=new excellent good worn"`
	Notes     string `json:"notes"`
}

type CollectionItemUpdateInput struct {
	Size      *string `json:"size"`
	Condition *string `json:"condition" binding:"omitempty,oneof=new excellent good worn"`
	Notes     *string `json:"notes"`
}

type CollectionItemResponse struct {
	ID        uint           `json:"id"`
	Size      string         `json:"size"`
	Condition string         `json:"condition"`
	Notes     string         `json:"notes"`
	Jersey    JerseyResponse `json:"jersey"`
	CreatedAt time.Time      `json:"created_at"`
}

func newCollectionItemResponse(item models.CollectionItem) CollectionItemResponse {
	return CollectionItemResponse{
		ID:        item.ID,
		Size:      item.Size,
		Condition: string(item.Condition),
		Notes:     item.Notes,
		Jersey:    newJerseyResponse(item.Jersey, nil),
		CreatedAt: item.CreatedAt,
	}
}

// endregion

// GetMyCollection godoc
// @Summary      Get the current user's collection
// @Description  Retrieves a paginated list of the authenticated user's collection items.
// @Tags         collection
// @Produce      json
// @Security     BearerAuth
// @Param        page  query  int  false  "Page number" default(1)
// @Param        limit query  int  false  "Items per page" default(10)
// @Success      200  {object}  PaginatedResponse[CollectionItemResponse]
// @Failure      401  {object}  ErrorResponse
// @Router       /collection [get]
func GetMyCollection(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	respondCollection(c, viewerID.(uint))
}

// GetUserCollection godoc
// @Summary      Get a user's collection
// @Description  Retrieves another user's collection. Only friends may view it.
// @Tags         collection
// @Produce      json
// @Security     BearerAuth
// @Param        id    path   int  true   "User ID"
// @Param        page  query  int  false  "Page number" default(1)
// @Param        limit query  int  false  "Items per page" default(10)
// @Success      200  {object}  PaginatedResponse[CollectionItemResponse]
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Only friends can view this collection"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Router       /users/{id}/collection [get]
func GetUserCollection(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if viewerID.(uint) == uint(targetUserID) {
		respondCollection(c, viewerID.(uint))
		return
	}

	var targetUser models.User
	if err := database.DB.First(&targetUser, uint(targetUserID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	status, err := relations.GetStatus(database.DB, viewerID.(uint), uint(targetUserID))
	if err != nil {
		log.Printf("failed to derive relationship status: %v", err)
	}
	if status.Status != relations.StatusAccepted {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only friends can view this collection"})
		return
	}

	respondCollection(c, uint(targetUserID))
}

// AddCollectionItem godoc
// @Summary      Add a jersey to the collection
// @Description  Adds a catalog jersey to the authenticated user's collection.
// @Tags         collection
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CollectionItemInput true "Collection Item Info"
// @Success      201  {object}  CollectionItemResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Jersey not found"
// @Failure      409  {object}  ErrorResponse "Jersey already in collection"
// @Router       /collection [post]
func AddCollectionItem(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input CollectionItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var jersey models.Jersey
	if err := database.DB.First(&jersey, input.JerseyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Jersey not found"})
		return
	}

	var existing models.CollectionItem
	err := database.DB.Where("user_id = ? AND jersey_id = ?", viewerID, input.JerseyID).First(&existing).Error
	switch {
	case err == nil:
		c.JSON(http.StatusConflict, gin.H{"error": "Jersey already in collection"})
		return
	case !errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check collection"})
		return
	}

	condition := models.ItemCondition(input.Condition)
	if condition == "" {
		condition = models.ConditionGood
	}

	item := models.CollectionItem{
		UserID:    viewerID.(uint),
		JerseyID:  input.JerseyID,
		Size:      input.Size,
		Condition: condition,
		Notes:     input.Notes,
	}

	if err := database.DB.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to collection"})
		return
	}

	item.Jersey = jersey
	c.JSON(http.StatusCreated, newCollectionItemResponse(item))
}

// UpdateCollectionItem godoc
// @Summary      Update a collection item
// @Description  Updates size, condition or notes of an owned collection item.
// @Tags         collection
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                       true  "Collection Item ID"
// @Param        input body      CollectionItemUpdateInput true  "Fields to update"
// @Success      200  {object}  CollectionItemResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Item not found"
// @Router       /collection/{id} [put]
func UpdateCollectionItem(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, _ := strconv.Atoi(c.Param("id"))

	var item models.CollectionItem
	if err := database.DB.Where("user_id = ?", viewerID).Preload("Jersey.Tags").First(&item, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Collection item not found"})
		return
	}

	var input CollectionItemUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Size != nil {
		item.Size = *input.Size
	}
	if input.Condition != nil {
		item.Condition = models.ItemCondition(*input.Condition)
	}
	if input.Notes != nil {
		item.Notes = *input.Notes
	}

	if err := database.DB.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update collection item"})
		return
	}

	c.JSON(http.StatusOK, newCollectionItemResponse(item))
}

// RemoveCollectionItem godoc
// @Summary      Remove a collection item
// @Description  Removes an item from the authenticated user's collection.
// @Tags         collection
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Collection Item ID"
// @Success      200  {object}  map[string]string "{"message": "Item removed"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Item not found"
// @Router       /collection/{id} [delete]
func RemoveCollectionItem(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, _ := strconv.Atoi(c.Param("id"))

	result := database.DB.Where("user_id = ?", viewerID).Delete(&models.CollectionItem{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove collection item"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Collection item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed"})
}

func respondCollection(c *gin.Context, ownerID uint) {
	page, limit := pageParams(c)
	offset := (page - 1) * limit

	query := database.DB.Model(&models.CollectionItem{}).Where("user_id = ?", ownerID)

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count collection items"})
		return
	}

	var items []models.CollectionItem
	if err := query.Preload("Jersey.Tags").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve collection"})
		return
	}

	response := []CollectionItemResponse{}
	for _, item := range items {
		response = append(response, newCollectionItemResponse(item))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(response, totalItems, page, limit))
}
