package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"kitlocker/backend/internal/database"
	"kitlocker/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type TagInput struct {
	Name string `json:"name" binding:"required"`
}

type TagResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	JerseyCount int64     `json:"jersey_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newTagResponse(tag models.Tag) TagResponse {
	return TagResponse{
		ID:        tag.ID,
		Name:      tag.Name,
		CreatedAt: tag.CreatedAt,
		UpdatedAt: tag.UpdatedAt,
	}
}

// endregion

// tagNameTaken reports whether another tag already uses the name,
// case-insensitively. excludeID skips the tag being renamed.
func tagNameTaken(name string, excludeID uint) (bool, error) {
	var count int64
	err := database.DB.Model(&models.Tag{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, excludeID).
		Count(&count).Error
	return count > 0, err
}

// CreateTag godoc
// @Summary      Create a new tag
// @Description  Creates a new tag for catalog jerseys. Names are unique, compared case-insensitively.
// @Tags         admin-tags
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body TagInput true "Tag Info"
// @Success      201  {object}  TagResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      409  {object}  ErrorResponse "Tag already exists"
// @Router       /admin/tags [post]
func CreateTag(c *gin.Context) {
	var input TagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tag name cannot be blank"})
		return
	}

	taken, err := tagNameTaken(name, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check tag name"})
		return
	}
	if taken {
		c.JSON(http.StatusConflict, gin.H{"error": "Tag already exists"})
		return
	}

	tag := models.Tag{Name: name}
	if err := database.DB.Create(&tag).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tag"})
		return
	}

	c.JSON(http.StatusCreated, newTagResponse(tag))
}

// GetTags godoc
// @Summary      Get all tags
// @Description  Retrieves every tag together with the number of catalog jerseys carrying it.
// @Tags         admin-tags
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   TagResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /admin/tags [get]
func GetTags(c *gin.Context) {
	var rows []struct {
		models.Tag
		JerseyCount int64
	}
	// Soft-deleted jerseys keep their join rows, so the count goes through
	// the jerseys table instead of counting jersey_tags directly.
	err := database.DB.Model(&models.Tag{}).
		Select("tags.*, COUNT(jerseys.id) AS jersey_count").
		Joins("LEFT JOIN jersey_tags jt ON jt.tag_id = tags.id").
		Joins("LEFT JOIN jerseys ON jerseys.id = jt.jersey_id AND jerseys.deleted_at IS NULL").
		Group("tags.id").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tags"})
		return
	}

	response := []TagResponse{}
	for _, row := range rows {
		tagResponse := newTagResponse(row.Tag)
		tagResponse.JerseyCount = row.JerseyCount
		response = append(response, tagResponse)
	}
	c.JSON(http.StatusOK, response)
}

// UpdateTag godoc
// @Summary      Update a tag
// @Description  Renames an existing tag. The new name must not collide with another tag.
// @Tags         admin-tags
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int      true  "Tag ID"
// @Param        input body TagInput true "New Tag Info"
// @Success      200  {object}  TagResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      404  {object}  ErrorResponse "Tag not found"
// @Failure      409  {object}  ErrorResponse "Tag already exists"
// @Router       /admin/tags/{id} [put]
func UpdateTag(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	var input TagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tag name cannot be blank"})
		return
	}

	var tag models.Tag
	if err := database.DB.First(&tag, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return
	}

	taken, err := tagNameTaken(name, tag.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check tag name"})
		return
	}
	if taken {
		c.JSON(http.StatusConflict, gin.H{"error": "Tag already exists"})
		return
	}

	if err := database.DB.Model(&tag).Update("name", name).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tag"})
		return
	}
	c.JSON(http.StatusOK, newTagResponse(tag))
}

// DeleteTag godoc
// @Summary      Delete a tag
// @Description  Deletes a tag. Tags still attached to catalog jerseys cannot be deleted.
// @Tags         admin-tags
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Tag ID"
// @Success      200  {object}  map[string]string "{"message": "Tag deleted"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      404  {object}  ErrorResponse "Tag not found"
// @Failure      409  {object}  ErrorResponse "Tag still in use"
// @Router       /admin/tags/{id} [delete]
func DeleteTag(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	var attached int64
	err = database.DB.Table("jersey_tags").
		Joins("JOIN jerseys ON jerseys.id = jersey_tags.jersey_id AND jerseys.deleted_at IS NULL").
		Where("jersey_tags.tag_id = ?", id).
		Count(&attached).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check tag usage"})
		return
	}
	if attached > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Tag is still attached to jerseys"})
		return
	}

	result := database.DB.Delete(&models.Tag{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tag"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return
	}

	// Join rows left behind by soft-deleted jerseys.
	database.DB.Exec("DELETE FROM jersey_tags WHERE tag_id = ?", id)

	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted"})
}
