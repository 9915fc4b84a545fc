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

type JerseyInput struct {
	Club         string `json:"club" binding:"required"`
	Season       string `json:"season" binding:"required"`
	Kind         string `json:"kind" binding:"omitempty,oneof=home away third keeper"`
	Brand        string `json:"brand"`
	PlayerName   string `json:"player_name"`
	PlayerNumber *int   `json:"player_number"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
	TagIDs       []uint `json:"tag_ids"`
}

type JerseyResponse struct {
	ID           uint          `json:"id"`
	Club         string        `json:"club"`
	Season       string        `json:"season"`
	Kind         string        `json:"kind"`
	Brand        string        `json:"brand"`
	PlayerName   string        `json:"player_name,omitempty"`
	PlayerNumber *int          `json:"player_number,omitempty"`
	Description  string        `json:"description"`
	ImageURL     string        `json:"image_url"`
	InCollection bool          `json:"in_collection"`
	Tags         []TagResponse `json:"tags"`
	CreatedAt    time.Time     `json:"created_at"`
}

func newJerseyResponse(jersey models.Jersey, collectedIDs map[uint]bool) JerseyResponse {
	var tagResponses []TagResponse
	for _, tag := range jersey.Tags {
		if tag != nil {
			tagResponses = append(tagResponses, newTagResponse(*tag))
		}
	}

	return JerseyResponse{
		ID:           jersey.ID,
		Club:         jersey.Club,
		Season:       jersey.Season,
		Kind:         string(jersey.Kind),
		Brand:        jersey.Brand,
		PlayerName:   jersey.PlayerName,
		PlayerNumber: jersey.PlayerNumber,
		Description:  jersey.Description,
		ImageURL:     jersey.ImageURL,
		InCollection: collectedIDs[jersey.ID],
		Tags:         tagResponses,
		CreatedAt:    jersey.CreatedAt,
	}
}

// endregion

// region --- Admin Handlers ---

// CreateJersey godoc
// @Summary      Create a catalog jersey
// @Description  Creates a new jersey in the shared catalog and associates it with given tags.
// @Tags         admin-jerseys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body JerseyInput true "Jersey Info"
// @Success      201  {object}  JerseyResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /admin/jerseys [post]
func CreateJersey(c *gin.Context) {
	var input JerseyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var tags []*models.Tag
	if len(input.TagIDs) > 0 {
		database.DB.Find(&tags, input.TagIDs)
	}

	kind := models.JerseyKind(input.Kind)
	if kind == "" {
		kind = models.KindHome
	}

	jersey := models.Jersey{
		Club:         input.Club,
		Season:       input.Season,
		Kind:         kind,
		Brand:        input.Brand,
		PlayerName:   input.PlayerName,
		PlayerNumber: input.PlayerNumber,
		Description:  input.Description,
		ImageURL:     input.ImageURL,
		Tags:         tags,
	}

	if err := database.DB.Create(&jersey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create jersey"})
		return
	}

	c.JSON(http.StatusCreated, newJerseyResponse(jersey, nil))
}

// UpdateJersey godoc
// @Summary      Update a catalog jersey
// @Description  Updates a jersey's details and replaces its tags.
// @Tags         admin-jerseys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int         true  "Jersey ID"
// @Param        input body      JerseyInput true  "New Jersey Info"
// @Success      200   {object}  JerseyResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse "Admin access required"
// @Failure      404   {object}  ErrorResponse "Jersey not found"
// @Router       /admin/jerseys/{id} [put]
func UpdateJersey(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var jersey models.Jersey
	if err := database.DB.First(&jersey, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Jersey not found"})
		return
	}

	var input JerseyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var tags []*models.Tag
	if len(input.TagIDs) > 0 {
		database.DB.Find(&tags, input.TagIDs)
	}

	jersey.Club = input.Club
	jersey.Season = input.Season
	if input.Kind != "" {
		jersey.Kind = models.JerseyKind(input.Kind)
	}
	jersey.Brand = input.Brand
	jersey.PlayerName = input.PlayerName
	jersey.PlayerNumber = input.PlayerNumber
	jersey.Description = input.Description
	jersey.ImageURL = input.ImageURL

	if err := database.DB.Model(&jersey).Association("Tags").Replace(tags); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tags for jersey"})
		return
	}

	database.DB.Save(&jersey)
	database.DB.Preload("Tags").First(&jersey, id)

	c.JSON(http.StatusOK, newJerseyResponse(jersey, nil))
}

// DeleteJersey godoc
// @Summary      Delete a catalog jersey
// @Description  Deletes an existing jersey from the catalog.
// @Tags         admin-jerseys
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Jersey ID"
// @Success      200 {object} map[string]string "{"message": "Jersey deleted"}"
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Jersey not found"
// @Router       /admin/jerseys/{id} [delete]
func DeleteJersey(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	result := database.DB.Select("Tags").Delete(&models.Jersey{}, id)
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Jersey not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Jersey deleted"})
}

// endregion

// region --- Public Handlers ---

// GetJerseyByID godoc
// @Summary      Get a single jersey by ID
// @Description  Retrieves details for a single catalog jersey, including its tags and whether it is in the viewer's collection.
// @Tags         jerseys
// @Produce      json
// @Param        id path int true "Jersey ID"
// @Success      200 {object} JerseyResponse
// @Failure      404 {object} ErrorResponse "Jersey not found"
// @Router       /jerseys/{id} [get]
func GetJerseyByID(c *gin.Context) {
	viewer := viewerID(c)
	id, _ := strconv.Atoi(c.Param("id"))

	var jersey models.Jersey
	if err := database.DB.Preload("Tags").First(&jersey, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Jersey not found"})
		return
	}

	c.JSON(http.StatusOK, newJerseyResponse(jersey, collectedJerseyIDs(viewer)))
}

// GetJerseys godoc
// @Summary      Browse the jersey catalog
// @Description  Retrieves a paginated list of jerseys, with optional filtering by club/player text, club, season, kind, tags and collection membership.
// @Tags         jerseys
// @Produce      json
// @Param        q        query  string  false  "Search query for club or player name"
// @Param        club     query  string  false  "Exact club filter"
// @Param        season   query  string  false  "Exact season filter (e.g. 2003/04)"
// @Param        kind     query  string  false  "Kit kind (home, away, third, keeper)"
// @Param        tag_ids  query  string  false  "Comma-separated list of Tag IDs"
// @Param        collected_only query bool false "Return only jerseys in the viewer's collection"
// @Param        page     query  int     false  "Page number" default(1)
// @Param        limit    query  int     false  "Items per page" default(10)
// @Success      200 {object} PaginatedResponse[JerseyResponse]
// @Router       /jerseys [get]
func GetJerseys(c *gin.Context) {
	viewer := viewerID(c)
	page, limit := pageParams(c)
	offset := (page - 1) * limit

	searchQuery := c.Query("q")
	clubFilter := c.Query("club")
	seasonFilter := c.Query("season")
	kindFilter := c.Query("kind")
	tagIDsStr := c.Query("tag_ids")
	collectedOnly, _ := strconv.ParseBool(c.Query("collected_only"))

	collectedIDs := collectedJerseyIDs(viewer)

	var tagIDs []uint
	if tagIDsStr != "" {
		for _, s := range splitCommaSeparated(tagIDsStr) {
			if id, parseErr := strconv.ParseUint(s, 10, 32); parseErr == nil {
				tagIDs = append(tagIDs, uint(id))
			}
		}
	}

	dbQuery := database.DB.Model(&models.Jersey{})
	countQuery := database.DB.Model(&models.Jersey{})

	if collectedOnly {
		if len(collectedIDs) == 0 {
			c.JSON(http.StatusOK, NewPaginatedResponse([]JerseyResponse{}, 0, page, limit))
			return
		}
		ids := make([]uint, 0, len(collectedIDs))
		for id := range collectedIDs {
			ids = append(ids, id)
		}
		dbQuery = dbQuery.Where("id IN (?)", ids)
		countQuery = countQuery.Where("id IN (?)", ids)
	}

	if searchQuery != "" {
		like := "%" + searchQuery + "%"
		dbQuery = dbQuery.Where("LOWER(club) LIKE LOWER(?) OR LOWER(player_name) LIKE LOWER(?)", like, like)
		countQuery = countQuery.Where("LOWER(club) LIKE LOWER(?) OR LOWER(player_name) LIKE LOWER(?)", like, like)
	}
	if clubFilter != "" {
		dbQuery = dbQuery.Where("club = ?", clubFilter)
		countQuery = countQuery.Where("club = ?", clubFilter)
	}
	if seasonFilter != "" {
		dbQuery = dbQuery.Where("season = ?", seasonFilter)
		countQuery = countQuery.Where("season = ?", seasonFilter)
	}
	if kindFilter != "" {
		dbQuery = dbQuery.Where("kind = ?", kindFilter)
		countQuery = countQuery.Where("kind = ?", kindFilter)
	}

	var totalItems int64
	if len(tagIDs) > 0 {
		dbQuery = dbQuery.Joins("JOIN jersey_tags jt ON jt.jersey_id = jerseys.id").
			Where("jt.tag_id IN (?)", tagIDs).
			Group("jerseys.id")

		// For a grouped query we count the number of distinct groups
		// through a subquery; GORM's default count is wrong under GROUP BY.
		subQuery := countQuery.Joins("JOIN jersey_tags jt ON jt.jersey_id = jerseys.id").
			Where("jt.tag_id IN (?)", tagIDs).
			Group("jerseys.id").Select("jerseys.id")

		if err := database.DB.Table("(?) as sub", subQuery).Count(&totalItems).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count jerseys"})
			return
		}
	} else {
		if err := countQuery.Count(&totalItems).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count jerseys"})
			return
		}
	}

	var jerseys []models.Jersey
	if err := dbQuery.Preload("Tags").Offset(offset).Limit(limit).Find(&jerseys).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve jerseys"})
		return
	}

	response := []JerseyResponse{}
	for _, jersey := range jerseys {
		response = append(response, newJerseyResponse(jersey, collectedIDs))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(response, totalItems, page, limit))
}

// endregion

// region --- Helpers ---

// viewerID returns the authenticated user's id, or 0 for anonymous viewers.
func viewerID(c *gin.Context) uint {
	if id, exists := c.Get("userID"); exists {
		return id.(uint)
	}
	return 0
}

// collectedJerseyIDs returns the set of catalog jersey ids in a user's collection.
func collectedJerseyIDs(userID uint) map[uint]bool {
	var ids []uint
	database.DB.Model(&models.CollectionItem{}).
		Where("user_id = ?", userID).
		Pluck("jersey_id", &ids)

	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// Helper to split comma-separated strings
func splitCommaSeparated(s string) []string {
	var result []string
	parts := strings.Split(s, ",")
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// endregion
