package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"kitlocker/backend/internal/auth"
	"kitlocker/backend/internal/config"
	"kitlocker/backend/internal/database"
	"kitlocker/backend/internal/models"
	"kitlocker/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// setupTest wires an in-memory database into the package globals and returns
// a router with the same layout as cmd/server.
func setupTest(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	config.AppConfig = &config.Config{JWTSecret: "test-secret"}

	dsn := fmt.Sprintf("file:handler_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	database.DB = db

	return newTestRouter()
}

func newTestRouter() *gin.Engine {
	router := gin.New()

	apiV1 := router.Group("/api/v1")

	authRoutes := apiV1.Group("/auth")
	authRoutes.POST("/register", RegisterUser)
	authRoutes.POST("/login", LoginUser)

	userRoutes := apiV1.Group("/users")
	userRoutes.Use(auth.AuthMiddleware())
	userRoutes.GET("", SearchUsers)
	userRoutes.GET("/me", GetMe)
	userRoutes.PUT("/me", UpdateMe)
	userRoutes.GET("/me/relationships", GetRelationships)
	userRoutes.GET("/:id", GetUserByID)
	userRoutes.GET("/:id/status", GetRelationshipStatus)
	userRoutes.GET("/:id/collection", GetUserCollection)
	userRoutes.POST("/:id/request", SendRequest)

	relationshipRoutes := apiV1.Group("/relationships")
	relationshipRoutes.Use(auth.AuthMiddleware())
	relationshipRoutes.POST("/:id/accept", AcceptRequest)
	relationshipRoutes.POST("/:id/reject", RejectRequest)
	relationshipRoutes.POST("/:id/cancel", CancelRequest)
	relationshipRoutes.DELETE("/:id", RemoveFriend)

	jerseyRoutes := apiV1.Group("/jerseys")
	jerseyRoutes.Use(auth.OptionalAuthMiddleware())
	jerseyRoutes.GET("", GetJerseys)
	jerseyRoutes.GET("/:id", GetJerseyByID)

	collectionRoutes := apiV1.Group("/collection")
	collectionRoutes.Use(auth.AuthMiddleware())
	collectionRoutes.GET("", GetMyCollection)
	collectionRoutes.POST("", AddCollectionItem)
	collectionRoutes.PUT("/:id", UpdateCollectionItem)
	collectionRoutes.DELETE("/:id", RemoveCollectionItem)

	spotRoutes := apiV1.Group("/spots")
	spotRoutes.Use(auth.AuthMiddleware())
	spotRoutes.GET("", GetSpots)
	spotRoutes.POST("", CreateSpot)
	spotRoutes.GET("/:id", GetSpotByID)
	spotRoutes.PUT("/:id", UpdateSpot)
	spotRoutes.POST("/:id/close", CloseSpot)
	spotRoutes.DELETE("/:id", DeleteSpot)

	bountyRoutes := apiV1.Group("/bounties")
	bountyRoutes.Use(auth.AuthMiddleware())
	bountyRoutes.GET("", GetBounties)
	bountyRoutes.POST("", CreateBounty)
	bountyRoutes.GET("/:id", GetBountyByID)
	bountyRoutes.PUT("/:id", UpdateBounty)
	bountyRoutes.POST("/:id/fulfill", FulfillBounty)
	bountyRoutes.POST("/:id/close", CloseBounty)
	bountyRoutes.DELETE("/:id", DeleteBounty)

	submissionRoutes := apiV1.Group("/submissions")
	submissionRoutes.Use(auth.AuthMiddleware())
	submissionRoutes.POST("", CreateSubmission)
	submissionRoutes.GET("", GetMySubmissions)

	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
	adminRoutes.POST("/tags", CreateTag)
	adminRoutes.GET("/tags", GetTags)
	adminRoutes.PUT("/tags/:id", UpdateTag)
	adminRoutes.DELETE("/tags/:id", DeleteTag)
	adminRoutes.POST("/jerseys", CreateJersey)
	adminRoutes.PUT("/jerseys/:id", UpdateJersey)
	adminRoutes.DELETE("/jerseys/:id", DeleteJersey)
	adminRoutes.GET("/submissions", GetPendingSubmissions)
	adminRoutes.POST("/submissions/:id/approve", ApproveSubmission)
	adminRoutes.POST("/submissions/:id/reject", RejectSubmission)

	return router
}

func createTestUser(t *testing.T, username, role string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		DisplayName:  username,
		Role:         role,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("creating user %s: %v", username, err)
	}
	return user
}

func tokenFor(t *testing.T, userID uint) string {
	t.Helper()

	token, err := jwt.GenerateToken(userID)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return token
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshalling request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
}

func seedJersey(t *testing.T, club, season string) models.Jersey {
	t.Helper()

	jersey := models.Jersey{
		Club:   club,
		Season: season,
		Kind:   models.KindHome,
	}
	if err := database.DB.Create(&jersey).Error; err != nil {
		t.Fatalf("seeding jersey: %v", err)
	}
	return jersey
}
