package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"kitlocker/backend/internal/auth"
	"kitlocker/backend/internal/config"
	"kitlocker/backend/internal/database"
	"kitlocker/backend/internal/feed"
	"kitlocker/backend/internal/handler"
	"kitlocker/backend/internal/preview"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "kitlocker/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Kit Locker API
// @version         1.0
// @description     This is the API for the Kit Locker jersey collecting service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	// Redis is optional; without it feed events stay instance-local.
	if config.AppConfig.RedisAddr != "" {
		database.ConnectRedis(config.AppConfig.RedisAddr, config.AppConfig.RedisPassword)
		feed.StartBridge(context.Background())
	}

	router := gin.Default()

	// Social crawlers get pre-rendered Open Graph pages
	router.Use(preview.Middleware())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("", handler.SearchUsers) // Must be before /:id
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.PUT("/me", handler.UpdateMe)
			userRoutes.GET("/me/relationships", handler.GetRelationships)
			userRoutes.GET("/:id", handler.GetUserByID)
			userRoutes.GET("/:id/status", handler.GetRelationshipStatus)
			userRoutes.GET("/:id/collection", handler.GetUserCollection)
			userRoutes.POST("/:id/request", handler.SendRequest)
		}

		// Relationship mutations are keyed by relationship id
		relationshipRoutes := apiV1.Group("/relationships")
		relationshipRoutes.Use(auth.AuthMiddleware())
		{
			relationshipRoutes.POST("/:id/accept", handler.AcceptRequest)
			relationshipRoutes.POST("/:id/reject", handler.RejectRequest)
			relationshipRoutes.POST("/:id/cancel", handler.CancelRequest)
			relationshipRoutes.DELETE("/:id", handler.RemoveFriend)
		}

		// Public jersey catalog, the in-collection flag lights up for
		// authenticated viewers
		jerseyRoutes := apiV1.Group("/jerseys")
		jerseyRoutes.Use(auth.OptionalAuthMiddleware())
		{
			jerseyRoutes.GET("", handler.GetJerseys)
			jerseyRoutes.GET("/:id", handler.GetJerseyByID)
		}

		// Collection routes (protected)
		collectionRoutes := apiV1.Group("/collection")
		collectionRoutes.Use(auth.AuthMiddleware())
		{
			collectionRoutes.GET("", handler.GetMyCollection)
			collectionRoutes.POST("", handler.AddCollectionItem)
			collectionRoutes.PUT("/:id", handler.UpdateCollectionItem)
			collectionRoutes.DELETE("/:id", handler.RemoveCollectionItem)
		}

		// Spot routes (protected)
		spotRoutes := apiV1.Group("/spots")
		spotRoutes.Use(auth.AuthMiddleware())
		{
			spotRoutes.GET("", handler.GetSpots)
			spotRoutes.POST("", handler.CreateSpot)
			spotRoutes.GET("/:id", handler.GetSpotByID)
			spotRoutes.PUT("/:id", handler.UpdateSpot)
			spotRoutes.POST("/:id/close", handler.CloseSpot)
			spotRoutes.DELETE("/:id", handler.DeleteSpot)
		}

		// Bounty routes (protected)
		bountyRoutes := apiV1.Group("/bounties")
		bountyRoutes.Use(auth.AuthMiddleware())
		{
			bountyRoutes.GET("", handler.GetBounties)
			bountyRoutes.POST("", handler.CreateBounty)
			bountyRoutes.GET("/:id", handler.GetBountyByID)
			bountyRoutes.PUT("/:id", handler.UpdateBounty)
			bountyRoutes.POST("/:id/fulfill", handler.FulfillBounty)
			bountyRoutes.POST("/:id/close", handler.CloseBounty)
			bountyRoutes.DELETE("/:id", handler.DeleteBounty)
		}

		// Kit submission routes (protected)
		submissionRoutes := apiV1.Group("/submissions")
		submissionRoutes.Use(auth.AuthMiddleware())
		{
			submissionRoutes.POST("", handler.CreateSubmission)
			submissionRoutes.GET("", handler.GetMySubmissions)
		}

		// Realtime change feed (protected)
		apiV1.GET("/feed", auth.AuthMiddleware(), handler.StreamFeed)

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
		{
			// Tags CRUD
			tags := adminRoutes.Group("/tags")
			{
				tags.POST("", handler.CreateTag)
				tags.GET("", handler.GetTags)
				tags.PUT("/:id", handler.UpdateTag)
				tags.DELETE("/:id", handler.DeleteTag)
			}

			// Jerseys CRUD (admin-only parts)
			adminJerseyRoutes := adminRoutes.Group("/jerseys")
			{
				adminJerseyRoutes.POST("", handler.CreateJersey)
				adminJerseyRoutes.PUT("/:id", handler.UpdateJersey)
				adminJerseyRoutes.DELETE("/:id", handler.DeleteJersey)
			}

			// Submission review
			adminSubmissionRoutes := adminRoutes.Group("/submissions")
			{
				adminSubmissionRoutes.GET("", handler.GetPendingSubmissions)
				adminSubmissionRoutes.POST("/:id/approve", handler.ApproveSubmission)
				adminSubmissionRoutes.POST("/:id/reject", handler.RejectSubmission)
			}
		}
	}

	fmt.Printf("Server is running on %s\n", config.AppConfig.ServerAddr)
	fmt.Println("Swagger UI is available at http://localhost:8080/swagger/index.html")
	log.Fatal(router.Run(config.AppConfig.ServerAddr))
}
