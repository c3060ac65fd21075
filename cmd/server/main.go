package main

import (
	"fmt"
	"log"
	"net/http"

	"questlog/backend/internal/auth"
	"questlog/backend/internal/cache"
	"questlog/backend/internal/config"
	"questlog/backend/internal/database"
	"questlog/backend/internal/handler"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "questlog/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Questlog API
// @version         1.0
// @description     This is the API for the Questlog service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database and cache
	database.Connect(config.AppConfig.DatabaseURL)
	cache.Init(config.AppConfig.RedisURL)
	defer cache.Close()

	handler.Init()

	router := gin.Default()

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

		// Public profiles classify against the viewer when a token is present.
		apiV1.GET("/users/:id", auth.OptionalAuthMiddleware(), handler.GetUserByID)

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("", handler.SearchUsers) // Must be before /:id
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.GET("/me/events", handler.StreamEvents)
			userRoutes.GET("/me/friends", handler.GetFriends)
			userRoutes.GET("/me/friends/pending", handler.GetPendingRequests)
			userRoutes.GET("/me/friends/sent", handler.GetSentRequests)
			userRoutes.GET("/me/friends/blocked", handler.GetBlockedUsers)

			// Friendship routes
			userRoutes.POST("/:id/request", handler.SendRequest)
			userRoutes.POST("/:id/accept", handler.AcceptRequest)
			userRoutes.POST("/:id/decline", handler.DeclineRequest)
			userRoutes.POST("/:id/cancel", handler.CancelRequest)
			userRoutes.POST("/:id/remove", handler.RemoveFriend)
			userRoutes.POST("/:id/block", handler.BlockUser)
			userRoutes.POST("/:id/unblock", handler.UnblockUser)
		}

		// Leaderboard routes (protected)
		leaderboardRoutes := apiV1.Group("/leaderboard")
		leaderboardRoutes.Use(auth.AuthMiddleware())
		{
			leaderboardRoutes.GET("", handler.GetLeaderboard)
			leaderboardRoutes.GET("/friends", handler.GetFriendsLeaderboard)
		}

		// Progress routes (protected)
		taskRoutes := apiV1.Group("/tasks")
		taskRoutes.Use(auth.AuthMiddleware())
		{
			taskRoutes.POST("/complete", handler.CompleteTask)
		}

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
		{
			adminRoutes.POST("/users/:id/xp", handler.GrantXP)
		}
	}

	fmt.Printf("Server is running on %s\n", config.AppConfig.ServerAddr)
	fmt.Println("Swagger UI is available at http://localhost:8080/swagger/index.html")
	log.Fatal(router.Run(config.AppConfig.ServerAddr))
}
