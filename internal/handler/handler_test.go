package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"questlog/backend/internal/auth"
	"questlog/backend/internal/config"
	"questlog/backend/internal/database"
	"questlog/backend/internal/models"
	"questlog/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupRouter wires a fresh in-memory database and the API routes under test.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	database.DB = db
	config.AppConfig = &config.Config{JWTSecret: "test-secret"}
	Init()

	router := gin.New()
	apiV1 := router.Group("/api/v1")

	authRoutes := apiV1.Group("/auth")
	authRoutes.POST("/register", RegisterUser)
	authRoutes.POST("/login", LoginUser)

	userRoutes := apiV1.Group("/users")
	userRoutes.Use(auth.AuthMiddleware())
	userRoutes.GET("", SearchUsers)
	userRoutes.GET("/me", GetMe)
	userRoutes.GET("/me/friends", GetFriends)
	userRoutes.GET("/me/friends/pending", GetPendingRequests)
	userRoutes.GET("/me/friends/sent", GetSentRequests)
	userRoutes.GET("/me/friends/blocked", GetBlockedUsers)
	userRoutes.GET("/:id", GetUserByID)
	userRoutes.POST("/:id/request", SendRequest)
	userRoutes.POST("/:id/accept", AcceptRequest)
	userRoutes.POST("/:id/decline", DeclineRequest)
	userRoutes.POST("/:id/cancel", CancelRequest)
	userRoutes.POST("/:id/remove", RemoveFriend)
	userRoutes.POST("/:id/block", BlockUser)
	userRoutes.POST("/:id/unblock", UnblockUser)

	leaderboardRoutes := apiV1.Group("/leaderboard")
	leaderboardRoutes.Use(auth.AuthMiddleware())
	leaderboardRoutes.GET("", GetLeaderboard)
	leaderboardRoutes.GET("/friends", GetFriendsLeaderboard)

	taskRoutes := apiV1.Group("/tasks")
	taskRoutes.Use(auth.AuthMiddleware())
	taskRoutes.POST("/complete", CompleteTask)

	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
	adminRoutes.POST("/users/:id/xp", GrantXP)

	return router
}

// testUser is a created account plus a valid bearer token for it.
type testUser struct {
	ID    uint
	Token string
}

func createUser(t *testing.T, nickname string, xp int64) testUser {
	t.Helper()

	user := models.User{
		Nickname:     nickname,
		Email:        nickname + "@test.com",
		PasswordHash: "x",
		XP:           xp,
		Level:        models.LevelForXP(xp),
	}
	require.NoError(t, database.DB.Create(&user).Error)

	token, err := jwt.GenerateToken(user.ID)
	require.NoError(t, err)
	return testUser{ID: user.ID, Token: token}
}

func createAdmin(t *testing.T, nickname string) testUser {
	t.Helper()

	u := createUser(t, nickname, 0)
	require.NoError(t, database.DB.Model(&models.User{}).Where("id = ?", u.ID).Update("role", "admin").Error)
	return u
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}

func userIDs(users []PublicUserResponse) []uint {
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

func TestAuthRequired(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/users/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
