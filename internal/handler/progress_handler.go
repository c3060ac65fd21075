package handler

import (
	"net/http"
	"strconv"

	"questlog/backend/internal/cache"
	"questlog/backend/internal/database"
	"questlog/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CompleteTaskInput defines the structure for reporting a completed task.
type CompleteTaskInput struct {
	Difficulty int `json:"difficulty" example:"2"` // 1-5, defaults to 1
}

// ProgressResponse reports the caller's score profile after an XP award.
type ProgressResponse struct {
	XPGained       int64 `json:"xp_gained"`
	XP             int64 `json:"xp"`
	Level          int   `json:"level"`
	LeveledUp      bool  `json:"leveled_up"`
	TasksCompleted int   `json:"tasks_completed"`
}

// awardXP applies an XP delta to a user inside a transaction and keeps the
// derived level in sync. XP never drops below zero.
func awardXP(db *gorm.DB, userID uint, delta int64, countTask bool) (ProgressResponse, error) {
	var resp ProgressResponse
	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		oldLevel := user.Level
		user.XP += delta
		if user.XP < 0 {
			user.XP = 0
		}
		user.Level = models.LevelForXP(user.XP)
		if countTask {
			user.TasksCompleted++
		}

		if err := tx.Model(&user).Updates(map[string]interface{}{
			"xp":              user.XP,
			"level":           user.Level,
			"tasks_completed": user.TasksCompleted,
		}).Error; err != nil {
			return err
		}

		resp = ProgressResponse{
			XPGained:       delta,
			XP:             user.XP,
			Level:          user.Level,
			LeveledUp:      user.Level > oldLevel,
			TasksCompleted: user.TasksCompleted,
		}
		return nil
	})
	return resp, err
}

// CompleteTask godoc
// @Summary      Report a completed task
// @Description  Awards XP for a completed task, bumps the task counter and recomputes the level. Harder tasks award more XP.
// @Tags         progress
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CompleteTaskInput false "Task info"
// @Success      200  {object}  ProgressResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /tasks/complete [post]
func CompleteTask(c *gin.Context) {
	viewerID := c.GetUint("userID")

	var input CompleteTaskInput
	_ = c.ShouldBindJSON(&input) // body is optional
	if input.Difficulty < 1 {
		input.Difficulty = 1
	}
	if input.Difficulty > 5 {
		input.Difficulty = 5
	}

	gain := int64(10 + 5*input.Difficulty)
	resp, err := awardXP(database.DB, viewerID, gain, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record task"})
		return
	}

	cache.DeleteByPrefix(c.Request.Context(), leaderboardCachePrefix)
	c.JSON(http.StatusOK, resp)
}

// GrantXPInput defines the structure for an admin XP adjustment.
type GrantXPInput struct {
	Amount int64 `json:"amount" binding:"required" example:"100"`
}

// GrantXP godoc
// @Summary      Adjust a user's XP (admin)
// @Description  Applies an XP delta to any user. Negative amounts revoke XP; the total never drops below zero.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int           true  "Target User ID"
// @Param        input body      GrantXPInput  true  "XP delta"
// @Success      200   {object}  ProgressResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /admin/users/{id}/xp [post]
func GrantXP(c *gin.Context) {
	targetUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
		return
	}

	var input GrantXPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var target models.User
	if err := database.DB.First(&target, uint(targetUserID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Target user not found"})
		return
	}

	resp, err := awardXP(database.DB, target.ID, input.Amount, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to adjust XP"})
		return
	}

	cache.DeleteByPrefix(c.Request.Context(), leaderboardCachePrefix)
	c.JSON(http.StatusOK, resp)
}
