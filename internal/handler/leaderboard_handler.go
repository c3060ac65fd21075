package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"questlog/backend/internal/cache"
	"questlog/backend/internal/database"
	"questlog/backend/internal/models"
	"questlog/backend/internal/ranking"

	"github.com/gin-gonic/gin"
)

const (
	leaderboardCachePrefix = "leaderboard:"
	leaderboardCacheTTL    = 30 * time.Second
)

// LeaderboardUser is the display subset of a ranked user.
type LeaderboardUser struct {
	ID       uint   `json:"id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar,omitempty"`
}

// LeaderboardEntry is one row of a leaderboard response.
type LeaderboardEntry struct {
	Rank           int             `json:"rank"`
	User           LeaderboardUser `json:"user"`
	Level          int             `json:"level"`
	XP             int64           `json:"xp"`
	TasksCompleted int             `json:"tasks_completed"`
	IsCurrentUser  bool            `json:"is_current_user"`
}

// LeaderboardResponse is the full leaderboard payload.
type LeaderboardResponse struct {
	Leaderboard     []LeaderboardEntry `json:"leaderboard"`
	CurrentUserRank int                `json:"current_user_rank"`
	Percentile      int                `json:"percentile"`
	TotalUsers      int                `json:"total_users"`
}

func parseLeaderboardLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return limit
}

func userEntries(users []models.User) []ranking.Entry {
	entries := make([]ranking.Entry, len(users))
	for i, u := range users {
		entries[i] = ranking.Entry{
			UserID:         u.ID,
			Nickname:       u.Nickname,
			Avatar:         u.Avatar,
			XP:             u.XP,
			Level:          u.Level,
			TasksCompleted: u.TasksCompleted,
		}
	}
	return entries
}

func leaderboardRows(ordered []ranking.RankedEntry, viewerID uint) []LeaderboardEntry {
	rows := make([]LeaderboardEntry, len(ordered))
	for i, e := range ordered {
		rows[i] = LeaderboardEntry{
			Rank:           e.Rank,
			User:           LeaderboardUser{ID: e.UserID, Nickname: e.Nickname, Avatar: e.Avatar},
			Level:          e.Level,
			XP:             e.XP,
			TasksCompleted: e.TasksCompleted,
			IsCurrentUser:  e.UserID == viewerID,
		}
	}
	return rows
}

// GetLeaderboard godoc
// @Summary      Global leaderboard
// @Description  Returns the top users ranked by XP, plus the caller's own rank and percentile. Ties in XP share a rank.
// @Tags         leaderboard
// @Produce      json
// @Security     BearerAuth
// @Param        limit query     int  false  "Number of entries (1-100)" default(20)
// @Success      200   {object}  LeaderboardResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /leaderboard [get]
func GetLeaderboard(c *gin.Context) {
	viewerID := c.GetUint("userID")
	limit := parseLeaderboardLimit(c)
	ctx := c.Request.Context()

	// The top slice is shared between callers, so it caches well; the
	// caller-specific rank is recomputed every time.
	var entries []ranking.Entry
	key := fmt.Sprintf("%sglobal:%d", leaderboardCachePrefix, limit)
	err := cache.CacheAside(ctx, key, &entries, leaderboardCacheTTL, func() error {
		var users []models.User
		if err := database.DB.WithContext(ctx).
			Order("xp DESC, level DESC, id ASC").
			Limit(limit).
			Find(&users).Error; err != nil {
			return err
		}
		entries = userEntries(users)
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
		return
	}

	// Every entry with strictly more XP than a top-N member is itself in the
	// top N, so ranks computed within the snapshot are globally correct.
	ordered, _, _ := ranking.Rank(entries, viewerID)

	var viewer models.User
	if err := database.DB.First(&viewer, viewerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var higher, total int64
	if err := database.DB.Model(&models.User{}).Where("xp > ?", viewer.XP).Count(&higher).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute rank"})
		return
	}
	if err := database.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute rank"})
		return
	}

	viewerRank := int(higher) + 1

	c.JSON(http.StatusOK, LeaderboardResponse{
		Leaderboard:     leaderboardRows(ordered, viewerID),
		CurrentUserRank: viewerRank,
		Percentile:      ranking.Percentile(viewerRank, int(total)),
		TotalUsers:      int(total),
	})
}

// GetFriendsLeaderboard godoc
// @Summary      Friends leaderboard
// @Description  Returns the caller and their friends ranked by XP.
// @Tags         leaderboard
// @Produce      json
// @Security     BearerAuth
// @Param        limit query     int  false  "Number of entries (1-100)" default(20)
// @Success      200   {object}  LeaderboardResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /leaderboard/friends [get]
func GetFriendsLeaderboard(c *gin.Context) {
	viewerID := c.GetUint("userID")
	limit := parseLeaderboardLimit(c)
	ctx := c.Request.Context()

	var viewer models.User
	if err := database.DB.First(&viewer, viewerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	friends, err := relStore.ListFriends(ctx, viewerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friends"})
		return
	}

	entries := userEntries(append(friends, viewer))
	ordered, viewerRank, total := ranking.Rank(entries, viewerID)
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	c.JSON(http.StatusOK, LeaderboardResponse{
		Leaderboard:     leaderboardRows(ordered, viewerID),
		CurrentUserRank: viewerRank,
		Percentile:      ranking.Percentile(viewerRank, total),
		TotalUsers:      total,
	})
}
