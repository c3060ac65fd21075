package handler

import (
	"errors"
	"net/http"
	"strconv"

	"questlog/backend/internal/database"
	"questlog/backend/internal/hub"
	"questlog/backend/internal/models"
	"questlog/backend/internal/relationship"

	"github.com/gin-gonic/gin"
)

// relationTarget parses the :id path parameter and verifies the target user
// exists. Writes the error response itself and returns ok=false on failure.
func relationTarget(c *gin.Context) (models.User, bool) {
	targetUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
		return models.User{}, false
	}

	var target models.User
	if err := database.DB.First(&target, uint(targetUserID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Target user not found"})
		return models.User{}, false
	}
	return target, true
}

// relationError maps store errors to HTTP responses. Invalid transitions are
// conflicts, phrased so the UI can show a benign "already changed" message.
func relationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, relationship.ErrSelfReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot perform this action on yourself"})
	case errors.Is(err, relationship.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "Relationship state already changed"})
	case errors.Is(err, relationship.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the blocker can unblock"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update relationship"})
	}
}

// SendRequest godoc
// @Summary      Send friend request
// @Description  Sends a friend request to another user. If that user already has a request in flight toward the caller, both collapse directly to friendship.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      201  {object}  map[string]string "{"message": "Request sent successfully"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      409  {object}  ErrorResponse "Relationship state already changed"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/request [post]
func SendRequest(c *gin.Context) {
	viewerID := c.GetUint("userID")
	target, ok := relationTarget(c)
	if !ok {
		return
	}

	if err := relStore.SendRequest(c.Request.Context(), viewerID, target.ID); err != nil {
		relationError(c, err)
		return
	}

	// The mutual-consent collapse turns a send into an acceptance.
	state, _ := relStore.Resolve(c.Request.Context(), viewerID, target.ID)
	if state.State == models.EdgeStateFriends {
		eventHub.Notify(target.ID, hub.Event{Type: hub.EventRequestAccepted, Payload: gin.H{"user_id": viewerID}})
		c.JSON(http.StatusOK, gin.H{"message": "You are now friends"})
		return
	}

	eventHub.Notify(target.ID, hub.Event{Type: hub.EventRequestReceived, Payload: gin.H{"user_id": viewerID}})
	c.JSON(http.StatusCreated, gin.H{"message": "Request sent successfully"})
}

// AcceptRequest godoc
// @Summary      Accept friend request
// @Description  Accepts a pending friend request from another user. Only the recipient of the request may accept it.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Requesting User ID"
// @Success      200  {object}  map[string]string "{"message": "Request accepted"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Request not found"
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/accept [post]
func AcceptRequest(c *gin.Context) {
	viewerID := c.GetUint("userID")
	target, ok := relationTarget(c)
	if !ok {
		return
	}

	if err := relStore.AcceptRequest(c.Request.Context(), viewerID, target.ID); err != nil {
		relationError(c, err)
		return
	}

	eventHub.Notify(target.ID, hub.Event{Type: hub.EventRequestAccepted, Payload: gin.H{"user_id": viewerID}})
	c.JSON(http.StatusOK, gin.H{"message": "Request accepted"})
}

// DeclineRequest godoc
// @Summary      Decline friend request
// @Description  Declines a pending friend request from another user.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Requesting User ID"
// @Success      200  {object}  map[string]string "{"message": "Request declined"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Request not found"
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/decline [post]
func DeclineRequest(c *gin.Context) {
	viewerID := c.GetUint("userID")
	target, ok := relationTarget(c)
	if !ok {
		return
	}

	if err := relStore.DeclineRequest(c.Request.Context(), viewerID, target.ID); err != nil {
		relationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request declined"})
}

// CancelRequest godoc
// @Summary      Cancel sent friend request
// @Description  Withdraws a pending friend request the caller previously sent.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]string "{"message": "Request cancelled"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/cancel [post]
func CancelRequest(c *gin.Context) {
	viewerID := c.GetUint("userID")
	target, ok := relationTarget(c)
	if !ok {
		return
	}

	if err := relStore.CancelRequest(c.Request.Context(), viewerID, target.ID); err != nil {
		relationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request cancelled"})
}

// RemoveFriend godoc
// @Summary      Remove friend
// @Description  Removes a user from the caller's friends. Fails with a conflict if the two are not currently friends.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]string "{"message": "Friend removed"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Not currently friends"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/remove [post]
func RemoveFriend(c *gin.Context) {
	viewerID := c.GetUint("userID")
	target, ok := relationTarget(c)
	if !ok {
		return
	}

	if err := relStore.RemoveFriend(c.Request.Context(), viewerID, target.ID); err != nil {
		relationError(c, err)
		return
	}

	eventHub.Notify(target.ID, hub.Event{Type: hub.EventFriendRemoved, Payload: gin.H{"user_id": viewerID}})
	c.JSON(http.StatusOK, gin.H{"message": "Friend removed"})
}

// BlockUser godoc
// @Summary      Block user
// @Description  Blocks another user from any prior state, discarding any pending request or friendship. Blocking twice is a no-op.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]string "{"message": "User blocked"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/block [post]
func BlockUser(c *gin.Context) {
	viewerID := c.GetUint("userID")
	target, ok := relationTarget(c)
	if !ok {
		return
	}

	if err := relStore.BlockUser(c.Request.Context(), viewerID, target.ID); err != nil {
		relationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User blocked"})
}

// UnblockUser godoc
// @Summary      Unblock user
// @Description  Lifts a block the caller imposed. The pair returns to no relationship, not to its prior state. Only the blocker may unblock.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]string "{"message": "User unblocked"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Caller is the blocked party"
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/unblock [post]
func UnblockUser(c *gin.Context) {
	viewerID := c.GetUint("userID")
	target, ok := relationTarget(c)
	if !ok {
		return
	}

	if err := relStore.UnblockUser(c.Request.Context(), viewerID, target.ID); err != nil {
		relationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User unblocked"})
}

// region --- List reads ---

func listResponse(c *gin.Context, users []models.User, err error, class string) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch relations"})
		return
	}

	responses := make([]PublicUserResponse, 0, len(users))
	for _, user := range users {
		res := buildPublicUserResponse(user)
		res.Relationship = class
		responses = append(responses, res)
	}
	c.JSON(http.StatusOK, responses)
}

// GetFriends godoc
// @Summary      List friends
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   PublicUserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/friends [get]
func GetFriends(c *gin.Context) {
	viewerID := c.GetUint("userID")
	users, err := relStore.ListFriends(c.Request.Context(), viewerID)
	listResponse(c, users, err, relationship.ClassFriend)
}

// GetPendingRequests godoc
// @Summary      List incoming friend requests
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   PublicUserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/friends/pending [get]
func GetPendingRequests(c *gin.Context) {
	viewerID := c.GetUint("userID")
	users, err := relStore.ListPending(c.Request.Context(), viewerID)
	listResponse(c, users, err, relationship.ClassPending)
}

// GetSentRequests godoc
// @Summary      List sent friend requests
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   PublicUserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/friends/sent [get]
func GetSentRequests(c *gin.Context) {
	viewerID := c.GetUint("userID")
	users, err := relStore.ListSent(c.Request.Context(), viewerID)
	listResponse(c, users, err, relationship.ClassSent)
}

// GetBlockedUsers godoc
// @Summary      List blocked users
// @Description  Lists users the caller has blocked. Users who blocked the caller are never disclosed.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   PublicUserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/friends/blocked [get]
func GetBlockedUsers(c *gin.Context) {
	viewerID := c.GetUint("userID")
	users, err := relStore.ListBlocked(c.Request.Context(), viewerID)
	listResponse(c, users, err, relationship.ClassNone)
}

// endregion
