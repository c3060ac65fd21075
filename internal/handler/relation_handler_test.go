package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendRequestLifecycle(t *testing.T) {
	router := setupRouter(t)
	alice := createUser(t, "alice", 0)
	bob := createUser(t, "bob", 0)

	// Alice sends a request to Bob.
	w := doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/request", bob.ID), alice.Token, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// Bob's pending list contains Alice; Alice's sent list contains Bob.
	var pending []PublicUserResponse
	w = doRequest(t, router, http.MethodGet, "/api/v1/users/me/friends/pending", bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &pending)
	assert.Equal(t, []uint{alice.ID}, userIDs(pending))

	var sent []PublicUserResponse
	w = doRequest(t, router, http.MethodGet, "/api/v1/users/me/friends/sent", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &sent)
	assert.Equal(t, []uint{bob.ID}, userIDs(sent))

	// Bob accepts.
	w = doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/accept", alice.ID), bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Both friends lists contain each other, pending and sent are empty.
	var friends []PublicUserResponse
	w = doRequest(t, router, http.MethodGet, "/api/v1/users/me/friends", alice.Token, nil)
	decodeJSON(t, w, &friends)
	assert.Equal(t, []uint{bob.ID}, userIDs(friends))

	w = doRequest(t, router, http.MethodGet, "/api/v1/users/me/friends", bob.Token, nil)
	decodeJSON(t, w, &friends)
	assert.Equal(t, []uint{alice.ID}, userIDs(friends))

	w = doRequest(t, router, http.MethodGet, "/api/v1/users/me/friends/pending", bob.Token, nil)
	decodeJSON(t, w, &pending)
	assert.Empty(t, pending)

	w = doRequest(t, router, http.MethodGet, "/api/v1/users/me/friends/sent", alice.Token, nil)
	decodeJSON(t, w, &sent)
	assert.Empty(t, sent)
}

func TestMutualRequestCollapses(t *testing.T) {
	router := setupRouter(t)
	alice := createUser(t, "alice", 0)
	bob := createUser(t, "bob", 0)

	w := doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/request", bob.ID), alice.Token, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// Bob sends one back instead of accepting; both are now friends.
	w = doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/request", alice.ID), bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var friends []PublicUserResponse
	w = doRequest(t, router, http.MethodGet, "/api/v1/users/me/friends", alice.Token, nil)
	decodeJSON(t, w, &friends)
	assert.Equal(t, []uint{bob.ID}, userIDs(friends))
}

func TestSelfRequestRejected(t *testing.T) {
	router := setupRouter(t)
	alice := createUser(t, "alice", 0)

	w := doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/request", alice.ID), alice.Token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestToUnknownUser(t *testing.T) {
	router := setupRouter(t)
	alice := createUser(t, "alice", 0)

	w := doRequest(t, router, http.MethodPost, "/api/v1/users/9999/request", alice.Token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemoveFriendTwiceConflicts(t *testing.T) {
	router := setupRouter(t)
	alice := createUser(t, "alice", 0)
	bob := createUser(t, "bob", 0)

	doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/request", bob.ID), alice.Token, nil)
	doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/accept", alice.ID), bob.Token, nil)

	w := doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/remove", bob.ID), alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The second removal reports the state already changed.
	w = doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/remove", bob.ID), alice.Token, nil)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestBlockAndUnblock(t *testing.T) {
	router := setupRouter(t)
	alice := createUser(t, "alice", 0)
	bob := createUser(t, "bob", 0)

	// Friends first, then Alice blocks Bob.
	doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/request", bob.ID), alice.Token, nil)
	doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/accept", alice.ID), bob.Token, nil)

	w := doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/block", bob.ID), alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The friendship is gone for both sides.
	var friends []PublicUserResponse
	w = doRequest(t, router, http.MethodGet, "/api/v1/users/me/friends", bob.Token, nil)
	decodeJSON(t, w, &friends)
	assert.Empty(t, friends)

	var blocked []PublicUserResponse
	w = doRequest(t, router, http.MethodGet, "/api/v1/users/me/friends/blocked", alice.Token, nil)
	decodeJSON(t, w, &blocked)
	assert.Equal(t, []uint{bob.ID}, userIDs(blocked))

	// Bob, the blocked party, cannot unblock.
	w = doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/unblock", alice.ID), bob.Token, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	// Alice can, and the pair returns to no relationship.
	w = doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/unblock", bob.ID), alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/v1/users/me/friends", alice.Token, nil)
	decodeJSON(t, w, &friends)
	assert.Empty(t, friends)
}

func TestSearchClassifiesAndHidesBlocked(t *testing.T) {
	router := setupRouter(t)
	me := createUser(t, "hero", 0)
	friend := createUser(t, "player_friend", 0)
	stranger := createUser(t, "player_stranger", 0)
	enemy := createUser(t, "player_enemy", 0)

	doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/request", friend.ID), me.Token, nil)
	doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/accept", me.ID), friend.Token, nil)
	doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/block", enemy.ID), me.Token, nil)

	var result PaginatedResponse[PublicUserResponse]
	w := doRequest(t, router, http.MethodGet, "/api/v1/users?q=player", me.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &result)

	classes := make(map[uint]string)
	for _, u := range result.Data {
		classes[u.ID] = u.Relationship
	}
	assert.Equal(t, "friend", classes[friend.ID])
	assert.Equal(t, "none", classes[stranger.ID])
	assert.NotContains(t, classes, enemy.ID, "blocked users must be hidden from search")
}

func TestSearchRequiresMinimumQuery(t *testing.T) {
	router := setupRouter(t)
	me := createUser(t, "hero", 0)

	w := doRequest(t, router, http.MethodGet, "/api/v1/users?q=a", me.Token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
