package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginAndGetMe(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/auth/register", "", RegisterInput{
		Nickname: "newbie",
		Email:    "newbie@test.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Duplicate nickname is rejected.
	w = doRequest(t, router, http.MethodPost, "/api/v1/auth/register", "", RegisterInput{
		Nickname: "newbie",
		Email:    "other@test.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var login struct {
		Token string `json:"token"`
	}
	w = doRequest(t, router, http.MethodPost, "/api/v1/auth/login", "", LoginInput{
		Login:    "newbie",
		Password: "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &login)
	require.NotEmpty(t, login.Token)

	var me PrivateUserResponse
	w = doRequest(t, router, http.MethodGet, "/api/v1/users/me", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &me)
	assert.Equal(t, "newbie", me.Nickname)
	assert.Equal(t, 1, me.Level)
	assert.Equal(t, int64(0), me.XP)
}

func TestLoginWrongPassword(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/auth/register", "", RegisterInput{
		Nickname: "newbie",
		Email:    "newbie@test.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, router, http.MethodPost, "/api/v1/auth/login", "", LoginInput{
		Login:    "newbie",
		Password: "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetUserByIDShowsRelationship(t *testing.T) {
	router := setupRouter(t)
	me := createUser(t, "me", 0)
	other := createUser(t, "other", 250)

	w := doRequest(t, router, http.MethodPost, "/api/v1/users/"+itoa(other.ID)+"/request", me.Token, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var profile PublicUserResponse
	w = doRequest(t, router, http.MethodGet, "/api/v1/users/"+itoa(other.ID), me.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &profile)
	assert.Equal(t, "sent", profile.Relationship)
	assert.Equal(t, int64(250), profile.XP)

	// From the other side the same request reads as pending.
	w = doRequest(t, router, http.MethodGet, "/api/v1/users/"+itoa(me.ID), other.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &profile)
	assert.Equal(t, "pending", profile.Relationship)
}

func itoa(id uint) string {
	return fmt.Sprint(id)
}
