package server

import (
	"net/http"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	app, _ := setupTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "ada",
		"password": "a-fine-password",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Token string                 `json:"token"`
		User  map[string]interface{} `json:"user"`
	}
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "ada", body.User["username"])
	assert.NotContains(t, body.User, "password_hash", "credentials never leave the server")

	// Same username again
	resp = doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "ada",
		"password": "another-password",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestRegisterValidation(t *testing.T) {
	app, _ := setupTestApp(t)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"missing username", map[string]string{"password": "a-fine-password"}},
		{"missing password", map[string]string{"username": "ada"}},
		{"username too short", map[string]string{"username": "ab", "password": "a-fine-password"}},
		{"username with spaces", map[string]string{"username": "a d a", "password": "a-fine-password"}},
		{"password too short", map[string]string{"username": "ada", "password": "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			_ = resp.Body.Close()
		})
	}
}

func TestLogin(t *testing.T) {
	app, _ := setupTestApp(t)
	registerUser(t, app, "ada")

	t.Run("success", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "ada",
			"password": "a-fine-password",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Token string `json:"token"`
		}
		decodeBody(t, resp, &body)
		assert.NotEmpty(t, body.Token)
	})

	t.Run("wrong password and unknown user look alike", func(t *testing.T) {
		var bodies [2]models.ErrorResponse
		for i, creds := range []map[string]string{
			{"username": "ada", "password": "wrong-password"},
			{"username": "ghost", "password": "a-fine-password"},
		} {
			resp := doJSON(t, app, http.MethodPost, "/api/auth/login", "", creds)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			decodeBody(t, resp, &bodies[i])
		}
		assert.Equal(t, bodies[0], bodies[1])
	})
}

func TestAuthStatus(t *testing.T) {
	app, srv := setupTestApp(t)
	token := registerUser(t, app, "ada")

	type statusBody struct {
		Authenticated bool    `json:"authenticated"`
		Username      *string `json:"username"`
	}

	t.Run("anonymous", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/auth/status", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body statusBody
		decodeBody(t, resp, &body)
		assert.False(t, body.Authenticated)
		assert.Nil(t, body.Username)
	})

	t.Run("garbage token is treated as anonymous", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/auth/status", "garbage", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body statusBody
		decodeBody(t, resp, &body)
		assert.False(t, body.Authenticated)
	})

	t.Run("authenticated", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/auth/status", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body statusBody
		decodeBody(t, resp, &body)
		assert.True(t, body.Authenticated)
		require.NotNil(t, body.Username)
		assert.Equal(t, "ada", *body.Username)
	})

	t.Run("token outliving the account", func(t *testing.T) {
		require.NoError(t, srv.db.Where("username = ?", "ada").Delete(&models.User{}).Error)

		resp := doJSON(t, app, http.MethodGet, "/api/auth/status", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body statusBody
		decodeBody(t, resp, &body)
		assert.False(t, body.Authenticated)
	})
}
