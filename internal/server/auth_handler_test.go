package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-builder/internal/types"
)

func TestRegister(t *testing.T) {
	ts := newTestServer(t, testServerOptions{})

	w := ts.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name": "Ada", "email": "Ada@Example.com", "password": "correct-horse",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &resp))
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.NotContains(t, w.Body.String(), "password")

	stored, err := ts.db.GetUser(context.Background(), resp.User.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "correct-horse", stored.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := newTestServer(t, testServerOptions{})
	ts.register(t, "dup@example.com")

	w := ts.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name": "Other", "email": "DUP@example.com", "password": "another-pass",
	}, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decodeFailure(t, w).Message, "dup@example.com")
}

func TestRegister_Validation(t *testing.T) {
	ts := newTestServer(t, testServerOptions{})

	tests := []struct {
		name string
		body map[string]string
	}{
		{name: "short password", body: map[string]string{"name": "A", "email": "a@example.com", "password": "short"}},
		{name: "bad email", body: map[string]string{"name": "A", "email": "not-an-email", "password": "long-enough"}},
		{name: "missing name", body: map[string]string{"email": "a@example.com", "password": "long-enough"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/v1/auth/register", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeFailure(t, w).Message, "validation error")
		})
	}
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t, testServerOptions{})
	_, userID := ts.register(t, "login@example.com")

	w := ts.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "login@example.com", "password": "correct-horse",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &resp))
	assert.Equal(t, userID, resp.User.ID)

	claims, err := ts.jwtService.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ts := newTestServer(t, testServerOptions{})
	ts.register(t, "known@example.com")

	for _, body := range []map[string]string{
		{"email": "known@example.com", "password": "wrong-password"},
		{"email": "unknown@example.com", "password": "correct-horse"},
	} {
		w := ts.do(t, http.MethodPost, "/api/v1/auth/login", body, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid email or password", decodeFailure(t, w).Message)
	}
}

func TestAuthEndpoints_DisabledWithoutDatabase(t *testing.T) {
	ts := newTestServer(t, testServerOptions{noDB: true})

	w := ts.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "a@example.com", "password": "whatever1",
	}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decodeFailure(t, w).Message, "user accounts")
}
