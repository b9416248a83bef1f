package provider

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *SupabaseAuthClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewSupabaseAuthClient(srv.URL+"/", "service-key", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGetUser_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u-1","email":"jane@example.com","app_metadata":{"is_admin":true}}`))
	})

	id, err := client.GetUser(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, "u-1", id.ID)
	assert.Equal(t, "jane@example.com", id.Email)
	assert.True(t, id.IsAdmin)
}

func TestGetUser_Rejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
	})

	_, err := client.GetUser(context.Background(), "bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)
}

func TestGetUser_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetUser(context.Background(), "token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "502")
}

func TestGetUser_MissingID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"email":"x@example.com"}`))
	})

	_, err := client.GetUser(context.Background(), "token")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestSignInWithPassword_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "jane@example.com", body["email"])
		assert.Equal(t, "hunter2", body["password"])

		_, _ = w.Write([]byte(`{"access_token":"tok","user":{"id":"u-1","email":"jane@example.com"}}`))
	})

	id, err := client.SignInWithPassword(context.Background(), "jane@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "u-1", id.ID)
	assert.False(t, id.IsAdmin)
}

func TestSignInWithPassword_InvalidCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	})

	_, err := client.SignInWithPassword(context.Background(), "jane@example.com", "wrong")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestSignInWithPassword_Unreachable(t *testing.T) {
	client := NewSupabaseAuthClient("http://127.0.0.1:1", "key", slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.SignInWithPassword(context.Background(), "a@b.c", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRejected)
}
