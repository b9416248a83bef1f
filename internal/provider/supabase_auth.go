package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kickoff/fantasy/internal/domain"
)

// ErrRejected is returned when the auth service refuses a token or credentials.
var ErrRejected = errors.New("rejected by auth provider")

// SupabaseAuthClient talks to a GoTrue-compatible auth API.
type SupabaseAuthClient struct {
	baseURL string
	apiKey  string
	logger  *slog.Logger
	client  *http.Client
}

// NewSupabaseAuthClient creates a client for the project at baseURL.
func NewSupabaseAuthClient(baseURL, apiKey string, logger *slog.Logger) *SupabaseAuthClient {
	return &SupabaseAuthClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type gotrueUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	AppMetadata struct {
		IsAdmin bool `json:"is_admin"`
	} `json:"app_metadata"`
}

func (u gotrueUser) identity() *domain.Identity {
	return &domain.Identity{ID: u.ID, Email: u.Email, IsAdmin: u.AppMetadata.IsAdmin}
}

// GetUser resolves an access token to the identity it was issued for.
func (c *SupabaseAuthClient) GetUser(ctx context.Context, token string) (*domain.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var user gotrueUser
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: user has no id", ErrRejected)
	}
	return user.identity(), nil
}

// SignInWithPassword exchanges email and password for a session and returns its user.
func (c *SupabaseAuthClient) SignInWithPassword(ctx context.Context, email, password string) (*domain.Identity, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/v1/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var session struct {
		AccessToken string     `json:"access_token"`
		User        gotrueUser `json:"user"`
	}
	if err := c.do(req, &session); err != nil {
		return nil, err
	}
	if session.User.ID == "" {
		return nil, fmt.Errorf("%w: session has no user", ErrRejected)
	}
	return session.User.identity(), nil
}

func (c *SupabaseAuthClient) do(req *http.Request, out interface{}) error {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("auth api call: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusNotFound:
		var apiErr struct {
			Error     string `json:"error"`
			ErrorDesc string `json:"error_description"`
			Msg       string `json:"msg"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		c.logger.Debug("auth provider rejected request",
			"status", resp.StatusCode, "error", apiErr.Error, "description", apiErr.ErrorDesc, "msg", apiErr.Msg)
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	default:
		return fmt.Errorf("auth api returned %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
