//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/kickoff/fantasy/internal/domain"
	"github.com/kickoff/fantasy/internal/provider"
)

// Accounts is an in-process stand-in for the identity provider's password grant.
type Accounts struct {
	mu    sync.Mutex
	creds map[string]accountEntry
}

type accountEntry struct {
	password string
	identity domain.Identity
}

func NewAccounts() *Accounts {
	return &Accounts{creds: make(map[string]accountEntry)}
}

// Add registers credentials that SignInWithPassword will accept.
func (a *Accounts) Add(id, email, password string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.creds[email] = accountEntry{password: password, identity: domain.Identity{ID: id, Email: email}}
}

func (a *Accounts) SignInWithPassword(_ context.Context, email, password string) (*domain.Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	entry, ok := a.creds[email]
	if !ok || entry.password != password {
		return nil, fmt.Errorf("%w: invalid login credentials", provider.ErrRejected)
	}
	identity := entry.identity
	return &identity, nil
}

// Token mints a bearer token for userID.
func (env *TestEnv) Token(userID string, admin bool) string {
	env.t.Helper()
	token, err := env.JWTMgr.GenerateToken(userID, userID+"@example.com", admin)
	if err != nil {
		env.t.Fatalf("Token: %v", err)
	}
	return token
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodGet, path, nil, "")
}

// POST performs a POST request with optional auth token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodPost, path, body, token)
}

// PUT performs a PUT request with optional auth token.
func (env *TestEnv) PUT(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodPut, path, body, token)
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodGet, path, nil, token)
}

// Do sends a request to the test server. A string body is sent verbatim.
func (env *TestEnv) Do(method, path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}
