package auth

import (
	"context"
	"errors"

	"github.com/kickoff/fantasy/internal/domain"
)

// ErrNoToken is returned for an empty bearer token.
var ErrNoToken = errors.New("empty token")

// Resolver turns a bearer token into the caller's identity.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*domain.Identity, error)
}

// UserFetcher is the part of the auth provider client the ProviderResolver needs.
type UserFetcher interface {
	GetUser(ctx context.Context, token string) (*domain.Identity, error)
}

// ProviderResolver asks the identity provider about every token.
type ProviderResolver struct {
	users UserFetcher
}

// NewProviderResolver creates a resolver backed by the provider's user endpoint.
func NewProviderResolver(users UserFetcher) *ProviderResolver {
	return &ProviderResolver{users: users}
}

func (r *ProviderResolver) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	return r.users.GetUser(ctx, token)
}

// JWTResolver verifies provider-issued tokens locally with the shared secret.
type JWTResolver struct {
	jwt *JWTManager
}

// NewJWTResolver creates a resolver that never calls out to the provider.
func NewJWTResolver(mgr *JWTManager) *JWTResolver {
	return &JWTResolver{jwt: mgr}
}

func (r *JWTResolver) Resolve(_ context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	claims, err := r.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &domain.Identity{ID: claims.Subject, Email: claims.Email, IsAdmin: claims.Admin()}, nil
}
