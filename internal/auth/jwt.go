package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Audience is the audience GoTrue stamps on user access tokens.
const Audience = "authenticated"

// AppMetadata mirrors the provider-controlled app_metadata claim.
type AppMetadata struct {
	IsAdmin bool `json:"is_admin,omitempty"`
}

// Claims holds the access-token claims issued by the identity provider.
type Claims struct {
	jwt.RegisteredClaims
	Email       string      `json:"email,omitempty"`
	Role        string      `json:"role,omitempty"`
	IsAdmin     bool        `json:"is_admin,omitempty"`
	AppMetadata AppMetadata `json:"app_metadata"`
}

// Admin reports whether either admin claim is set.
func (c *Claims) Admin() bool {
	return c.IsAdmin || c.AppMetadata.IsAdmin
}

// JWTManager signs and verifies HS256 access tokens with the project's JWT secret.
type JWTManager struct {
	secret []byte
	expiry time.Duration
}

// NewJWTManager creates a JWT manager. expiry only applies to generated tokens.
func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), expiry: expiry}
}

// GenerateToken creates a signed access token for subject. Used by fantasyctl and tests.
func (m *JWTManager) GenerateToken(subject, email string, isAdmin bool) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			ID:        uuid.New().String(),
		},
		Email:       email,
		Role:        Audience,
		AppMetadata: AppMetadata{IsAdmin: isAdmin},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates a JWT, returning claims if valid.
// Only user access tokens (aud "authenticated") are accepted.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithAudience(Audience))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	return claims, nil
}
