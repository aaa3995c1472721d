package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType distinguishes access tokens from refresh tokens
type TokenType string

const (
	// TokenTypeAccess marks a short-lived token authorizing API calls
	TokenTypeAccess TokenType = "access"
	// TokenTypeRefresh marks a long-lived token used only to obtain a new pair
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the set of assertions embedded in a signed token.
// Subject carries the identity ID, ID (jti) the unique token identifier.
type Claims struct {
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	TokenType TokenType `json:"type"`
	jwt.RegisteredClaims
}

// Expired reports whether the token is past its expiry at the given instant
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt == nil || !now.Before(c.ExpiresAt.Time)
}

// Identity rebuilds the identity subset carried by the claims
func (c *Claims) Identity() Identity {
	return Identity{
		ID:    c.Subject,
		Email: c.Email,
		Role:  c.Role,
	}
}

// TokenPair represents a pair of access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ServiceState is the lifecycle state of the token service
type ServiceState int

const (
	// StateUninitialized is the state before Initialize has been called
	StateUninitialized ServiceState = iota
	// StateReady is the state after keys loaded successfully
	StateReady
	// StateFailed is the terminal state after a failed initialization
	StateFailed
)

// String returns a human readable state name
func (s ServiceState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
