package domain

import (
	"context"
	"crypto/rsa"
	"time"
)

// TokenService defines the credential-issuance surface consumed by callers.
// This allows for easier mocking in tests.
type TokenService interface {
	// Initialize loads the key material exactly once and moves the service
	// to ready, or to a terminal failed state.
	Initialize(ctx context.Context) error
	// IssueTokenPair signs a fresh access/refresh pair for the identity
	IssueTokenPair(ctx context.Context, identity Identity) (*TokenPair, error)
	// VerifyAccessToken verifies signature, type, expiry and revocation
	VerifyAccessToken(ctx context.Context, tokenString string) (*Claims, error)
	// Refresh rotates a refresh token: the presented token is invalidated
	// and a brand-new pair is issued
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	// Revoke invalidates a token identifier until its natural expiry
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	// State reports the current lifecycle state
	State() ServiceState
	// PublicKey exposes the verification key for external verifiers
	PublicKey() *rsa.PublicKey
	// JWKS returns the verification key in JWK set form
	JWKS() (map[string]interface{}, error)
}

// RevocationRegistry tracks invalidated token identifiers until expiry
type RevocationRegistry interface {
	// Record inserts a jti. It reports whether this call was the first to
	// record it, atomically per jti, which makes it usable as a single-use
	// claim during refresh rotation. Recording is idempotent.
	Record(ctx context.Context, jti string, expiresAt time.Time) (bool, error)
	// IsRevoked checks whether a jti is currently revoked
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
