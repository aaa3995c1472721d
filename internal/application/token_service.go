package application

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/binary"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/findbi/token-service/internal/domain"
	"github.com/findbi/token-service/internal/infrastructure/config"
	"github.com/findbi/token-service/internal/infrastructure/keys"
	"github.com/findbi/token-service/internal/infrastructure/token"
)

// TokenService issues and verifies signed token pairs. It starts
// uninitialized; Initialize loads key material exactly once and moves it to
// ready, or to a terminal failed state. Every other operation is rejected
// until the service is ready.
type TokenService struct {
	cfg      *config.Config
	registry domain.RevocationRegistry
	logger   *zap.Logger

	mu      sync.RWMutex
	state   domain.ServiceState
	failure error
	pair    *keys.Pair
	codec   *token.Codec
}

var _ domain.TokenService = (*TokenService)(nil)

// NewTokenService creates an uninitialized service. The registry is required:
// logout and refresh rotation are not correct without one.
func NewTokenService(cfg *config.Config, registry domain.RevocationRegistry, logger *zap.Logger) *TokenService {
	return &TokenService{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
		state:    domain.StateUninitialized,
	}
}

// Initialize loads the configured key material. It runs at most once per
// process: callers racing with it block on the state lock until the outcome
// is decided, so no operation ever observes partially loaded keys.
func (s *TokenService) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case domain.StateReady:
		return domain.ErrAlreadyInitialized
	case domain.StateFailed:
		// Terminal; only a process restart recovers.
		return domain.ErrServiceNotReady.WithDetails(s.failure)
	}

	pair, err := keys.Load(s.cfg.JWTPrivateKey, s.cfg.JWTPublicKey)
	if err != nil {
		s.state = domain.StateFailed
		s.failure = err
		s.logger.Error("failed to load signing keys", zap.Error(err))
		return err
	}

	s.pair = pair
	s.codec = token.NewCodec(pair, s.logger)
	s.state = domain.StateReady

	s.logger.Info("token service ready",
		zap.String("key_id", pair.KeyID),
		zap.Duration("access_ttl", s.cfg.JWTAccessDuration),
		zap.Duration("refresh_ttl", s.cfg.JWTRefreshDuration))
	return nil
}

// State reports the current lifecycle state
func (s *TokenService) State() domain.ServiceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ready returns the codec if the service is ready. The read lock also
// serializes against a concurrently running Initialize.
func (s *TokenService) ready() (*token.Codec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != domain.StateReady {
		return nil, domain.ErrServiceNotReady
	}
	return s.codec, nil
}

// IssueTokenPair signs a short-lived access token and a long-lived refresh
// token for the identity, each with a fresh unique jti
func (s *TokenService) IssueTokenPair(ctx context.Context, identity domain.Identity) (*domain.TokenPair, error) {
	codec, err := s.ready()
	if err != nil {
		return nil, err
	}

	if err := identity.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()

	accessID := ulid.Make().String()
	accessToken, err := codec.Encode(newClaims(identity, domain.TokenTypeAccess, accessID, now, s.cfg.JWTAccessDuration))
	if err != nil {
		s.logger.Error("failed to issue access token",
			zap.Error(err),
			zap.String("subject", identity.ID))
		return nil, err
	}

	refreshID := ulid.Make().String()
	refreshToken, err := codec.Encode(newClaims(identity, domain.TokenTypeRefresh, refreshID, now, s.cfg.JWTRefreshDuration))
	if err != nil {
		s.logger.Error("failed to issue refresh token",
			zap.Error(err),
			zap.String("subject", identity.ID))
		return nil, err
	}

	s.logger.Debug("issued token pair",
		zap.String("subject", identity.ID),
		zap.String("access_token_id", accessID),
		zap.String("refresh_token_id", refreshID))

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// VerifyAccessToken verifies signature and structure, then applies policy:
// the token must be an access token, unexpired, and not revoked
func (s *TokenService) VerifyAccessToken(ctx context.Context, tokenString string) (*domain.Claims, error) {
	return s.verifyToken(ctx, tokenString, domain.TokenTypeAccess)
}

// Refresh rotates a refresh token: the presented token is claimed in the
// registry (single use) and a brand-new pair is issued. A second refresh of
// the same token fails as revoked, which may indicate token theft.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.verifyToken(ctx, refreshToken, domain.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	first, err := s.registry.Record(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		s.logger.Error("revocation registry unavailable during refresh",
			zap.Error(err),
			zap.String("token_id", claims.ID))
		return nil, domain.ErrRevocationUnavailable.WithDetails(err)
	}
	if !first {
		// Someone else rotated this token between our revocation check and
		// the claim. Replay of an already-rotated refresh token.
		s.logger.Warn("refresh token replay detected",
			zap.String("token_id", claims.ID),
			zap.String("subject", claims.Subject))
		return nil, domain.ErrTokenRevoked
	}

	return s.IssueTokenPair(ctx, claims.Identity())
}

// Revoke invalidates a token identifier until its natural expiry. Idempotent.
func (s *TokenService) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if _, err := s.ready(); err != nil {
		return err
	}

	if _, err := s.registry.Record(ctx, jti, expiresAt); err != nil {
		s.logger.Error("failed to record revocation",
			zap.Error(err),
			zap.String("token_id", jti))
		return domain.ErrRevocationUnavailable.WithDetails(err)
	}

	s.logger.Info("token revoked", zap.String("token_id", jti))
	return nil
}

// PublicKey exposes the verification key, or nil before initialization
func (s *TokenService) PublicKey() *rsa.PublicKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != domain.StateReady {
		return nil
	}
	return s.pair.Public
}

// JWKS returns the verification key as a JWK set for external verifiers.
// Each call builds a fresh document from the immutable key pair, so callers
// may mutate the result without affecting other callers.
func (s *TokenService) JWKS() (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != domain.StateReady {
		return nil, domain.ErrServiceNotReady
	}
	return buildJWKS(s.pair), nil
}

func (s *TokenService) verifyToken(ctx context.Context, tokenString string, want domain.TokenType) (*domain.Claims, error) {
	codec, err := s.ready()
	if err != nil {
		return nil, err
	}

	claims, err := codec.Decode(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.ExpiresAt == nil || claims.Subject == "" || claims.ID == "" {
		return nil, domain.ErrTokenMalformed
	}

	if claims.TokenType != want {
		return nil, domain.ErrWrongTokenType
	}

	if claims.Expired(time.Now()) {
		return nil, domain.ErrTokenExpired
	}

	revoked, err := s.registry.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.Error("revocation lookup failed",
			zap.Error(err),
			zap.String("token_id", claims.ID))
		return nil, domain.ErrRevocationUnavailable.WithDetails(err)
	}
	if revoked {
		s.logger.Warn("revoked token presented",
			zap.String("token_id", claims.ID),
			zap.String("subject", claims.Subject))
		return nil, domain.ErrTokenRevoked
	}

	return claims, nil
}

func newClaims(identity domain.Identity, tokenType domain.TokenType, jti string, now time.Time, ttl time.Duration) *domain.Claims {
	return &domain.Claims{
		Email:     identity.Email,
		Role:      identity.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// buildJWKS converts the RSA public key to a JWK set document
func buildJWKS(pair *keys.Pair) map[string]interface{} {
	modulus := base64.RawURLEncoding.EncodeToString(pair.Public.N.Bytes())

	eBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(eBytes, uint32(pair.Public.E))
	exponent := base64.RawURLEncoding.EncodeToString(bytes.TrimLeft(eBytes, "\x00"))

	return map[string]interface{}{
		"keys": []map[string]interface{}{
			{
				"kty": "RSA",
				"use": "sig",
				"kid": pair.KeyID,
				"alg": "RS256",
				"n":   modulus,
				"e":   exponent,
			},
		},
	}
}
