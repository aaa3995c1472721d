package token

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/findbi/token-service/internal/domain"
	"github.com/findbi/token-service/internal/infrastructure/keys"
)

// Codec builds and parses compact signed token strings. It owns only the wire
// format and the signature; claim policy (expiry, type, revocation) belongs to
// the token service.
type Codec struct {
	pair   *keys.Pair
	logger *zap.Logger
}

// NewCodec creates a codec bound to a loaded key pair
func NewCodec(pair *keys.Pair, logger *zap.Logger) *Codec {
	return &Codec{
		pair:   pair,
		logger: logger,
	}
}

// Encode serializes the claims into a signed RS256 token string
func (c *Codec) Encode(claims *domain.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = c.pair.KeyID

	signed, err := token.SignedString(c.pair.Private)
	if err != nil {
		c.logger.Error("failed to sign token",
			zap.Error(err),
			zap.String("token_id", claims.ID))
		return "", domain.ErrTokenGeneration.WithDetails(err)
	}
	return signed, nil
}

// Decode parses a token string and verifies its signature. The expected
// algorithm is pinned: a header declaring "none" or any non-RSA method is
// rejected before the key is ever consulted. Claim validation is skipped
// here so that expired tokens still surface their claims to the policy layer.
// Base64 decoding is strict: a segment with non-canonical trailing bits would
// otherwise decode to the same bytes as the original and slip past signature
// verification.
func (c *Codec) Decode(tokenString string) (*domain.Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithoutClaimsValidation(),
		jwt.WithStrictDecoding(),
	)

	token, err := parser.ParseWithClaims(tokenString, &domain.Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, domain.ErrTokenSignature
		}
		return c.pair.Public, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, domain.ErrTokenMalformed.WithDetails(err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			c.logger.Warn("token signature verification failed", zap.Error(err))
			return nil, domain.ErrTokenSignature.WithDetails(err)
		default:
			return nil, domain.ErrTokenMalformed.WithDetails(err)
		}
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrTokenMalformed
	}
	return claims, nil
}
