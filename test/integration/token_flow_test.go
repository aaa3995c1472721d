package integration

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/findbi/token-service/internal/application"
	"github.com/findbi/token-service/internal/domain"
	"github.com/findbi/token-service/internal/infrastructure/config"
	"github.com/findbi/token-service/internal/infrastructure/keys"
	"github.com/findbi/token-service/internal/infrastructure/revocation"
)

// setupService wires the whole stack the way cmd/ does: key material arrives
// through environment variables in the escaped single-line form, configuration
// is loaded from the environment, and the registry comes from the factory.
func setupService(t *testing.T) *application.TokenService {
	t.Helper()

	pair, err := keys.Generate(2048)
	require.NoError(t, err)

	publicPEM, err := keys.EncodePublicPEM(pair.Public)
	require.NoError(t, err)

	t.Setenv("JWT_PRIVATE_KEY", strings.ReplaceAll(keys.EncodePrivatePEM(pair.Private), "\n", `\n`))
	t.Setenv("JWT_PUBLIC_KEY", strings.ReplaceAll(publicPEM, "\n", `\n`))
	t.Setenv("JWT_ACCESS_TOKEN_DURATION", "15m")
	t.Setenv("JWT_REFRESH_TOKEN_DURATION", "168h")
	t.Setenv("REVOCATION_BACKEND", "memory")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	ctx := context.Background()
	registry, cleanup, err := revocation.New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	svc := application.NewTokenService(cfg, registry, zap.NewNop())
	require.NoError(t, svc.Initialize(ctx))
	require.Equal(t, domain.StateReady, svc.State())

	return svc
}

// tokenExpiry reads the exp claim straight from the payload segment, so the
// refresh token's lifetime can be checked without spending it.
func tokenExpiry(t *testing.T, tokenString string) time.Time {
	t.Helper()

	parts := strings.Split(tokenString, ".")
	require.Len(t, parts, 3)

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var claims struct {
		Exp int64 `json:"exp"`
	}
	require.NoError(t, json.Unmarshal(payload, &claims))
	return time.Unix(claims.Exp, 0)
}

func TestTokenFlow(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	identity := domain.Identity{
		ID:    "u1",
		Email: "a@b.com",
		Role:  domain.RoleEditor,
	}

	pair, err := svc.IssueTokenPair(ctx, identity)
	require.NoError(t, err)

	t.Run("access token carries the identity", func(t *testing.T) {
		claims, err := svc.VerifyAccessToken(ctx, pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, identity.ID, claims.Subject)
		assert.Equal(t, identity.Email, claims.Email)
		assert.Equal(t, identity.Role, claims.Role)
		assert.Equal(t, domain.TokenTypeAccess, claims.TokenType)
	})

	t.Run("lifetimes follow configuration", func(t *testing.T) {
		claims, err := svc.VerifyAccessToken(ctx, pair.AccessToken)
		require.NoError(t, err)

		accessTTL := time.Until(claims.ExpiresAt.Time)
		assert.Greater(t, accessTTL, 14*time.Minute)
		assert.LessOrEqual(t, accessTTL, 15*time.Minute)

		refreshTTL := time.Until(tokenExpiry(t, pair.RefreshToken))
		assert.Greater(t, refreshTTL, 167*time.Hour)
		assert.LessOrEqual(t, refreshTTL, 168*time.Hour)
	})

	t.Run("refresh rotates and retires the old token", func(t *testing.T) {
		rotated, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

		claims, err := svc.VerifyAccessToken(ctx, rotated.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, identity.ID, claims.Subject)

		_, err = svc.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrTokenRevoked)

		pair = rotated
	})

	t.Run("revocation takes effect immediately", func(t *testing.T) {
		claims, err := svc.VerifyAccessToken(ctx, pair.AccessToken)
		require.NoError(t, err)

		require.NoError(t, svc.Revoke(ctx, claims.ID, claims.ExpiresAt.Time))

		_, err = svc.VerifyAccessToken(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, domain.ErrTokenRevoked)
	})

	t.Run("jwks matches the loaded key", func(t *testing.T) {
		jwks, err := svc.JWKS()
		require.NoError(t, err)

		set, ok := jwks["keys"].([]map[string]interface{})
		require.True(t, ok)
		require.Len(t, set, 1)
		assert.Equal(t, keys.KeyID(svc.PublicKey()), set[0]["kid"])
	})
}

func TestTokenFlowRejectsForeignTokens(t *testing.T) {
	svc := setupService(t)
	other := setupService(t)
	ctx := context.Background()

	pair, err := other.IssueTokenPair(ctx, domain.Identity{
		ID:    "u2",
		Email: "c@d.com",
		Role:  domain.RoleViewer,
	})
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrTokenSignature)
}
