package token

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/findbi/token-service/internal/domain"
	"github.com/findbi/token-service/internal/infrastructure/keys"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()

	pair, err := keys.Generate(2048)
	require.NoError(t, err)

	return NewCodec(pair, zap.NewNop())
}

func testClaims(tokenType domain.TokenType, ttl time.Duration) *domain.Claims {
	now := time.Now()
	return &domain.Claims{
		Email:     "a@b.com",
		Role:      domain.RoleViewer,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ID:        ulid.Make().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	claims := testClaims(domain.TokenTypeAccess, 15*time.Minute)
	signed, err := codec.Encode(claims)
	require.NoError(t, err)
	assert.Len(t, strings.Split(signed, "."), 3)

	decoded, err := codec.Decode(signed)
	require.NoError(t, err)
	assert.Equal(t, claims.Subject, decoded.Subject)
	assert.Equal(t, claims.Email, decoded.Email)
	assert.Equal(t, claims.Role, decoded.Role)
	assert.Equal(t, claims.TokenType, decoded.TokenType)
	assert.Equal(t, claims.ID, decoded.ID)
}

func TestCodec_KeyIDHeader(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.Encode(testClaims(domain.TokenTypeAccess, time.Minute))
	require.NoError(t, err)

	headerJSON, err := base64.RawURLEncoding.DecodeString(strings.Split(signed, ".")[0])
	require.NoError(t, err)

	var header map[string]interface{}
	require.NoError(t, json.Unmarshal(headerJSON, &header))
	assert.Equal(t, "RS256", header["alg"])
	assert.Equal(t, codec.pair.KeyID, header["kid"])
}

func TestCodec_ExpiredTokenStillDecodes(t *testing.T) {
	// Expiry is policy, owned by the service layer; the codec only cares
	// about structure and signature.
	codec := newTestCodec(t)

	signed, err := codec.Encode(testClaims(domain.TokenTypeAccess, -time.Minute))
	require.NoError(t, err)

	decoded, err := codec.Decode(signed)
	require.NoError(t, err)
	assert.True(t, decoded.Expired(time.Now()))
}

func TestCodec_Malformed(t *testing.T) {
	codec := newTestCodec(t)

	for _, tokenString := range []string{
		"",
		"garbage",
		"only.two",
		"a.b.c.d",
		"!!!.###.$$$",
	} {
		_, err := codec.Decode(tokenString)
		require.Error(t, err, "token %q", tokenString)
		assert.ErrorIs(t, err, domain.ErrTokenMalformed, "token %q", tokenString)
	}
}

func TestCodec_TamperedPayload(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.Encode(testClaims(domain.TokenTypeAccess, 15*time.Minute))
	require.NoError(t, err)

	parts := strings.Split(signed, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	// Change a claim value without re-signing
	tampered := strings.Replace(string(payload), "a@b.com", "evil@b.com", 1)
	require.NotEqual(t, string(payload), tampered)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(tampered))

	_, err = codec.Decode(strings.Join(parts, "."))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTokenSignature)
}

func TestCodec_TamperedSignature(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.Encode(testClaims(domain.TokenTypeAccess, 15*time.Minute))
	require.NoError(t, err)

	t.Run("changed signature bytes", func(t *testing.T) {
		// The first character carries the top six bits of the signature, so
		// replacing it always changes the decoded bytes.
		start := strings.LastIndex(signed, ".") + 1
		flipped := "A"
		if signed[start] == 'A' {
			flipped = "B"
		}
		tampered := signed[:start] + flipped + signed[start+1:]

		_, err := codec.Decode(tampered)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrTokenSignature)
	})

	t.Run("non-canonical trailing bits", func(t *testing.T) {
		// The final character of an RS256 signature carries only two
		// significant bits. Flipping a padding bit yields a different string
		// that decodes to the same signature bytes; strict decoding must
		// reject it rather than silently accept the altered token.
		const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
		last := signed[len(signed)-1]
		swapped := alphabet[strings.IndexByte(alphabet, last)^1]
		require.NotEqual(t, last, swapped)
		tampered := signed[:len(signed)-1] + string(swapped)

		_, err := codec.Decode(tampered)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrTokenMalformed)
	})
}

func TestCodec_ForeignKey(t *testing.T) {
	codec := newTestCodec(t)
	other := newTestCodec(t)

	signed, err := other.Encode(testClaims(domain.TokenTypeAccess, 15*time.Minute))
	require.NoError(t, err)

	_, err = codec.Decode(signed)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTokenSignature)
}

func TestCodec_AlgorithmPinning(t *testing.T) {
	codec := newTestCodec(t)

	t.Run("alg none", func(t *testing.T) {
		header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
		payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"u1","type":"access"}`))

		_, err := codec.Decode(header + "." + payload + ".")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrTokenSignature)
	})

	t.Run("alg hs256", func(t *testing.T) {
		// An attacker signing with the public key material as an HMAC secret
		hmacToken := jwt.NewWithClaims(jwt.SigningMethodHS256, testClaims(domain.TokenTypeAccess, time.Minute))
		signed, err := hmacToken.SignedString([]byte("shared-secret"))
		require.NoError(t, err)

		_, err = codec.Decode(signed)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrTokenSignature)
	})
}
