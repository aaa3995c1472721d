package domain

import (
	apperrors "github.com/findbi/token-service/internal/domain/errors"
)

var (
	// ErrInvalidKeyMaterial is returned when key material cannot be parsed
	ErrInvalidKeyMaterial = apperrors.New(apperrors.KeyMaterialError, "invalid signing key material")

	// ErrKeyPairMismatch is returned when the private and public keys do not form a pair
	ErrKeyPairMismatch = apperrors.New(apperrors.KeyMismatchError, "private and public keys do not match")

	// ErrServiceNotReady is returned when an operation is attempted before successful initialization
	ErrServiceNotReady = apperrors.New(apperrors.NotReadyError, "token service is not ready")

	// ErrAlreadyInitialized is returned when Initialize is called more than once
	ErrAlreadyInitialized = apperrors.New(apperrors.AlreadyInitializedError, "token service already initialized")

	// ErrTokenMalformed is returned when a token is structurally invalid
	ErrTokenMalformed = apperrors.New(apperrors.MalformedTokenError, "token is malformed")

	// ErrTokenSignature is returned when a token signature does not verify
	ErrTokenSignature = apperrors.New(apperrors.SignatureError, "token signature is invalid")

	// ErrTokenExpired is returned when a token is past its expiry
	ErrTokenExpired = apperrors.New(apperrors.ExpiredTokenError, "token has expired")

	// ErrWrongTokenType is returned when a token is presented in the wrong slot
	ErrWrongTokenType = apperrors.New(apperrors.TokenTypeError, "unexpected token type")

	// ErrTokenRevoked is returned when a token identifier has been invalidated
	ErrTokenRevoked = apperrors.New(apperrors.RevokedTokenError, "token has been revoked")

	// ErrTokenGeneration is returned when signing a token fails
	ErrTokenGeneration = apperrors.New(apperrors.GenerationError, "failed to generate token")

	// ErrInvalidIdentity is returned when an identity is missing required fields
	ErrInvalidIdentity = apperrors.New(apperrors.IdentityError, "invalid identity")

	// ErrRevocationUnavailable is returned when the revocation registry cannot be reached
	ErrRevocationUnavailable = apperrors.New(apperrors.RevocationStoreError, "revocation registry unavailable")
)
