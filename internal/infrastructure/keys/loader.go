package keys

import (
	"bytes"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/binary"
	"encoding/pem"
	"errors"
	"strings"

	"github.com/findbi/token-service/internal/domain"
)

// Pair holds a loaded RSA key pair. Once loaded it is immutable and safe to
// share across goroutines without synchronization.
type Pair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
	KeyID   string
}

// Load parses PEM encoded private and public key strings into a usable pair.
// It is pure: no I/O, no retries, and malformed input fails deterministically.
// Keys that do not belong together fail here rather than surfacing later as
// unexplainable signature-verification failures.
func Load(rawPrivate, rawPublic string) (*Pair, error) {
	private, err := parsePrivateKey(NormalizePEM(rawPrivate))
	if err != nil {
		return nil, domain.ErrInvalidKeyMaterial.WithDetails(err)
	}

	public, err := parsePublicKey(NormalizePEM(rawPublic))
	if err != nil {
		return nil, domain.ErrInvalidKeyMaterial.WithDetails(err)
	}

	if !private.PublicKey.Equal(public) {
		return nil, domain.ErrKeyPairMismatch
	}

	return &Pair{
		Private: private,
		Public:  public,
		KeyID:   KeyID(public),
	}, nil
}

// NormalizePEM repairs PEM content whose newlines were flattened into the
// two-character \n escape sequence, a common artifact of passing multi-line
// secrets through single-line configuration channels. Content that already
// contains real line breaks is returned unchanged apart from trimming.
func NormalizePEM(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "\n") && strings.Contains(raw, `\n`) {
		raw = strings.ReplaceAll(raw, `\n`, "\n")
	}
	return raw
}

func parsePrivateKey(pemStr string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errors.New("no PEM block found in private key")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, errors.New("private key is neither PKCS#1 nor PKCS#8")
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not an RSA key")
	}
	return key, nil
}

func parsePublicKey(pemStr string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errors.New("no PEM block found in public key")
	}

	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, errors.New("public key is neither PKIX nor PKCS#1")
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not an RSA key")
	}
	return key, nil
}

// KeyID derives a stable key identifier from the public key components,
// suitable for the JWT kid header and JWKS documents.
func KeyID(key *rsa.PublicKey) string {
	data := append(key.N.Bytes(), exponentBytes(key)...)
	hash := sha256.Sum256(data)
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

func exponentBytes(key *rsa.PublicKey) []byte {
	e := make([]byte, 4)
	binary.BigEndian.PutUint32(e, uint32(key.E))
	return bytes.TrimLeft(e, "\x00")
}
