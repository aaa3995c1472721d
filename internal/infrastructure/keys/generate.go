package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
)

// Generate creates a fresh RSA key pair of the given size. Used by the keygen
// tool and by tests; production key material arrives via configuration.
func Generate(bits int) (*Pair, error) {
	private, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, err
	}

	return &Pair{
		Private: private,
		Public:  &private.PublicKey,
		KeyID:   KeyID(&private.PublicKey),
	}, nil
}

// EncodePrivatePEM encodes the private key in PKCS#1 PEM form
func EncodePrivatePEM(key *rsa.PrivateKey) string {
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))
}

// EncodePublicPEM encodes the public key in PKIX PEM form
func EncodePublicPEM(key *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return "", err
	}
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: der,
	})), nil
}
