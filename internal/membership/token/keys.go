package token

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/membership/internal/common/constants"
)

var (
	ErrWeakSecret = errors.New("token: HMAC secret too short")
	ErrNoKey      = errors.New("token: signing key not configured")
)

// SigningKey is an immutable key paired with the JWT algorithm it signs with.
type SigningKey struct {
	method jwt.SigningMethod
	kid    string
	sign   any
	verify any
}

func (k SigningKey) Alg() string {
	if k.method == nil {
		return ""
	}
	return k.method.Alg()
}

func (k SigningKey) KeyID() string { return k.kid }

func (k SigningKey) valid() bool {
	return k.method != nil && k.sign != nil && k.verify != nil
}

// NewHMACKey builds an HS256 key. The secret is copied.
func NewHMACKey(secret []byte) (SigningKey, error) {
	if len(secret) < constants.JWTSecretMinLength {
		return SigningKey{}, fmt.Errorf("%w: need %d bytes, got %d", ErrWeakSecret, constants.JWTSecretMinLength, len(secret))
	}
	b := make([]byte, len(secret))
	copy(b, secret)
	return SigningKey{
		method: jwt.SigningMethodHS256,
		sign:   b,
		verify: b,
	}, nil
}

// ParseRSAPrivateKeyPEM builds an RS256 key from a PKCS1 or PKCS8 PEM block.
func ParseRSAPrivateKeyPEM(kid string, pemKey []byte) (SigningKey, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return SigningKey{}, errors.New("token: invalid PEM for RSA key")
	}

	var key *rsa.PrivateKey
	switch block.Type {
	case "RSA PRIVATE KEY":
		k, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return SigningKey{}, fmt.Errorf("token: parse PKCS1: %w", err)
		}
		key = k
	case "PRIVATE KEY":
		priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return SigningKey{}, fmt.Errorf("token: parse PKCS8: %w", err)
		}
		k, ok := priv.(*rsa.PrivateKey)
		if !ok {
			return SigningKey{}, errors.New("token: not an RSA private key")
		}
		key = k
	default:
		return SigningKey{}, fmt.Errorf("token: unsupported PEM type %q", block.Type)
	}

	return SigningKey{
		method: jwt.SigningMethodRS256,
		kid:    kid,
		sign:   key,
		verify: &key.PublicKey,
	}, nil
}

func LoadRSAPrivateKeyFile(kid, path string) (SigningKey, error) {
	pemKey, err := os.ReadFile(path)
	if err != nil {
		return SigningKey{}, fmt.Errorf("token: read private key: %w", err)
	}
	return ParseRSAPrivateKeyPEM(kid, pemKey)
}
