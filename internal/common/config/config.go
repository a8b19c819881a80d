package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AlibekovAA/membership/internal/common/constants"
	commonerrors "github.com/AlibekovAA/membership/internal/common/errors"
)

type MembershipConfig struct {
	HTTPPort            string
	DatabaseURL         string
	MigrateOnStart      bool
	JWTIssuer           string
	JWTSecret           string
	JWTPrivateKeyFile   string
	JWTKeyID            string
	TokenTTL            time.Duration
	BcryptCost          int
	DefaultProfileImage string
	RequestTimeout      time.Duration
	CORSAllowedOrigins  []string
}

// UsesRSA reports whether tokens are signed with the PEM key instead of the
// shared secret.
func (c MembershipConfig) UsesRSA() bool {
	return c.JWTPrivateKeyFile != ""
}

func LoadMembershipConfig() (MembershipConfig, error) {
	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return MembershipConfig{}, err
	}

	privateKeyFile := getEnv("JWT_PRIVATE_KEY_FILE", "")
	jwtSecret := getEnv("JWT_SECRET", "")

	if privateKeyFile == "" {
		if jwtSecret == "" {
			return MembershipConfig{}, fmt.Errorf("%w: JWT_PRIVATE_KEY_FILE or JWT_SECRET", commonerrors.ErrMissingRequiredEnv)
		}
		if err := validateJWTSecret(jwtSecret); err != nil {
			return MembershipConfig{}, err
		}
	}

	tokenTTL := getDurationEnv("JWT_TOKEN_TTL", constants.DefaultTokenTTL)
	if tokenTTL <= 0 {
		return MembershipConfig{}, fmt.Errorf("JWT_TOKEN_TTL must be positive, got %v", tokenTTL)
	}

	return MembershipConfig{
		HTTPPort:            getEnv("MEMBERSHIP_HTTP_PORT", constants.DefaultMembershipHTTPPort),
		DatabaseURL:         databaseURL,
		MigrateOnStart:      getBoolEnv("DB_MIGRATE", true),
		JWTIssuer:           getEnv("JWT_ISSUER", constants.DefaultJWTIssuer),
		JWTSecret:           jwtSecret,
		JWTPrivateKeyFile:   privateKeyFile,
		JWTKeyID:            getEnv("JWT_KEY_ID", constants.DefaultJWTKeyID),
		TokenTTL:            tokenTTL,
		BcryptCost:          getIntEnv("BCRYPT_COST", constants.DefaultBcryptCost),
		DefaultProfileImage: getEnv("DEFAULT_PROFILE_IMAGE", constants.DefaultProfileImage),
		RequestTimeout:      getDurationEnv("MEMBERSHIP_REQUEST_TIMEOUT", constants.DefaultMembershipRequestTimeout),
		CORSAllowedOrigins:  getListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}, nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", commonerrors.ErrInvalidJWTSecret, len(secret))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", commonerrors.ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getBoolEnv(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getListEnv(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
