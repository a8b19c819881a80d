package constants

import "time"

const (
	PasswordMaxLength  = 72
	JWTSecretMinLength = 32

	DefaultBcryptCost = 12
	DefaultTokenTTL   = 12 * time.Hour
	DefaultJWTIssuer  = "https://yourdomain.com"
	DefaultJWTKeyID   = "membership-key-1"
	UserGroup         = "User"

	DefaultProfileImage = "https://yoururlapi.com/profile.jpeg"

	DefaultMaxRequestSize = 1 << 20

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultMembershipHTTPPort       = "8080"
	DefaultMembershipRequestTimeout = 5 * time.Second
	ReadinessTimeout                = 2 * time.Second

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
