package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/membership/internal/common/clock"
	"github.com/AlibekovAA/membership/internal/common/constants"
	commonerrors "github.com/AlibekovAA/membership/internal/common/errors"
	"github.com/AlibekovAA/membership/internal/observability/metrics"
)

// Issuer mints and validates membership bearer tokens. All fields are set
// once in NewIssuer, so one Issuer can serve every request concurrently.
type Issuer struct {
	key    SigningKey
	issuer string
	ttl    time.Duration
	clock  clock.Clock
	parser *jwt.Parser
}

func NewIssuer(key SigningKey, issuer string, ttl time.Duration, clk clock.Clock) (*Issuer, error) {
	if !key.valid() {
		return nil, ErrNoKey
	}
	if issuer == "" {
		issuer = constants.DefaultJWTIssuer
	}
	if ttl <= 0 {
		ttl = constants.DefaultTokenTTL
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}

	return &Issuer{
		key:    key,
		issuer: issuer,
		ttl:    ttl,
		clock:  clk,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{key.Alg()}),
			jwt.WithTimeFunc(clk.Now),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithIssuer(issuer),
		),
	}, nil
}

func (i *Issuer) TTL() time.Duration { return i.ttl }

func (i *Issuer) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("token: empty subject")
	}

	now := i.clock.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		UPN:    subject,
		Email:  subject,
		Groups: []string{constants.UserGroup},
	}

	t := jwt.NewWithClaims(i.key.method, claims)
	if i.key.kid != "" {
		t.Header["kid"] = i.key.kid
	}

	signed, err := t.SignedString(i.key.sign)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}

	metrics.MembershipTokensIssuedTotal.Inc()
	return signed, nil
}

// Refresh mints a brand new token for subject; it is Issue under another name.
func (i *Issuer) Refresh(subject string) (string, error) {
	return i.Issue(subject)
}

// Validate checks signature, algorithm, issuer and expiry. Every failure is
// ErrInvalidToken with the underlying reason attached as the cause.
func (i *Issuer) Validate(raw string) (Claims, error) {
	var claims Claims
	_, err := i.parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return i.key.verify, nil
	})
	if err != nil {
		return Claims{}, commonerrors.ErrInvalidToken.WithCause(err)
	}
	if claims.Email == "" {
		return Claims{}, commonerrors.ErrInvalidToken.WithCause(errors.New("missing email claim"))
	}
	return claims, nil
}
