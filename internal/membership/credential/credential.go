package credential

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/AlibekovAA/membership/internal/common/constants"
	"github.com/AlibekovAA/membership/internal/observability/metrics"
)

var ErrEmptyPassword = errors.New("password must not be empty")

const (
	operationHash   = "hash"
	operationVerify = "verify"
)

// PasswordCredential hashes and verifies passwords with bcrypt. It holds only
// the cost factor and is safe for concurrent use.
type PasswordCredential struct {
	cost int
}

func New(cost int) *PasswordCredential {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = constants.DefaultBcryptCost
	}
	return &PasswordCredential{cost: cost}
}

func (c *PasswordCredential) Cost() int {
	return c.cost
}

// Hash returns a salted "$2a$<cost>$..." encoding of plaintext.
func (c *PasswordCredential) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}

	start := time.Now()
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), c.cost)
	metrics.MembershipPasswordDurationSeconds.WithLabelValues(operationHash).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches storedHash. A malformed hash is a
// mismatch, not an error.
func (c *PasswordCredential) Verify(plaintext, storedHash string) bool {
	start := time.Now()
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext))
	metrics.MembershipPasswordDurationSeconds.WithLabelValues(operationVerify).Observe(time.Since(start).Seconds())
	return err == nil
}
