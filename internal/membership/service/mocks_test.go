package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/membership/internal/common/clock"
	"github.com/AlibekovAA/membership/internal/common/logger"
	"github.com/AlibekovAA/membership/internal/membership/domain"
	"github.com/AlibekovAA/membership/internal/membership/repository"
)

type mockRepo struct {
	createFunc        func(ctx context.Context, user domain.User) error
	existsByEmailFunc func(ctx context.Context, email string) (bool, error)
	findByEmailFunc   func(ctx context.Context, email string) (domain.User, error)
	updateProfileFunc func(ctx context.Context, email, firstName, lastName string, updatedAt time.Time) (domain.User, error)
}

func (m *mockRepo) Create(ctx context.Context, user domain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFunc != nil {
		return m.existsByEmailFunc(ctx, email)
	}
	return false, nil
}

func (m *mockRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (m *mockRepo) UpdateProfile(ctx context.Context, email, firstName, lastName string, updatedAt time.Time) (domain.User, error) {
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(ctx, email, firstName, lastName, updatedAt)
	}
	return domain.User{}, repository.ErrUserNotFound
}

type mockCredential struct {
	hashFunc    func(plaintext string) (string, error)
	hashCalls   []string
	verifyCalls []string
}

func (m *mockCredential) Hash(plaintext string) (string, error) {
	m.hashCalls = append(m.hashCalls, plaintext)
	if m.hashFunc != nil {
		return m.hashFunc(plaintext)
	}
	return "hashed:" + plaintext, nil
}

func (m *mockCredential) Verify(plaintext, storedHash string) bool {
	m.verifyCalls = append(m.verifyCalls, storedHash)
	return storedHash == "hashed:"+plaintext
}

type mockTokens struct {
	issueFunc   func(subject string) (string, error)
	refreshFunc func(subject string) (string, error)
}

func (m *mockTokens) Issue(subject string) (string, error) {
	if m.issueFunc != nil {
		return m.issueFunc(subject)
	}
	return "token-for:" + subject, nil
}

func (m *mockTokens) Refresh(subject string) (string, error) {
	if m.refreshFunc != nil {
		return m.refreshFunc(subject)
	}
	return "refreshed-for:" + subject, nil
}

type mockIDGenerator struct {
	err error
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "3f2504e0-4f89-11d3-9a0c-0305e82c3301", nil
}

var errDatabaseDown = errors.New("database down")

var testNow = time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC)

const defaultImage = "https://yoururlapi.com/profile.jpeg"

func setupService(t *testing.T) (*MembershipService, *mockRepo, *mockCredential, *mockTokens, *mockIDGenerator) {
	t.Helper()

	repo := &mockRepo{}
	cred := &mockCredential{}
	tokens := &mockTokens{}
	ids := &mockIDGenerator{}
	log := logger.NewWithWriter(&bytes.Buffer{}, "test", "critical")

	svc, err := NewMembershipService(repo, cred, tokens, ids, clock.NewMockClock(testNow), defaultImage, log)
	require.NoError(t, err)
	return svc, repo, cred, tokens, ids
}
