package repository

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/AlibekovAA/membership/internal/common/logger"
	"github.com/AlibekovAA/membership/internal/membership/domain"
)

const (
	pgUser     = "membership"
	pgPassword = "membership"
	pgDatabase = "membership"
)

// startPostgres runs a throwaway PostgreSQL container and returns a migrated pool.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     pgUser,
			"POSTGRES_PASSWORD": pgPassword,
			"POSTGRES_DB":       pgDatabase,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	databaseURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		pgUser, pgPassword, host, mappedPort.Port(), pgDatabase)

	require.NoError(t, ApplyMigrations(databaseURL))
	require.NoError(t, ApplyMigrations(databaseURL), "second run must be a no-op")

	pool, err := pgxpool.Connect(ctx, databaseURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func newUser(email string) domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: "$2a$12$abcdefghijklmnopqrstuuabcdefghijklmnopqrstuvwxyz01234",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestPgRepository(t *testing.T) {
	pool := startPostgres(t)
	repo := NewPgRepository(pool, logger.NewWithWriter(&bytes.Buffer{}, "test", "critical"))
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		user := newUser("a@b.com")
		require.NoError(t, repo.Create(ctx, user))

		exists, err := repo.ExistsByEmail(ctx, "a@b.com")
		require.NoError(t, err)
		assert.True(t, exists)

		found, err := repo.FindByEmail(ctx, "a@b.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.Equal(t, user.PasswordHash, found.PasswordHash)
		assert.Equal(t, "", found.ProfileImage)
		assert.True(t, user.CreatedAt.Equal(found.CreatedAt))
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := repo.Create(ctx, newUser("a@b.com"))
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})

	t.Run("unknown email", func(t *testing.T) {
		exists, err := repo.ExistsByEmail(ctx, "nobody@b.com")
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = repo.FindByEmail(ctx, "nobody@b.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("update profile", func(t *testing.T) {
		user := newUser("c@d.com")
		user.ProfileImage = "https://cdn.example.com/c.png"
		require.NoError(t, repo.Create(ctx, user))

		later := user.UpdatedAt.Add(time.Minute)
		updated, err := repo.UpdateProfile(ctx, "c@d.com", "Grace", "Hopper", later)
		require.NoError(t, err)
		assert.Equal(t, "Grace", updated.FirstName)
		assert.Equal(t, "Hopper", updated.LastName)
		assert.Equal(t, "https://cdn.example.com/c.png", updated.ProfileImage)
		assert.True(t, later.Equal(updated.UpdatedAt))

		_, err = repo.UpdateProfile(ctx, "nobody@b.com", "X", "Y", later)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
