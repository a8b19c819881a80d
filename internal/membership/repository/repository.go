package repository

import (
	"context"
	"errors"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/membership/internal/common/db"
	"github.com/AlibekovAA/membership/internal/common/logger"
	"github.com/AlibekovAA/membership/internal/membership/domain"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

const usersTable = "users"

type Repository interface {
	Create(ctx context.Context, user domain.User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateProfile(ctx context.Context, email, firstName, lastName string, updatedAt time.Time) (domain.User, error)
}

type PgRepository struct {
	pool  *pgxpool.Pool
	log   *logger.Logger
	retry db.RetryConfig
}

func NewPgRepository(pool *pgxpool.Pool, log *logger.Logger) *PgRepository {
	return &PgRepository{
		pool:  pool,
		log:   log,
		retry: db.DefaultRetryConfig,
	}
}

const userColumns = `id, email, first_name, last_name, password_hash, profile_image, created_at, updated_at`

func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()

	var profileImage *string
	if user.ProfileImage != "" {
		profileImage = &user.ProfileImage
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (id, email, first_name, last_name, password_hash, profile_image, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		profileImage,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if db.IsUniqueViolation(err) {
		db.MeasureQueryDuration("create user", usersTable, start)
		return ErrEmailAlreadyExists
	}
	return db.HandleExecError(err, "create user", usersTable, start)
}

func (r *PgRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := db.RetryWithBackoff(ctx, r.log, r.retry, func() error {
		start := time.Now()
		err := r.pool.QueryRow(
			ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`,
			email,
		).Scan(&exists)
		return db.HandleQueryError(err, ErrUserNotFound, "check user email", usersTable, start)
	})
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PgRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User
	err := db.RetryWithBackoff(ctx, r.log, r.retry, func() error {
		start := time.Now()
		row := r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`,
			email,
		)
		u, err := scanUser(row)
		if err != nil {
			return db.HandleQueryError(err, ErrUserNotFound, "find user by email", usersTable, start)
		}
		db.MeasureQueryDuration("find user by email", usersTable, start)
		user = u
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *PgRepository) UpdateProfile(ctx context.Context, email, firstName, lastName string, updatedAt time.Time) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`UPDATE users SET first_name = $2, last_name = $3, updated_at = $4
		 WHERE email = $1
		 RETURNING `+userColumns,
		email,
		firstName,
		lastName,
		updatedAt,
	)
	user, err := scanUser(row)
	if err != nil {
		return domain.User{}, db.HandleQueryError(err, ErrUserNotFound, "update user profile", usersTable, start)
	}
	db.MeasureQueryDuration("update user profile", usersTable, start)
	return user, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		user         domain.User
		profileImage *string
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&profileImage,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	if profileImage != nil {
		user.ProfileImage = *profileImage
	}
	return user, nil
}
