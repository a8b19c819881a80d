package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/membership/internal/common/config"
	"github.com/AlibekovAA/membership/internal/common/constants"
	"github.com/AlibekovAA/membership/internal/common/db"
	"github.com/AlibekovAA/membership/internal/common/logger"
	"github.com/AlibekovAA/membership/internal/membership/repository"
)

type App struct {
	Log  *logger.Logger
	Pool *pgxpool.Pool
}

type MembershipApp struct {
	App
	Config config.MembershipConfig
}

// NewMembershipApp loads configuration, applies migrations when enabled and
// opens the database pool. Pool metrics are sampled until ctx is done.
func NewMembershipApp(ctx context.Context) (*MembershipApp, error) {
	log, err := initializeLogger("membership")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.LoadMembershipConfig()
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		return nil, err
	}

	if cfg.MigrateOnStart {
		if err := repository.ApplyMigrations(cfg.DatabaseURL); err != nil {
			log.Errorf("failed to apply migrations: %v", err)
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		log.Info("database migrations applied")
	}

	app, err := initializeApp(ctx, log, cfg.DatabaseURL, "membership")
	if err != nil {
		return nil, err
	}

	return &MembershipApp{
		App:    *app,
		Config: cfg,
	}, nil
}

func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

func initializeApp(ctx context.Context, log *logger.Logger, databaseURL, applicationName string) (*App, error) {
	pool, err := db.NewPool(ctx, log, databaseURL, applicationName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}

	db.StartPoolMetrics(ctx, pool, constants.DBPoolMetricsInterval)

	return &App{
		Log:  log,
		Pool: pool,
	}, nil
}

func initializeLogger(serviceName string) (*logger.Logger, error) {
	return logger.New(os.Getenv("LOG_DIR"), serviceName, os.Getenv("LOG_LEVEL"))
}
