package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AlibekovAA/membership/internal/common/bootstrap"
	"github.com/AlibekovAA/membership/internal/common/clock"
	"github.com/AlibekovAA/membership/internal/common/config"
	commoncrypto "github.com/AlibekovAA/membership/internal/common/crypto"
	commonhttp "github.com/AlibekovAA/membership/internal/common/http"
	"github.com/AlibekovAA/membership/internal/common/logger"
	srv "github.com/AlibekovAA/membership/internal/common/server"
	"github.com/AlibekovAA/membership/internal/membership/credential"
	membershiphttp "github.com/AlibekovAA/membership/internal/membership/http"
	"github.com/AlibekovAA/membership/internal/membership/repository"
	"github.com/AlibekovAA/membership/internal/membership/service"
	"github.com/AlibekovAA/membership/internal/membership/token"
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(fmt.Sprintf("membership service: %v\n", err))
		os.Exit(1)
	}
}

// run returns instead of exiting so the deferred pool close always happens.
func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.NewMembershipApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	log := app.Log

	handler, err := newHandler(app.Config, app.Pool, log)
	if err != nil {
		log.Errorf("failed to build membership handler: %v", err)
		return err
	}

	serverConfig := srv.DefaultServerConfig(app.Config.HTTPPort)
	server := srv.NewServer(serverConfig, handler)

	shutdownHooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Infof("membership service: stopping pool metrics")
			cancel()
			return nil
		},
	}

	return srv.StartWithGracefulShutdownAndHooks(server, log, "membership", shutdownHooks)
}

// newHandler wires signing key, issuer, service and router, mounted next to
// /metrics and /ready behind the shared middleware chain.
func newHandler(cfg config.MembershipConfig, pool *pgxpool.Pool, log *logger.Logger) (http.Handler, error) {
	signingKey, err := loadSigningKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("load signing key: %w", err)
	}

	issuer, err := token.NewIssuer(signingKey, cfg.JWTIssuer, cfg.TokenTTL, clock.NewRealClock())
	if err != nil {
		return nil, fmt.Errorf("create token issuer: %w", err)
	}
	if cfg.UsesRSA() {
		log.Infof("tokens signed with %s (kid %s), ttl %v", signingKey.Alg(), signingKey.KeyID(), issuer.TTL())
	} else {
		log.Infof("tokens signed with %s, ttl %v", signingKey.Alg(), issuer.TTL())
	}

	membershipService, err := service.NewMembershipService(
		repository.NewPgRepository(pool, log),
		credential.New(cfg.BcryptCost),
		issuer,
		commoncrypto.NewUUIDGenerator(),
		clock.NewRealClock(),
		cfg.DefaultProfileImage,
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("create membership service: %w", err)
	}

	handler := membershiphttp.NewHandler(membershipService, issuer, membershiphttp.Config{
		RequestTimeout:     cfg.RequestTimeout,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, log)

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/ready", commonhttp.ReadinessHandler(pool.Ping, log))

	return commonhttp.BuildBaseHandler("membership", log, mux), nil
}

func loadSigningKey(cfg config.MembershipConfig) (token.SigningKey, error) {
	if cfg.UsesRSA() {
		return token.LoadRSAPrivateKeyFile(cfg.JWTKeyID, cfg.JWTPrivateKeyFile)
	}
	return token.NewHMACKey([]byte(cfg.JWTSecret))
}
