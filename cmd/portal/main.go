package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/api"
	"github.com/unidet/portal/internal/api/handler"
	"github.com/unidet/portal/internal/api/metrics"
	"github.com/unidet/portal/internal/core/domain"
	"github.com/unidet/portal/internal/core/ports"
	"github.com/unidet/portal/internal/core/service"
	"github.com/unidet/portal/internal/infrastructure/backend"
	mongostore "github.com/unidet/portal/internal/infrastructure/db/mongo"
	redisstore "github.com/unidet/portal/internal/infrastructure/db/redis"
	"github.com/unidet/portal/internal/infrastructure/session"
	"github.com/unidet/portal/internal/pkg/config"
	"github.com/unidet/portal/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "portal:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.Production(),
		App:    "portal",
	})

	secret := cfg.CookieSecret
	if secret == "" {
		// Cookies signed with a per-process secret do not survive a restart.
		secret = randomSecret()
		log.Warn().Msg("COOKIE_SECRET not set; using an ephemeral secret")
	}

	store, cleanup, err := openSessionBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	sessions := service.NewSessionStore(session.Contextual{}, logger.Component("session"))
	client := backend.New(sessions, backend.Options{
		BaseURL:        cfg.APIBaseURL,
		Logger:         logger.Component("backend"),
		OnAuthRequired: metrics.AuthRequired,
		Observe:        metrics.ObserveBackend,
	})

	store.checks["backend"] = func(ctx context.Context) error {
		_, err := client.Do(ctx, domain.ScopePublic, ports.Request{Method: http.MethodGet, Path: "/contact"})
		return err
	}

	e := api.NewRouter(api.Options{
		API:           client,
		Sessions:      sessions,
		Namespaces:    store.namespaces,
		Locks:         store.locks,
		RootAdminID:   cfg.RootAdminID,
		AssetBase:     cfg.APIBaseURL,
		CookieSecret:  secret,
		CookieSecure:  cfg.CookieSecure,
		SubmitLockTTL: cfg.SubmitLockTTL,
		Checks:        store.checks,
		Logger:        logger.Component("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("backend", cfg.APIBaseURL).Str("sessions", cfg.SessionBackend).Msg("portal listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

type sessionBackend struct {
	namespaces ports.Namespaces
	locks      ports.SubmitLock
	checks     map[string]handler.Check
}

// openSessionBackend connects the per-browser session storage selected by
// SESSION_BACKEND. Mongo has no lock primitive here, so submits are locked
// in process memory for that backend.
func openSessionBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*sessionBackend, func(), error) {
	b := &sessionBackend{checks: map[string]handler.Check{}}

	switch cfg.SessionBackend {
	case config.BackendRedis:
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, nil, err
		}
		b.namespaces = redisstore.NewNamespaces(rdb, redisstore.DefaultSessionTTL)
		b.locks = redisstore.NewSubmitLock(rdb)
		b.checks["redis"] = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("sessions stored in redis")
		return b, func() { _ = rdb.Close() }, nil

	case config.BackendMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		ns := mongostore.NewNamespaces(db)
		if err := ns.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		b.namespaces = ns
		b.locks = session.NewMemoryLocks()
		b.checks["mongo"] = func(ctx context.Context) error { return mongostore.Ping(ctx, client) }
		log.Info().Str("database", cfg.Mongo.Database).Msg("sessions stored in mongo")
		return b, func() { _ = client.Disconnect(context.Background()) }, nil

	default:
		b.namespaces = session.NewMemoryNamespaces()
		b.locks = session.NewMemoryLocks()
		log.Info().Msg("sessions stored in memory")
		return b, func() {}, nil
	}
}
