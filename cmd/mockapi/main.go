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

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"

	"github.com/unidet/portal/internal/api/middleware"
	"github.com/unidet/portal/internal/infrastructure/config"
	"github.com/unidet/portal/internal/mockapi"
	"github.com/unidet/portal/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mockapi:", err)
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
		Pretty: cfg.Env != "production",
		App:    "mockapi",
	})

	mock, err := mockapi.New(mockapi.Options{
		Prefix:       cfg.Prefix,
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     cfg.TokenTTL,
		RootName:     cfg.RootName,
		RootEmail:    cfg.RootEmail,
		RootPassword: cfg.RootPassword,
		Logger:       logger.Component("mockapi"),
	})
	if err != nil {
		return err
	}

	e := mock.Handler()
	e.Use(middleware.RequestLogger(logger.Component("http")))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem: "mockapi",
		Skipper:   func(c echo.Context) bool { return c.Path() == "/metrics" },
	}))
	e.GET("/metrics", echoprometheus.NewHandler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("prefix", cfg.Prefix).Str("root", cfg.RootEmail).Msg("mock backend listening")
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Msg("mock backend stopped")
	return nil
}
