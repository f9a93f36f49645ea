// Command mockapi serves the LMS REST API from in-memory tables.  It is
// meant for local development of lmsctl and for end-to-end tests of the
// client against a real server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/iliyamo/classroom-client/internal/config"
	"github.com/iliyamo/classroom-client/internal/logging"
	"github.com/iliyamo/classroom-client/internal/middleware"
	"github.com/iliyamo/classroom-client/internal/repository"
	"github.com/iliyamo/classroom-client/internal/router"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	repos := repository.New(cfg.BcryptCost)
	if cfg.Seed {
		if err := repos.Seed(ctx, clock.Now()); err != nil {
			slog.Error("seeding demo data failed", "error", err)
			os.Exit(1)
		}
		slog.Info("demo data seeded", "admin", repository.SeedAdminEmail)
	}

	rdb, err := config.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, login throttling disabled", "error", err)
	} else {
		defer rdb.Close()
	}

	e := router.New(router.Deps{
		Cfg:     *cfg,
		Repos:   repos,
		Clock:   clock,
		Logger:  logging.Logger,
		Limiter: middleware.NewTokenBucket(cfg.RateLimit, rdb, clock),
	})

	addr := ":" + cfg.Port
	go func() {
		slog.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}
