package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/iliyamo/classroom-client/internal/apiclient"
	"github.com/iliyamo/classroom-client/internal/config"
	"github.com/iliyamo/classroom-client/internal/database"
	"github.com/iliyamo/classroom-client/internal/logging"
	"github.com/iliyamo/classroom-client/internal/queue"
	"github.com/iliyamo/classroom-client/internal/service"
	"github.com/iliyamo/classroom-client/internal/session"
	"github.com/iliyamo/classroom-client/internal/tokenstore"
)

// app wires one invocation: config, token store, API client, session and
// resource services.
type app struct {
	cfg   *config.Client
	in    *os.File
	out   io.Writer
	log   *slog.Logger
	clock clockwork.Clock

	store tokenstore.Store
	api   *apiclient.Client
	sess  *session.Session
	svc   *service.Services

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Client, out io.Writer) (*app, error) {
	a := &app{cfg: cfg, in: os.Stdin, out: out, log: logging.Logger, clock: clockwork.NewRealClock()}
	if a.log == nil {
		a.log = slog.Default()
	}

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store

	api, err := apiclient.New(apiclient.Options{
		BaseURL:      cfg.BaseURL,
		Store:        store,
		Logger:       a.log,
		Timeout:      cfg.HTTPTimeout,
		MaxRedirects: cfg.MaxRedirects,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	api.OnSessionExpired(func(context.Context, error) {
		fmt.Fprintln(os.Stderr, "session expired, please log in again")
	})
	a.api = api

	var events queue.Publisher = queue.LogPublisher{Log: a.log}
	if cfg.RabbitMQURL != "" {
		pub := queue.NewAMQPPublisher(cfg.RabbitMQURL, a.log)
		a.closers = append(a.closers, pub.Close)
		events = pub
	}

	sess, err := session.New(session.Options{
		Client: api,
		Events: events,
		Logger: a.log,
		Clock:  a.clock,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.sess = sess
	a.svc = service.New(api)
	return a, nil
}

// openStore picks the backend named by LMS_TOKEN_STORE.
func (a *app) openStore(ctx context.Context) (tokenstore.Store, error) {
	cfg := a.cfg
	switch cfg.TokenStore {
	case config.StoreMemory:
		return tokenstore.NewMemory(), nil

	case config.StoreRedis:
		rdb, err := config.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
		return tokenstore.NewRedis(rdb, cfg.Redis.Prefix, cfg.Profile, cfg.SessionTTL), nil

	case config.StoreMySQL:
		db, err := database.Open(cfg.DB.User, cfg.DB.Pass, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		s := tokenstore.NewSQL(db, cfg.Profile)
		if err := s.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("token table: %w", err)
		}
		return s, nil

	default:
		path, err := boltPath(cfg.TokenPath)
		if err != nil {
			return nil, err
		}
		b, err := tokenstore.OpenBolt(path, cfg.Profile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, b.Close)
		return b, nil
	}
}

// boltPath resolves the session file, defaulting to ~/.lmsctl/session.db.
func boltPath(path string) (string, error) {
	if path != "" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	if path == "" {
		return filepath.Join(home, ".lmsctl", "session.db"), nil
	}
	return filepath.Join(home, path[2:]), nil
}

// Close releases the store and broker connections in reverse order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
