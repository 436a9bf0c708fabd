// app собирает клиент витрины из конфигурации: хранилище пары токенов,
// транспорт к бэкенду, менеджер сессии и API магазина.
// Используется обоими бинарями (cmd/storefront, cmd/shopctl).
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/storefront/internal/clients"
	"github.com/pribylovaa/storefront/internal/config"
	"github.com/pribylovaa/storefront/internal/metrics"
	"github.com/pribylovaa/storefront/internal/session"
	"github.com/pribylovaa/storefront/internal/storage"
	"github.com/pribylovaa/storefront/internal/storage/badger"
	"github.com/pribylovaa/storefront/internal/storage/file"
	"github.com/pribylovaa/storefront/internal/storage/redis"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

type App struct {
	Config  *config.Config
	Log     *slog.Logger
	Metrics *metrics.Metrics
	Store   storage.CredentialStore
	Session *session.Manager
	Auth    *clients.AuthAPI
	Shop    *clients.Storefront
}

// New собирает приложение. reg == nil — метрики не собираются.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger, reg prometheus.Registerer) (*App, error) {
	const op = "app.New"

	if log == nil {
		log = slog.Default()
	}

	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}

	store, err := OpenStore(ctx, cfg.Store, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	base := clients.New(*cfg, log, m)
	authAPI := clients.NewAuthAPI(base, cfg.Backend.Paths)

	mgr := session.New(ctx, store, authAPI,
		session.WithLogger(log),
		session.WithDefaultRole(cfg.Backend.DefaultRole),
		session.WithNotifier(notifier(log, m)),
	)

	// Хуки сессии подключаются явно: bearer перед отправкой, refresh-and-retry на ошибке.
	protected := base.With(mgr.Hooks())

	return &App{
		Config:  cfg,
		Log:     log,
		Metrics: m,
		Store:   store,
		Session: mgr,
		Auth:    authAPI,
		Shop:    clients.NewStorefront(protected, cfg.Backend.Paths),
	}, nil
}

// Close освобождает хранилище.
func (a *App) Close() error {
	return a.Store.Close()
}

// OpenStore открывает хранилище пары по cfg.Driver.
func OpenStore(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (storage.CredentialStore, error) {
	const op = "app.OpenStore"

	var (
		st  storage.CredentialStore
		err error
	)

	switch cfg.Driver {
	case config.StoreFile:
		st, err = file.New(cfg.Path)
	case config.StoreBadger:
		st, err = badger.New(badger.Options{Dir: cfg.Dir, Key: cfg.Key}, log)
	case config.StoreRedis:
		st, err = redis.New(ctx, cfg.RedisURL, cfg.Key, cfg.TTL)
	default:
		return nil, fmt.Errorf("%s: unknown store driver %q", op, cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, cfg.Driver, err)
	}

	log.Debug("store_opened", slog.String("driver", cfg.Driver))

	return st, nil
}

// notifier пишет события сессии в лог и метрики.
// Refresh исходы выводятся из событий: refreshed — success, session_expired — failure.
func notifier(log *slog.Logger, m *metrics.Metrics) session.Notifier {
	return func(_ context.Context, ev session.Event) {
		log.Info("session_changed", slog.String("event", ev.String()))
		m.SessionEvent(ev.String())

		switch ev {
		case session.EventRefreshed:
			m.Refresh("success")
		case session.EventSessionExpired:
			m.Refresh("failure")
		}
	}
}

// SetupLogger — slog-логгер по окружению: local — text/debug, dev — json/debug, prod — json/info.
func SetupLogger(env string, w io.Writer) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
