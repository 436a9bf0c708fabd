package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/storefront/internal/app"
	"github.com/pribylovaa/storefront/internal/config"
	sfhttp "github.com/pribylovaa/storefront/internal/http"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := app.SetupLogger(cfg.Env, os.Stdout)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("storefront_failed", slog.String("err", err.Error()))
		stop()
		os.Exit(1)
	}
}

// run поднимает сессию, фронт и служебные эндпойнты и ждёт сигнала остановки.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	a, err := app.New(ctx, cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("store_close_failed", slog.String("err", err.Error()))
		}
	}()

	log.Info("storefront_starting",
		slog.String("env", cfg.Env),
		slog.String("backend", cfg.Backend.BaseURL),
		slog.Bool("authenticated", a.Session.IsAuthenticated()),
	)

	front := sfhttp.NewRouter(a.Session, a.Shop, sfhttp.Options{
		Logger:    log,
		LoginPath: cfg.Front.LoginPath,
	})

	var readiness sfhttp.Readiness
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           sfhttp.NewServeMux(front, nil, &readiness),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	readiness.Set(true)
	log.Info("storefront_ready", slog.String("addr", srv.Addr))

	select {
	case <-ctx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	}

	readiness.Set(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	}

	log.Info("storefront_stopped")

	return nil
}
