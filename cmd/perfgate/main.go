package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/perfgate/perfgate/internal/config"
	"github.com/perfgate/perfgate/internal/gateway"
	"github.com/perfgate/perfgate/internal/notify"
)

func main() {
	configPath := flag.String("config", "", "path to the gateway tuning file (optional)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Local development convenience; in production the environment is set by
	// the host and no .env file exists.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env")
	}

	slog.Info("perfgate starting", "config", *configPath)

	fileCfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	provider := config.NewProvider(fileCfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Hot-reload the tuning file; secrets stay env-only and are re-read on
	// every invocation regardless.
	if *configPath != "" {
		go func() {
			if err := config.Watch(ctx, *configPath, provider.Reload); err != nil {
				slog.Error("config watch stopped", "err", err)
			}
		}()
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", gateway.New(provider, notify.New()))
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", fileCfg.Gateway.HTTPPort),
		Handler: mux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", fileCfg.Gateway.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("perfgate shutting down")
	srv.Shutdown(context.Background()) //nolint:errcheck
}
