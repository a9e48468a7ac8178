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

	"go.uber.org/zap"

	"finitefield.org/bangalore-local/internal/catalog"
	"finitefield.org/bangalore-local/internal/httpserver"
	"finitefield.org/bangalore-local/internal/platform/config"
	"finitefield.org/bangalore-local/internal/platform/observability"
	"finitefield.org/bangalore-local/internal/session"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("web").With(zap.String("env", cfg.Environment))

	svc, devAPI, err := newCatalog(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise catalog", zap.Error(err))
	}

	hashKey := cfg.Session.HashKey
	if len(hashKey) == 0 {
		logger.Warn("session hash key not configured; generating an ephemeral key")
		hashKey = session.GenerateKey()
	}
	sessions, err := session.NewManager(session.Config{
		HashKey:      hashKey,
		BlockKey:     cfg.Session.BlockKey,
		CookieSecure: cfg.Session.Secure,
		IdleTimeout:  cfg.Session.IdleTimeout,
	})
	if err != nil {
		logger.Fatal("failed to initialise session manager", zap.Error(err))
	}

	server, err := httpserver.New(httpserver.Config{
		Address:              cfg.Server.Addr,
		ReadTimeout:          cfg.Server.ReadTimeout,
		WriteTimeout:         cfg.Server.WriteTimeout,
		IdleTimeout:          cfg.Server.IdleTimeout,
		Logger:               logger,
		Catalog:              svc,
		DevAPI:               devAPI,
		Sessions:             sessions,
		WorkspaceTTL:         cfg.Session.WorkspaceTTL,
		SearchDebounce:       cfg.Directory.SearchDebounce,
		ContactRatePerMinute: cfg.Contact.RatePerMinute,
		MapsAPIKey:           cfg.Map.APIKey,
	})
	if err != nil {
		logger.Fatal("failed to build http server", zap.Error(err))
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("bangalore local listening", zap.Bool("dev_api", devAPI))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newCatalog picks the remote directory API when configured, otherwise the
// in-process catalog, which is then also served as the dev API.
func newCatalog(cfg config.Config, logger *zap.Logger) (catalog.Service, bool, error) {
	if cfg.UsesBackend() {
		logger.Info("using directory backend", zap.String("url", cfg.Backend.BaseURL))
		return catalog.NewClient(cfg.Backend.BaseURL, catalog.WithTimeout(cfg.Backend.Timeout)), false, nil
	}
	if cfg.Backend.DataFile != "" {
		svc, err := catalog.LoadStaticService(cfg.Backend.DataFile)
		if err != nil {
			return nil, false, err
		}
		logger.Info("using in-process catalog", zap.String("data_file", cfg.Backend.DataFile))
		return svc, true, nil
	}
	logger.Info("using in-process catalog with bundled seed")
	return catalog.NewStaticService(nil), true, nil
}
