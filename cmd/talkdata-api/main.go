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

	"github.com/talkdata/talkdata/internal/api"
	"github.com/talkdata/talkdata/internal/auth"
	"github.com/talkdata/talkdata/internal/config"
	"github.com/talkdata/talkdata/internal/dataset"
	"github.com/talkdata/talkdata/internal/history"
	historypostgres "github.com/talkdata/talkdata/internal/history/postgres"
	"github.com/talkdata/talkdata/internal/nl2sql"
	"github.com/talkdata/talkdata/internal/observability"
	"github.com/talkdata/talkdata/internal/pipeline"
	"github.com/talkdata/talkdata/internal/schema"
	s3store "github.com/talkdata/talkdata/internal/storage/s3"
)

func main() {
	cfg, err := config.LoadFromEnv("talkdata-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := dataset.Open(cfg.Dataset.DefaultRowLimit)
	if err != nil {
		logger.Error("failed to open dataset engine", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = engine.Close() }()

	loader := dataset.NewLoader(engine, logger)
	if cfg.ObjectStore.Enabled {
		objectStore, err := s3store.New(s3store.Config{
			Endpoint:        cfg.ObjectStore.Endpoint,
			Region:          cfg.ObjectStore.Region,
			Bucket:          cfg.ObjectStore.Bucket,
			AccessKeyID:     cfg.ObjectStore.AccessKeyID,
			SecretAccessKey: cfg.ObjectStore.SecretAccessKey,
			UseSSL:          cfg.ObjectStore.UseSSL,
			Prefix:          cfg.ObjectStore.Prefix,
		})
		if err != nil {
			logger.Error("failed to initialize object store", slog.Any("error", err))
			os.Exit(1)
		}
		downloaded, err := loader.SyncFromObjectStore(ctx, objectStore, "", cfg.Dataset.Dir)
		if err != nil {
			logger.Error("failed to sync datasets from object store", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("synced datasets from object store", slog.Int("files", downloaded))
	}

	loaded, err := loader.LoadDir(ctx, cfg.Dataset.Dir)
	if err != nil {
		logger.Error("failed to load dataset directory", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("registered dataset files", slog.Int("files", loaded), slog.String("dir", cfg.Dataset.Dir))

	if cfg.Dataset.Watch {
		watcher, err := dataset.NewWatcher(engine, logger)
		if err != nil {
			logger.Error("failed to start dataset watcher", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = watcher.Close() }()
		go func() {
			if err := watcher.Watch(ctx, cfg.Dataset.Dir); err != nil {
				logger.Error("dataset watcher stopped", slog.Any("error", err))
			}
		}()
	}

	var primary nl2sql.Converter
	if !cfg.AI.MockMode {
		primary, err = nl2sql.NewServiceConverter(nl2sql.ServiceConfig{
			BaseURL: cfg.AI.BaseURL,
			APIKey:  cfg.AI.APIKey,
			Timeout: cfg.AI.Timeout,
		})
		if err != nil {
			logger.Error("failed to initialize conversion service client", slog.Any("error", err))
			os.Exit(1)
		}
	}
	converter := nl2sql.NewFallbackConverter(primary, logger)

	readinessChecks := []api.ReadinessCheck{
		engine.HealthCheck,
		api.CheckConversionConfig(cfg),
	}

	var historyStore history.Store
	if cfg.History.Enabled {
		historyDB, err := historypostgres.Open(ctx, historypostgres.DBConfig{
			DSN:             cfg.History.DSN,
			MaxOpenConns:    cfg.History.MaxOpenConns,
			MaxIdleConns:    cfg.History.MaxIdleConns,
			ConnMaxIdleTime: cfg.History.ConnMaxIdleTime,
			ConnMaxLifetime: cfg.History.ConnMaxLifetime,
		})
		if err != nil {
			logger.Error("failed to open history db", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = historyDB.Close() }()

		store := historypostgres.NewStore(historyDB)
		historyStore = store
		readinessChecks = append(readinessChecks, store.HealthCheck)
	}

	builder := schema.NewBuilder(engine, logger)
	service := pipeline.NewService(builder, converter, pipeline.NewExecutor(engine), historyStore, logger)

	deps := api.Dependencies{
		Logger:            logger,
		Readiness:         api.CombineReadinessChecks(readinessChecks...),
		DependencyTimeout: time.Second,
		Pipeline:          service,
		Schema:            builder,
		History:           historyStore,
	}
	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		logger.Info("starting api server",
			slog.String("addr", cfg.HTTP.Address),
			slog.Bool("mock_mode", cfg.AI.MockMode))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
