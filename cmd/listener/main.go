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

	httpadapter "github.com/couchcryptid/tempest-listener/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/tempest-listener/internal/adapter/kafka"
	"github.com/couchcryptid/tempest-listener/internal/adapter/sqlstore"
	"github.com/couchcryptid/tempest-listener/internal/adapter/udp"
	"github.com/couchcryptid/tempest-listener/internal/config"
	"github.com/couchcryptid/tempest-listener/internal/observability"
	"github.com/couchcryptid/tempest-listener/internal/pipeline"
)

const storageOpenTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Startup failures (config, socket bind, storage open) end the process.
	// Once running, nothing does.
	conn, err := udp.Listen(ctx, cfg.UDPAddr, logger)
	if err != nil {
		logger.Error("failed to bind udp socket", "error", err)
		os.Exit(1)
	}

	openCtx, cancelOpen := context.WithTimeout(ctx, storageOpenTimeout)
	store, err := sqlstore.Open(openCtx, cfg.Database.Driver, cfg.Database.URL)
	cancelOpen()
	if err != nil {
		logger.Error("failed to open storage", "driver", cfg.Database.Driver, "error", err)
		_ = conn.Close()
		os.Exit(1)
	}
	logger.Info("storage ready", "driver", cfg.Database.Driver)

	sinks := []pipeline.Sink{store}
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		sinks = append(sinks, writer)
	}

	l := pipeline.New(conn, pipeline.FanOut(sinks...), logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, store, l, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Run the ingestion loop until a shutdown signal arrives.
	if err := l.Run(ctx); err != nil {
		logger.Error("listener error", "error", err)
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := conn.Close(); err != nil {
		logger.Error("udp close error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("storage close error", "error", err)
	}

	logger.Info("shutdown complete")
}
