package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/astroweather-service/internal/adapter/gemini"
	httpadapter "github.com/couchcryptid/astroweather-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/astroweather-service/internal/adapter/kafka"
	"github.com/couchcryptid/astroweather-service/internal/adapter/offline"
	"github.com/couchcryptid/astroweather-service/internal/config"
	"github.com/couchcryptid/astroweather-service/internal/dashboard"
	"github.com/couchcryptid/astroweather-service/internal/domain"
	"github.com/couchcryptid/astroweather-service/internal/observability"
	"github.com/couchcryptid/astroweather-service/internal/pipeline"
)

func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			slog.Error("failed to load .env file", "error", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Guidance: Gemini when a key is configured (feature-flagged via GEMINI_ENABLED),
	// with the offline advisor answering whenever the model cannot.
	fallback := offline.New()
	var advisor domain.Advisor = fallback
	if cfg.GeminiEnabled {
		client, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout, metrics, logger)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		advisor = gemini.NewCachedAdvisor(client, cfg.GuidanceCacheSize, metrics)
		metrics.GuidanceEnabled.Set(1)
		logger.Info("gemini guidance enabled", "model", cfg.GeminiModel, "cache_size", cfg.GuidanceCacheSize, "timeout", cfg.GeminiTimeout)
	} else {
		logger.Info("gemini guidance disabled, using offline advisor")
	}

	svc := dashboard.New(advisor, fallback, clockwork.NewRealClock(), cfg.SimulatedLatency, metrics, logger)
	if err := svc.Warmup(); err != nil {
		logger.Error("dashboard warmup failed", "error", err)
		os.Exit(1)
	}

	checks := readinessChecks{svc}

	var (
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
		p      *pipeline.Pipeline
	)
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p = pipeline.New(reader, pipeline.NewTransformer(domain.NewSynthesizer(nil), metrics, logger), writer, logger, metrics, cfg.BatchSize)
		checks = append(checks, p)
		logger.Info("kafka query pipeline enabled",
			"brokers", cfg.KafkaBrokers,
			"source_topic", cfg.KafkaSourceTopic,
			"sink_topic", cfg.KafkaSinkTopic,
		)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, checks, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start query pipeline.
	if p != nil {
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
