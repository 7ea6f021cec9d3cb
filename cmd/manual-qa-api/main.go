// Package main provides the manual QA API server entrypoint.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/wladywlady/t3-render/internal/cache"
	"github.com/wladywlady/t3-render/internal/config"
	"github.com/wladywlady/t3-render/internal/llm"
	"github.com/wladywlady/t3-render/internal/observability"
	"github.com/wladywlady/t3-render/internal/qa"
	"github.com/wladywlady/t3-render/internal/retrieval"
)

func main() {
	// Local development secrets come from .env; missing file is fine.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("llm_model", cfg.LLM.Model).
		Int("search_k", cfg.Search.K).
		Msg("Starting manual QA API")

	searchClient, err := retrieval.NewClient(retrieval.Config{
		BaseURL:      cfg.Search.BaseURL,
		APIKey:       cfg.Search.APIKey,
		ProjectionID: cfg.Search.ProjectionID,
		K:            cfg.Search.K,
		Timeout:      cfg.Search.Timeout,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create search client")
	}

	llmClient := llm.NewClient(llm.Config{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
		Timeout: cfg.LLM.Timeout,
	})

	pipeline := qa.NewPipeline(searchClient, llmClient, logger)

	var counters cache.CounterStore
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.Store == "redis" {
			counters, err = cache.NewRedisStore(cache.RedisConfig{
				Addr:     cfg.RateLimit.Redis.Addr,
				Password: cfg.RateLimit.Redis.Password,
				DB:       cfg.RateLimit.Redis.DB,
				PoolSize: cfg.RateLimit.Redis.PoolSize,
			})
			if err != nil {
				logger.Fatal().Err(err).Msg("Failed to connect rate limit store")
			}
		} else {
			counters = cache.NewMemoryStore()
		}
		defer counters.Close()
	}

	router := NewRouter(logger, cfg, pipeline, counters)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}
