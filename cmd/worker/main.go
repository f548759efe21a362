package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"clubarchive/ingestion/internal/cache"
	"clubarchive/ingestion/internal/clock"
	"clubarchive/ingestion/internal/config"
	"clubarchive/ingestion/internal/manager"
	"clubarchive/ingestion/internal/metrics"
	"clubarchive/ingestion/internal/repository"
	"clubarchive/ingestion/internal/upstream"
)

func main() {
	setupLogger()

	log.Info().Msg("Starting Ingestion Scheduler worker")

	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	dbConfig := repository.Config{
		Host:              cfg.DatabaseHost,
		Port:              strconv.Itoa(cfg.DatabasePort),
		User:              cfg.DatabaseUser,
		Password:          cfg.DatabasePassword,
		Database:          cfg.DatabaseName,
		SSLMode:           cfg.DatabaseSSLMode,
		MaxConns:          cfg.DatabaseMaxConns,
		MinConns:          cfg.DatabaseMinConns,
		MaxConnLifetime:   cfg.DatabaseMaxConnLifetime,
		MaxConnIdleTime:   cfg.DatabaseMaxConnIdleTime,
		HealthCheckPeriod: cfg.DatabaseHealthCheckPeriod,
	}

	db, err := repository.NewDatabase(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	clubCache, err := cache.NewClubCache(ctx, cache.Config{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing with in-memory club cache")
	} else {
		defer clubCache.Close()
		log.Info().Msg("Redis club cache connected")
	}

	upstreamClient := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamPlatform, cfg.UpstreamMatchKind, cfg.UpstreamTimeout, clubCache)
	log.Info().Str("base_url", cfg.UpstreamBaseURL).Msg("Upstream client initialized")

	gate, err := clock.NewGate(cfg.CivilZone)
	if err != nil {
		log.Fatal().Err(err).Str("zone", cfg.CivilZone).Msg("Failed to load civil time zone")
	}

	mgr := manager.New(db, upstreamClient, gate, cfg.ShutdownGrace)

	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort, db)
	}

	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
				stats := db.PoolStats()
				metrics.UpdateDBConnectionStats(stats["acquired_conns"].(int32), stats["idle_conns"].(int32))
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info().Msg("Restoring active scheduler jobs...")
	if err := mgr.Restore(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to restore scheduler jobs")
	}

	<-ctx.Done()

	log.Info().Msg("Shutting down scheduler manager...")
	mgr.Shutdown(context.Background())

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Str("level", level.String()).Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics HTTP server and a
// /healthz endpoint backed by the database health check.
func startMetricsServer(port int, db *repository.Database) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
