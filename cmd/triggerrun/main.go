// Command triggerrun forces one immediate ingestion tick for a single
// season, bypassing the civil-time window gate, and exits. Useful for
// backfilling or debugging a season's pipeline without waiting on its
// schedule.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"clubarchive/ingestion/internal/cache"
	"clubarchive/ingestion/internal/clock"
	"clubarchive/ingestion/internal/config"
	"clubarchive/ingestion/internal/manager"
	"clubarchive/ingestion/internal/repository"
	"clubarchive/ingestion/internal/upstream"
)

func main() {
	seasonID := flag.Int("season-id", 0, "season id to trigger an immediate ingestion run for (required)")
	timeoutFlag := flag.Duration("timeout", 5*time.Minute, "maximum time to allow the triggered run to take")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if *seasonID <= 0 {
		fmt.Fprintln(os.Stderr, "usage: triggerrun -season-id <id> [-timeout 5m]")
		os.Exit(2)
	}

	cfg := config.MustLoad()

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

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
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	clubCache, err := cache.NewClubCache(ctx, cache.Config{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to Redis - continuing with in-memory club cache")
	} else {
		defer clubCache.Close()
	}

	gate, err := clock.NewGate(cfg.CivilZone)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load civil time zone")
	}

	upstreamClient := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamPlatform, cfg.UpstreamMatchKind, cfg.UpstreamTimeout, clubCache)
	mgr := manager.New(db, upstreamClient, gate, cfg.ShutdownGrace)

	log.Info().Msg("restoring scheduler jobs so the target season has a live worker")
	if err := mgr.Restore(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to restore scheduler jobs")
	}

	log.Info().Int("season_id", *seasonID).Msg("triggering immediate run")
	if err := mgr.TriggerNow(ctx, *seasonID); err != nil {
		log.Fatal().Err(err).Int("season_id", *seasonID).Msg("triggered run failed")
	}

	runs, err := mgr.Runs(ctx, *seasonID, 1)
	if err != nil {
		log.Warn().Err(err).Msg("run completed but could not fetch its audit record")
	} else if len(runs) > 0 {
		r := runs[0]
		log.Info().
			Str("status", string(r.Status)).
			Int("matches_fetched", r.MatchesFetched).
			Int("matches_new", r.MatchesNew).
			Msg("run complete")
	}

	mgr.Shutdown(context.Background())
}
