package repository

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Database is the connection pool plus the repository set for every
// entity the ingestion pipeline reads or writes.
type Database struct {
	Pool *pgxpool.Pool

	SchedulerConfigs *SchedulerConfigRepository
	SchedulerRuns    *SchedulerRunRepository
	Matches          *MatchRepository
	Players          *PlayerRepository
	PlayerStats      *PlayerMatchStatsRepository
	Clubs            *ClubRepository
}

// defaultPoolTuning is applied to any field of Config left at its zero
// value, so a caller (or a test) that only cares about connectivity
// doesn't have to spell out every pool parameter.
var defaultPoolTuning = Config{
	MaxConns:          25,
	MinConns:          5,
	MaxConnLifetime:   time.Hour,
	MaxConnIdleTime:   30 * time.Minute,
	HealthCheckPeriod: time.Minute,
}

// Config holds everything needed to dial Postgres and size the pool.
// Connection fields are supplied by the caller; pool-tuning fields fall
// back to defaultPoolTuning when left zero, so operators only need to
// override the ones they actually care about.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string

	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

func (c Config) withPoolDefaults() Config {
	if c.MaxConns == 0 {
		c.MaxConns = defaultPoolTuning.MaxConns
	}
	if c.MinConns == 0 {
		c.MinConns = defaultPoolTuning.MinConns
	}
	if c.MaxConnLifetime == 0 {
		c.MaxConnLifetime = defaultPoolTuning.MaxConnLifetime
	}
	if c.MaxConnIdleTime == 0 {
		c.MaxConnIdleTime = defaultPoolTuning.MaxConnIdleTime
	}
	if c.HealthCheckPeriod == 0 {
		c.HealthCheckPeriod = defaultPoolTuning.HealthCheckPeriod
	}
	return c
}

func (c Config) dsn() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// NewDatabase dials Postgres, sizes the pool per cfg (falling back to
// defaultPoolTuning for anything left unset), and wires every
// repository against the resulting pool.
func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	cfg = cfg.withPoolDefaults()

	poolConfig, err := pgxpool.ParseConfig(cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("database", cfg.Database).
		Int32("max_conns", cfg.MaxConns).
		Int32("min_conns", cfg.MinConns).
		Msg("connected to database")

	db := &Database{Pool: pool}
	db.SchedulerConfigs = &SchedulerConfigRepository{db: db}
	db.SchedulerRuns = &SchedulerRunRepository{db: db}
	db.Matches = &MatchRepository{db: db}
	db.Players = &PlayerRepository{db: db}
	db.PlayerStats = &PlayerMatchStatsRepository{db: db}
	db.Clubs = &ClubRepository{db: db}

	return db, nil
}

// Close releases every connection in the pool.
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Msg("database connection pool closed")
	}
}

// Health pings the pool with a bounded timeout, for the /healthz surface.
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// PoolStats snapshots the pool's current utilization.
func (db *Database) PoolStats() map[string]interface{} {
	stat := db.Pool.Stat()
	return map[string]interface{}{
		"total_conns":    stat.TotalConns(),
		"acquired_conns": stat.AcquiredConns(),
		"idle_conns":     stat.IdleConns(),
		"max_conns":      stat.MaxConns(),
	}
}
