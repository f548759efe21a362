package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"clubarchive/ingestion/internal/metrics"
	"clubarchive/ingestion/internal/models"
)

// SchedulerConfigRepository persists per-season scheduler configuration.
type SchedulerConfigRepository struct {
	db *Database
}

// ErrNotFound is returned when a lookup by key finds no row.
var ErrNotFound = errors.New("not found")

// Create inserts a new config for a season. season_id is unique.
func (r *SchedulerConfigRepository) Create(ctx context.Context, seasonID int, input models.SchedulerConfigInput) (*models.SchedulerConfig, error) {
	query := `
		INSERT INTO scheduler_config (season_id, is_active, is_paused, active_days, start_hour, end_hour, interval_minutes, interval_seconds, created_at, updated_at)
		VALUES ($1, false, false, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, season_id, is_active, is_paused, active_days, start_hour, end_hour, interval_minutes, interval_seconds, last_run_at, last_run_status, created_at, updated_at
	`

	var cfg models.SchedulerConfig
	err := r.db.Pool.QueryRow(ctx, query,
		seasonID, input.ActiveDays, input.StartHour, input.EndHour, input.IntervalMinutes, input.IntervalSeconds,
	).Scan(
		&cfg.ID, &cfg.SeasonID, &cfg.IsActive, &cfg.IsPaused, &cfg.ActiveDays,
		&cfg.StartHour, &cfg.EndHour, &cfg.IntervalMinutes, &cfg.IntervalSeconds,
		&cfg.LastRunAt, &cfg.LastRunStatus, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		metrics.RecordDBQuery("insert", "scheduler_config", "error")
		return nil, fmt.Errorf("failed to create scheduler config: %w", err)
	}
	metrics.RecordDBQuery("insert", "scheduler_config", "ok")
	return &cfg, nil
}

// GetBySeasonID returns the config for a season, or ErrNotFound.
func (r *SchedulerConfigRepository) GetBySeasonID(ctx context.Context, seasonID int) (*models.SchedulerConfig, error) {
	query := `
		SELECT id, season_id, is_active, is_paused, active_days, start_hour, end_hour, interval_minutes, interval_seconds, last_run_at, last_run_status, created_at, updated_at
		FROM scheduler_config WHERE season_id = $1
	`
	var cfg models.SchedulerConfig
	err := r.db.Pool.QueryRow(ctx, query, seasonID).Scan(
		&cfg.ID, &cfg.SeasonID, &cfg.IsActive, &cfg.IsPaused, &cfg.ActiveDays,
		&cfg.StartHour, &cfg.EndHour, &cfg.IntervalMinutes, &cfg.IntervalSeconds,
		&cfg.LastRunAt, &cfg.LastRunStatus, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get scheduler config for season %d: %w", seasonID, err)
	}
	return &cfg, nil
}

// ListAll returns every scheduler config, for the global listing surface.
func (r *SchedulerConfigRepository) ListAll(ctx context.Context) ([]*models.SchedulerConfig, error) {
	query := `
		SELECT id, season_id, is_active, is_paused, active_days, start_hour, end_hour, interval_minutes, interval_seconds, last_run_at, last_run_status, created_at, updated_at
		FROM scheduler_config ORDER BY season_id
	`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduler configs: %w", err)
	}
	defer rows.Close()

	var configs []*models.SchedulerConfig
	for rows.Next() {
		var cfg models.SchedulerConfig
		if err := rows.Scan(
			&cfg.ID, &cfg.SeasonID, &cfg.IsActive, &cfg.IsPaused, &cfg.ActiveDays,
			&cfg.StartHour, &cfg.EndHour, &cfg.IntervalMinutes, &cfg.IntervalSeconds,
			&cfg.LastRunAt, &cfg.LastRunStatus, &cfg.CreatedAt, &cfg.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scheduler config row: %w", err)
		}
		configs = append(configs, &cfg)
	}
	return configs, rows.Err()
}

// ListActive returns every config with is_active=true, for startup restore.
func (r *SchedulerConfigRepository) ListActive(ctx context.Context) ([]*models.SchedulerConfig, error) {
	query := `
		SELECT id, season_id, is_active, is_paused, active_days, start_hour, end_hour, interval_minutes, interval_seconds, last_run_at, last_run_status, created_at, updated_at
		FROM scheduler_config WHERE is_active = true ORDER BY season_id
	`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active scheduler configs: %w", err)
	}
	defer rows.Close()

	var configs []*models.SchedulerConfig
	for rows.Next() {
		var cfg models.SchedulerConfig
		if err := rows.Scan(
			&cfg.ID, &cfg.SeasonID, &cfg.IsActive, &cfg.IsPaused, &cfg.ActiveDays,
			&cfg.StartHour, &cfg.EndHour, &cfg.IntervalMinutes, &cfg.IntervalSeconds,
			&cfg.LastRunAt, &cfg.LastRunStatus, &cfg.CreatedAt, &cfg.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scheduler config row: %w", err)
		}
		configs = append(configs, &cfg)
	}
	return configs, rows.Err()
}

// UpdateFields applies operator-supplied field changes.
func (r *SchedulerConfigRepository) UpdateFields(ctx context.Context, seasonID int, input models.SchedulerConfigInput) error {
	query := `
		UPDATE scheduler_config
		SET active_days = $2, start_hour = $3, end_hour = $4, interval_minutes = $5, interval_seconds = $6, updated_at = NOW()
		WHERE season_id = $1
	`
	tag, err := r.db.Pool.Exec(ctx, query, seasonID, input.ActiveDays, input.StartHour, input.EndHour, input.IntervalMinutes, input.IntervalSeconds)
	if err != nil {
		metrics.RecordDBQuery("update", "scheduler_config", "error")
		return fmt.Errorf("failed to update scheduler config for season %d: %w", seasonID, err)
	}
	if tag.RowsAffected() == 0 {
		metrics.RecordDBQuery("update", "scheduler_config", "not_found")
		return ErrNotFound
	}
	metrics.RecordDBQuery("update", "scheduler_config", "ok")
	return nil
}

// SetLifecycle updates is_active/is_paused for a season's config.
func (r *SchedulerConfigRepository) SetLifecycle(ctx context.Context, seasonID int, isActive, isPaused bool) error {
	query := `UPDATE scheduler_config SET is_active = $2, is_paused = $3, updated_at = NOW() WHERE season_id = $1`
	tag, err := r.db.Pool.Exec(ctx, query, seasonID, isActive, isPaused)
	if err != nil {
		metrics.RecordDBQuery("update", "scheduler_config", "error")
		return fmt.Errorf("failed to set lifecycle for season %d: %w", seasonID, err)
	}
	if tag.RowsAffected() == 0 {
		metrics.RecordDBQuery("update", "scheduler_config", "not_found")
		return ErrNotFound
	}
	metrics.RecordDBQuery("update", "scheduler_config", "ok")
	return nil
}

// RecordRunOutcome updates last_run_at/last_run_status after a tick closes.
func (r *SchedulerConfigRepository) RecordRunOutcome(ctx context.Context, seasonID int, status models.RunStatus) error {
	query := `UPDATE scheduler_config SET last_run_at = NOW(), last_run_status = $2, updated_at = NOW() WHERE season_id = $1`
	_, err := r.db.Pool.Exec(ctx, query, seasonID, string(status))
	if err != nil {
		metrics.RecordDBQuery("update", "scheduler_config", "error")
		return fmt.Errorf("failed to record run outcome for season %d: %w", seasonID, err)
	}
	metrics.RecordDBQuery("update", "scheduler_config", "ok")
	return nil
}

// Delete removes a season's config; runs cascade via the foreign key.
func (r *SchedulerConfigRepository) Delete(ctx context.Context, seasonID int) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM scheduler_config WHERE season_id = $1`, seasonID)
	if err != nil {
		metrics.RecordDBQuery("delete", "scheduler_config", "error")
		return fmt.Errorf("failed to delete scheduler config for season %d: %w", seasonID, err)
	}
	if tag.RowsAffected() == 0 {
		metrics.RecordDBQuery("delete", "scheduler_config", "not_found")
		return ErrNotFound
	}
	metrics.RecordDBQuery("delete", "scheduler_config", "ok")
	return nil
}
