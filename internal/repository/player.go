package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"clubarchive/ingestion/internal/metrics"
	"clubarchive/ingestion/internal/models"
)

// PlayerRepository persists Player rows, keyed by external_player_id.
type PlayerRepository struct {
	db *Database
}

// Upsert inserts a player or refreshes its gamertag if it changed.
func (r *PlayerRepository) Upsert(ctx context.Context, q Querier, p *models.Player) error {
	query := `
		INSERT INTO player (external_player_id, gamertag, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (external_player_id) DO UPDATE SET
			gamertag = EXCLUDED.gamertag,
			updated_at = NOW()
		WHERE player.gamertag IS DISTINCT FROM EXCLUDED.gamertag
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query, p.ExternalPlayerID, p.Gamertag).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// gamertag unchanged: conflict target matched but WHERE clause
			// suppressed the update, so RETURNING produced nothing. Fetch
			// the existing row directly.
			err := q.QueryRow(ctx,
				`SELECT id, created_at, updated_at FROM player WHERE external_player_id = $1`,
				p.ExternalPlayerID,
			).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
			if err != nil {
				metrics.RecordDBQuery("upsert", "player", "error")
				return err
			}
			metrics.RecordDBQuery("upsert", "player", "unchanged")
			return nil
		}
		metrics.RecordDBQuery("upsert", "player", "error")
		return fmt.Errorf("failed to upsert player %s: %w", p.ExternalPlayerID, err)
	}
	metrics.RecordDBQuery("upsert", "player", "ok")
	return nil
}

// GetByExternalID returns a player by external id, or ErrNotFound.
func (r *PlayerRepository) GetByExternalID(ctx context.Context, externalPlayerID string) (*models.Player, error) {
	query := `SELECT id, external_player_id, gamertag, created_at, updated_at FROM player WHERE external_player_id = $1`
	var p models.Player
	err := r.db.Pool.QueryRow(ctx, query, externalPlayerID).Scan(&p.ID, &p.ExternalPlayerID, &p.Gamertag, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", externalPlayerID, err)
	}
	return &p, nil
}
