package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"clubarchive/ingestion/internal/metrics"
	"clubarchive/ingestion/internal/models"
)

// ClubRepository provides read access to clubs and opportunistic
// caching of their resolved external id. The scheduler never mutates a
// club beyond that resolution.
type ClubRepository struct {
	db *Database
}

// ListBySeasonID returns every club attached to a season.
func (r *ClubRepository) ListBySeasonID(ctx context.Context, seasonID int) ([]*models.Club, error) {
	query := `
		SELECT c.id, c.season_id, c.name, c.platform, c.external_id, c.created_at, c.updated_at
		FROM club c
		JOIN club_season_relationship csr ON csr.club_id = c.id
		WHERE csr.season_id = $1
	`
	rows, err := r.db.Pool.Query(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs for season %d: %w", seasonID, err)
	}
	defer rows.Close()

	var clubs []*models.Club
	for rows.Next() {
		var c models.Club
		if err := rows.Scan(&c.ID, &c.SeasonID, &c.Name, &c.Platform, &c.ExternalID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan club row: %w", err)
		}
		clubs = append(clubs, &c)
	}
	return clubs, rows.Err()
}

// UpdateExternalID caches a newly-resolved external club id.
func (r *ClubRepository) UpdateExternalID(ctx context.Context, clubID int, externalID string) error {
	query := `UPDATE club SET external_id = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, query, clubID, externalID)
	if err != nil {
		metrics.RecordDBQuery("update", "club", "error")
		return fmt.Errorf("failed to update external id for club %d: %w", clubID, err)
	}
	if tag.RowsAffected() == 0 {
		metrics.RecordDBQuery("update", "club", "not_found")
		return ErrNotFound
	}
	metrics.RecordDBQuery("update", "club", "ok")
	return nil
}

// GetByExternalID looks up a club by its upstream numeric id, scoped to
// a season, for winning-club attribution during match persistence.
func (r *ClubRepository) GetByExternalID(ctx context.Context, seasonID int, externalID string) (*models.Club, error) {
	query := `SELECT id, season_id, name, platform, external_id, created_at, updated_at FROM club WHERE season_id = $1 AND external_id = $2`
	var c models.Club
	err := r.db.Pool.QueryRow(ctx, query, seasonID, externalID).Scan(&c.ID, &c.SeasonID, &c.Name, &c.Platform, &c.ExternalID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get club by external id %s: %w", externalID, err)
	}
	return &c, nil
}
