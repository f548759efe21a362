package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"clubarchive/ingestion/internal/metrics"
	"clubarchive/ingestion/internal/models"
)

// MatchRepository persists Match rows, keyed by (external_match_id, external_timestamp).
type MatchRepository struct {
	db *Database
}

// Upsert inserts a match, reporting whether it was newly inserted. A
// unique-violation on the dedup key is the normal "already known" path,
// not an error: ON CONFLICT DO NOTHING makes the second insert of the
// same match a no-op and reports isNew=false.
func (r *MatchRepository) Upsert(ctx context.Context, q Querier, m *models.Match) (isNew bool, err error) {
	query := `
		INSERT INTO match (external_match_id, external_timestamp, season_id, winning_club_id, home_club_external_id, away_club_external_id, home_score, away_score, is_home, raw_payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (external_match_id, external_timestamp) DO NOTHING
		RETURNING id
	`
	err = q.QueryRow(ctx, query,
		m.ExternalMatchID, m.ExternalTimestamp, m.SeasonID, m.WinningClubID,
		m.HomeClubExternalID, m.AwayClubExternalID, m.HomeScore, m.AwayScore,
		m.IsHome, m.RawPayload,
	).Scan(&m.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.RecordDBQuery("upsert", "match", "duplicate")
			return false, nil
		}
		metrics.RecordDBQuery("upsert", "match", "error")
		return false, fmt.Errorf("failed to upsert match %s: %w", m.ExternalMatchID, err)
	}
	metrics.RecordDBQuery("upsert", "match", "ok")
	return true, nil
}

// GetByExternalID returns a match by (external_match_id, external_timestamp), or ErrNotFound.
func (r *MatchRepository) GetByExternalID(ctx context.Context, externalMatchID string, externalTimestamp int64) (*models.Match, error) {
	query := `
		SELECT id, external_match_id, external_timestamp, season_id, winning_club_id, home_club_external_id, away_club_external_id, home_score, away_score, is_home, raw_payload, created_at
		FROM match WHERE external_match_id = $1 AND external_timestamp = $2
	`
	var m models.Match
	err := r.db.Pool.QueryRow(ctx, query, externalMatchID, externalTimestamp).Scan(
		&m.ID, &m.ExternalMatchID, &m.ExternalTimestamp, &m.SeasonID, &m.WinningClubID,
		&m.HomeClubExternalID, &m.AwayClubExternalID, &m.HomeScore, &m.AwayScore,
		&m.IsHome, &m.RawPayload, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", externalMatchID, err)
	}
	return &m, nil
}

// CountBySeasonID returns how many matches are stored for a season.
func (r *MatchRepository) CountBySeasonID(ctx context.Context, seasonID int) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM match WHERE season_id = $1`, seasonID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches for season %d: %w", seasonID, err)
	}
	return count, nil
}
