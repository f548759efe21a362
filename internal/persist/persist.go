// Package persist implements the per-match idempotent write pipeline:
// match upsert, perspective resolution, player extraction, and stats
// insert, each match scoped to its own short transaction.
package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"clubarchive/ingestion/internal/models"
	"clubarchive/ingestion/internal/repository"
)

// Persister decomposes and stores one match at a time.
type Persister struct {
	db *repository.Database
}

// New builds a Persister backed by the given database.
func New(db *repository.Database) *Persister {
	return &Persister{db: db}
}

// Result reports the effect of persisting one match.
type Result struct {
	IsNew bool
}

// Persist runs the full pipeline for one raw match, fetched from the
// perspective of fetchingClubExternalID, inside one transaction. A
// duplicate match (already known) short-circuits after the match
// upsert without touching players or stats, per spec.
func (p *Persister) Persist(ctx context.Context, seasonID int, fetchingClubExternalID string, raw models.RawMatch) (Result, error) {
	tx, err := p.db.BeginTx(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to begin match transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	match, _, winnerExternalID := buildMatch(seasonID, fetchingClubExternalID, raw)
	if winnerExternalID != "" {
		if club, err := p.db.Clubs.GetByExternalID(ctx, seasonID, winnerExternalID); err == nil {
			match.WinningClubID = sql.NullInt32{Int32: int32(club.ID), Valid: true}
		}
	}

	isNew, err := p.db.Matches.Upsert(ctx, tx, match)
	if err != nil {
		return Result{}, fmt.Errorf("failed to upsert match %s: %w", raw.MatchID, err)
	}
	if !isNew {
		if err := tx.Commit(ctx); err != nil {
			return Result{}, fmt.Errorf("failed to commit dedup no-op for match %s: %w", raw.MatchID, err)
		}
		return Result{IsNew: false}, nil
	}

	if err := p.persistPlayers(ctx, tx, raw); err != nil {
		return Result{}, fmt.Errorf("failed to persist players for match %s: %w", raw.MatchID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Result{}, fmt.Errorf("failed to commit match %s: %w", raw.MatchID, err)
	}

	return Result{IsNew: true}, nil
}

// buildMatch derives the canonical Match row from the fetching club's
// perspective: home/away assignment and winner attribution come from
// the club whose fetch produced this payload. It returns the match, the
// opponent's external id, and the winning club's external id (empty if
// the result was a tie or undecodable).
func buildMatch(seasonID int, fetchingClubExternalID string, raw models.RawMatch) (m *models.Match, opponentExternalID, winnerExternalID string) {
	m = &models.Match{
		ExternalMatchID:   raw.MatchID,
		ExternalTimestamp: raw.Timestamp,
		SeasonID:          sql.NullInt32{Int32: int32(seasonID), Valid: seasonID != 0},
		RawPayload:        json.RawMessage(raw.Raw),
	}

	self, hasSelf := raw.Clubs[fetchingClubExternalID]
	if !hasSelf {
		// The upstream keyed the perspective differently than expected;
		// fall back to whichever entry is present. Acceptable since this
		// is a decode-shape edge case, not the common path.
		for id := range raw.Clubs {
			if id != fetchingClubExternalID {
				opponentExternalID = id
			}
		}
		return m, opponentExternalID, ""
	}

	teamSide, _ := self.TeamSide.Int64()
	isHome := teamSide == 0
	m.IsHome = sql.NullBool{Bool: isHome, Valid: true}

	selfGoals, selfGoalsErr := self.Goals.Int64()

	for id, c := range raw.Clubs {
		if id == fetchingClubExternalID {
			continue
		}
		opponentExternalID = id

		oppGoals, oppGoalsErr := c.Goals.Int64()

		if isHome {
			m.HomeClubExternalID = fetchingClubExternalID
			m.AwayClubExternalID = id
			if selfGoalsErr == nil {
				m.HomeScore = sql.NullInt32{Int32: int32(selfGoals), Valid: true}
			}
			if oppGoalsErr == nil {
				m.AwayScore = sql.NullInt32{Int32: int32(oppGoals), Valid: true}
			}
		} else {
			m.HomeClubExternalID = id
			m.AwayClubExternalID = fetchingClubExternalID
			if oppGoalsErr == nil {
				m.HomeScore = sql.NullInt32{Int32: int32(oppGoals), Valid: true}
			}
			if selfGoalsErr == nil {
				m.AwayScore = sql.NullInt32{Int32: int32(selfGoals), Valid: true}
			}
		}
	}

	switch self.Result {
	case "win":
		winnerExternalID = fetchingClubExternalID
	case "loss":
		winnerExternalID = opponentExternalID
	}

	return m, opponentExternalID, winnerExternalID
}

// persistPlayers iterates both teams' player arrays, upserting each
// player and inserting their stats row for this match.
func (p *Persister) persistPlayers(ctx context.Context, tx repository.Querier, raw models.RawMatch) error {
	for _, teamPlayers := range raw.Players {
		for externalPlayerID, stats := range teamPlayers {
			player := &models.Player{
				ExternalPlayerID: externalPlayerID,
				Gamertag:         stats.Gamertag(),
			}
			if err := p.db.Players.Upsert(ctx, tx, player); err != nil {
				log.Error().Err(err).Str("player_id", externalPlayerID).Msg("failed to upsert player, skipping their stats")
				continue
			}

			row := models.NewPlayerMatchStats(externalPlayerID, raw.MatchID, stats)
			if err := p.db.PlayerStats.Insert(ctx, tx, row); err != nil {
				log.Error().Err(err).Str("player_id", externalPlayerID).Str("match_id", raw.MatchID).Msg("failed to insert player stats")
				continue
			}
		}
	}
	return nil
}
