package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"clubarchive/ingestion/internal/metrics"
	"clubarchive/ingestion/internal/models"
)

// PlayerMatchStatsRepository persists PlayerMatchStats rows, keyed by
// (external_player_id, external_match_id).
type PlayerMatchStatsRepository struct {
	db *Database
}

// Insert stores a stats row. On unique-violation (a replayed match) the
// insert is a silent no-op, matching the dedup contract.
func (r *PlayerMatchStatsRepository) Insert(ctx context.Context, q Querier, s *models.PlayerMatchStats) error {
	query := `
		INSERT INTO player_match_stats (
			external_player_id, external_match_id,
			stat_class, is_guest, opponent_club_id, opponent_score, opponent_team_id, player_dnf, player_level,
			p_nhl_online_game_type, position, pos_sorted, rating_defense, rating_offense, rating_teamplay,
			score, team_id, team_side, toi, toiseconds, client_platform,
			glbrksavepct, glbrksaves, glbrkshots, gldsaves, glga, glgaa, glpensavepct, glpensaves, glpenshots,
			glpkclearzone, glpokechecks, glsavepct, glsaves, glshots, glsoperiods,
			skassists, skbs, skdeflections, skfol, skfopct, skfow, skgiveaways, skgoals, skgwg, skhits,
			skinterceptions, skpassattempts, skpasses, skpasspct, skpenaltiesdrawn, skpim, skpkclearzone,
			skplusmin, skpossession, skppg, sksaucerpasses, skshg, skshotattempts, skshotonnetpct, skshotpct,
			skshots, sktakeaways, created_at
		) VALUES (
			$1, $2,
			$3, $4, $5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21,
			$22, $23, $24, $25, $26, $27, $28, $29, $30,
			$31, $32, $33, $34, $35, $36,
			$37, $38, $39, $40, $41, $42, $43, $44, $45, $46,
			$47, $48, $49, $50, $51, $52, $53,
			$54, $55, $56, $57, $58, $59, $60, $61,
			$62, $63, NOW()
		)
		ON CONFLICT (external_player_id, external_match_id) DO NOTHING
	`
	_, err := q.Exec(ctx, query,
		s.ExternalPlayerID, s.ExternalMatchID,
		s.StatClass, s.IsGuest, s.OpponentClubID, s.OpponentScore, s.OpponentTeamID, s.PlayerDNF, s.PlayerLevel,
		s.OnlineGameType, s.Position, s.PosSorted, s.RatingDefense, s.RatingOffense, s.RatingTeamplay,
		s.Score, s.TeamID, s.TeamSide, s.TOI, s.TOISeconds, s.ClientPlatform,
		s.GLBrkSavePct, s.GLBrkSaves, s.GLBrkShots, s.GLDSaves, s.GLGA, s.GLGAA, s.GLPenSavePct, s.GLPenSaves, s.GLPenShots,
		s.GLPkClearZone, s.GLPokechecks, s.GLSavePct, s.GLSaves, s.GLShots, s.GLSOPeriods,
		s.SkAssists, s.SkBS, s.SkDeflections, s.SkFOL, s.SkFOPct, s.SkFOW, s.SkGiveaways, s.SkGoals, s.SkGWG, s.SkHits,
		s.SkInterceptions, s.SkPassAttempts, s.SkPasses, s.SkPassPct, s.SkPenaltiesDrawn, s.SkPIM, s.SkPkClearZone,
		s.SkPlusMin, s.SkPossession, s.SkPPG, s.SkSaucerPasses, s.SkSHG, s.SkShotAttempts, s.SkShotOnNetPct, s.SkShotPct,
		s.SkShots, s.SkTakeaways,
	)
	if err != nil {
		metrics.RecordDBQuery("insert", "player_match_stats", "error")
		return fmt.Errorf("failed to insert stats for player %s / match %s: %w", s.ExternalPlayerID, s.ExternalMatchID, err)
	}
	metrics.RecordDBQuery("insert", "player_match_stats", "ok")
	return nil
}

// CountByMatchID returns how many player stat rows exist for a match.
func (r *PlayerMatchStatsRepository) CountByMatchID(ctx context.Context, externalMatchID string) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM player_match_stats WHERE external_match_id = $1`, externalMatchID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count stats for match %s: %w", externalMatchID, err)
	}
	return count, nil
}
