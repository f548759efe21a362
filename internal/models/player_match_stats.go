package models

import (
	"database/sql"
	"time"
)

// PlayerMatchStats is one player's full stat line for one match. The
// pair (ExternalPlayerID, ExternalMatchID) is globally unique. Every
// numeric field is nullable: a value that fails to parse, or is simply
// absent from the upstream payload, becomes null rather than raising.
type PlayerMatchStats struct {
	ID                int    `db:"id"`
	ExternalPlayerID  string `db:"external_player_id"`
	ExternalMatchID   string `db:"external_match_id"`

	StatClass       sql.NullInt32 `db:"stat_class"`
	IsGuest         sql.NullInt32 `db:"is_guest"`
	OpponentClubID  sql.NullString `db:"opponent_club_id"`
	OpponentScore   sql.NullInt32 `db:"opponent_score"`
	OpponentTeamID  sql.NullString `db:"opponent_team_id"`
	PlayerDNF       sql.NullInt32 `db:"player_dnf"`
	PlayerLevel     sql.NullInt32 `db:"player_level"`
	OnlineGameType  sql.NullString `db:"p_nhl_online_game_type"`
	Position        sql.NullString `db:"position"`
	PosSorted       sql.NullInt32 `db:"pos_sorted"`
	RatingDefense   sql.NullFloat64 `db:"rating_defense"`
	RatingOffense   sql.NullFloat64 `db:"rating_offense"`
	RatingTeamplay  sql.NullFloat64 `db:"rating_teamplay"`
	Score           sql.NullInt32 `db:"score"`
	TeamID          sql.NullString `db:"team_id"`
	TeamSide        sql.NullInt32 `db:"team_side"`
	TOI             sql.NullInt32 `db:"toi"`
	TOISeconds      sql.NullInt32 `db:"toiseconds"`
	ClientPlatform  sql.NullString `db:"client_platform"`

	// Goaltending
	GLBrkSavePct  sql.NullFloat64 `db:"glbrksavepct"`
	GLBrkSaves    sql.NullInt32   `db:"glbrksaves"`
	GLBrkShots    sql.NullInt32   `db:"glbrkshots"`
	GLDSaves      sql.NullInt32   `db:"gldsaves"`
	GLGA          sql.NullInt32   `db:"glga"`
	GLGAA         sql.NullFloat64 `db:"glgaa"`
	GLPenSavePct  sql.NullFloat64 `db:"glpensavepct"`
	GLPenSaves    sql.NullInt32   `db:"glpensaves"`
	GLPenShots    sql.NullInt32   `db:"glpenshots"`
	GLPkClearZone sql.NullInt32   `db:"glpkclearzone"`
	GLPokechecks  sql.NullInt32   `db:"glpokechecks"`
	GLSavePct     sql.NullFloat64 `db:"glsavepct"`
	GLSaves       sql.NullInt32   `db:"glsaves"`
	GLShots       sql.NullInt32   `db:"glshots"`
	GLSOPeriods   sql.NullInt32   `db:"glsoperiods"`

	// Skater
	SkAssists        sql.NullInt32   `db:"skassists"`
	SkBS             sql.NullInt32   `db:"skbs"`
	SkDeflections    sql.NullInt32   `db:"skdeflections"`
	SkFOL            sql.NullInt32   `db:"skfol"`
	SkFOPct          sql.NullFloat64 `db:"skfopct"`
	SkFOW            sql.NullInt32   `db:"skfow"`
	SkGiveaways      sql.NullInt32   `db:"skgiveaways"`
	SkGoals          sql.NullInt32   `db:"skgoals"`
	SkGWG            sql.NullInt32   `db:"skgwg"`
	SkHits           sql.NullInt32   `db:"skhits"`
	SkInterceptions  sql.NullInt32   `db:"skinterceptions"`
	SkPassAttempts   sql.NullInt32   `db:"skpassattempts"`
	SkPasses         sql.NullInt32   `db:"skpasses"`
	SkPassPct        sql.NullFloat64 `db:"skpasspct"`
	SkPenaltiesDrawn sql.NullInt32   `db:"skpenaltiesdrawn"`
	SkPIM            sql.NullInt32   `db:"skpim"`
	SkPkClearZone    sql.NullInt32   `db:"skpkclearzone"`
	SkPlusMin        sql.NullInt32   `db:"skplusmin"`
	SkPossession     sql.NullInt32   `db:"skpossession"`
	SkPPG            sql.NullInt32   `db:"skppg"`
	SkSaucerPasses   sql.NullInt32   `db:"sksaucerpasses"`
	SkSHG            sql.NullInt32   `db:"skshg"`
	SkShotAttempts   sql.NullInt32   `db:"skshotattempts"`
	SkShotOnNetPct   sql.NullFloat64 `db:"skshotonnetpct"`
	SkShotPct        sql.NullFloat64 `db:"skshotpct"`
	SkShots          sql.NullInt32   `db:"skshots"`
	SkTakeaways      sql.NullInt32   `db:"sktakeaways"`

	CreatedAt time.Time `db:"created_at"`
}

// NewPlayerMatchStats coerces a raw upstream stat blob into a
// PlayerMatchStats row keyed by (externalPlayerID, externalMatchID).
// Every field is best-effort: a value that fails to parse becomes
// null, matching spec.md's coercion rule.
func NewPlayerMatchStats(externalPlayerID, externalMatchID string, raw RawPlayerStats) *PlayerMatchStats {
	return &PlayerMatchStats{
		ExternalPlayerID: externalPlayerID,
		ExternalMatchID:  externalMatchID,

		StatClass:      raw.Int("statclass"),
		IsGuest:        raw.Int("isGuest"),
		OpponentClubID: raw.String("opponentClubId"),
		OpponentScore:  raw.Int("opponentScore"),
		OpponentTeamID: raw.String("opponentTeamId"),
		PlayerDNF:      raw.Int("player_dnf"),
		PlayerLevel:    raw.Int("playerLevel"),
		OnlineGameType: raw.String("p_nhl_onlinegametype"),
		Position:       raw.String("position"),
		PosSorted:      raw.Int("possorted"),
		RatingDefense:  raw.Float("ratingDefense"),
		RatingOffense:  raw.Float("ratingOffense"),
		RatingTeamplay: raw.Float("ratingTeamplay"),
		Score:          raw.Int("score"),
		TeamID:         raw.String("teamId"),
		TeamSide:       raw.Int("teamSide"),
		TOI:            raw.Int("toi"),
		TOISeconds:     raw.Int("toiseconds"),
		ClientPlatform: raw.String("clientPlatform"),

		GLBrkSavePct:  raw.Float("glbrksavepct"),
		GLBrkSaves:    raw.Int("glbrksaves"),
		GLBrkShots:    raw.Int("glbrkshots"),
		GLDSaves:      raw.Int("gldsaves"),
		GLGA:          raw.Int("glga"),
		GLGAA:         raw.Float("glgaa"),
		GLPenSavePct:  raw.Float("glpensavepct"),
		GLPenSaves:    raw.Int("glpensaves"),
		GLPenShots:    raw.Int("glpenshots"),
		GLPkClearZone: raw.Int("glpkclearzone"),
		GLPokechecks:  raw.Int("glpokechecks"),
		GLSavePct:     raw.Float("glsavepct"),
		GLSaves:       raw.Int("glsaves"),
		GLShots:       raw.Int("glshots"),
		GLSOPeriods:   raw.Int("glsoperiods"),

		SkAssists:        raw.Int("skassists"),
		SkBS:             raw.Int("skbs"),
		SkDeflections:    raw.Int("skdeflections"),
		SkFOL:            raw.Int("skfol"),
		SkFOPct:          raw.Float("skfopct"),
		SkFOW:            raw.Int("skfow"),
		SkGiveaways:      raw.Int("skgiveaways"),
		SkGoals:          raw.Int("skgoals"),
		SkGWG:            raw.Int("skgwg"),
		SkHits:           raw.Int("skhits"),
		SkInterceptions:  raw.Int("skinterceptions"),
		SkPassAttempts:   raw.Int("skpassattempts"),
		SkPasses:         raw.Int("skpasses"),
		SkPassPct:        raw.Float("skpasspct"),
		SkPenaltiesDrawn: raw.Int("skpenaltiesdrawn"),
		SkPIM:            raw.Int("skpim"),
		SkPkClearZone:    raw.Int("skpkclearzone"),
		SkPlusMin:        raw.Int("skplusmin"),
		SkPossession:     raw.Int("skpossession"),
		SkPPG:            raw.Int("skppg"),
		SkSaucerPasses:   raw.Int("sksaucerpasses"),
		SkSHG:            raw.Int("skshg"),
		SkShotAttempts:   raw.Int("skshotattempts"),
		SkShotOnNetPct:   raw.Float("skshotonnetpct"),
		SkShotPct:        raw.Float("skshotpct"),
		SkShots:          raw.Int("skshots"),
		SkTakeaways:      raw.Int("sktakeaways"),
	}
}
