package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Match is one canonical record of a completed game, stored relative
// to the club whose fetch first observed it. The pair (ExternalMatchID,
// ExternalTimestamp) is globally unique; enforced at storage.
type Match struct {
	ID               int             `db:"id"`
	ExternalMatchID  string          `db:"external_match_id"`
	ExternalTimestamp int64          `db:"external_timestamp"`
	SeasonID         sql.NullInt32   `db:"season_id"`
	WinningClubID    sql.NullInt32   `db:"winning_club_id"`
	HomeClubExternalID string        `db:"home_club_external_id"`
	AwayClubExternalID string        `db:"away_club_external_id"`
	HomeScore        sql.NullInt32   `db:"home_score"`
	AwayScore        sql.NullInt32   `db:"away_score"`
	IsHome           sql.NullBool    `db:"is_home"`
	RawPayload       json.RawMessage `db:"raw_payload"`
	CreatedAt        time.Time       `db:"created_at"`
}

// RawMatch is the shape of one upstream match object, as returned by
// the List-matches endpoint. Fields not consumed by the persister are
// left in RawPayload for the audit trail.
type RawMatch struct {
	MatchID   string                    `json:"matchId"`
	Timestamp int64                     `json:"timestamp"`
	Clubs     map[string]RawClubResult  `json:"clubs"`
	Players   map[string]map[string]RawPlayerStats `json:"players"`
	Raw       json.RawMessage           `json:"-"`
}

// RawClubResult is one participating club's perspective of a match.
type RawClubResult struct {
	Goals    json.Number `json:"goals"`
	Result   string      `json:"result"`
	TeamSide json.Number `json:"teamSide"` // "0" = home, "1" = away
}

// RawPlayerStats is the loosely-typed stat blob for one player in one
// match, as returned by the upstream. Every field may be absent or of
// the wrong type; coercion never raises, it nulls the field instead.
type RawPlayerStats map[string]interface{}

// String reads a string field, tolerating numeric encodings.
func (s RawPlayerStats) String(key string) sql.NullString {
	v, ok := s[key]
	if !ok || v == nil {
		return sql.NullString{}
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return sql.NullString{}
		}
		return sql.NullString{String: t, Valid: true}
	case json.Number:
		return sql.NullString{String: t.String(), Valid: true}
	default:
		return sql.NullString{}
	}
}

// Int reads a numeric field, coercing floats/strings; failure to parse
// or a missing value becomes null, never an error.
func (s RawPlayerStats) Int(key string) sql.NullInt32 {
	v, ok := s[key]
	if !ok || v == nil {
		return sql.NullInt32{}
	}
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return sql.NullInt32{}
		}
		return sql.NullInt32{Int32: int32(f), Valid: true}
	case float64:
		return sql.NullInt32{Int32: int32(t), Valid: true}
	case string:
		var n json.Number = json.Number(t)
		f, err := n.Float64()
		if err != nil {
			return sql.NullInt32{}
		}
		return sql.NullInt32{Int32: int32(f), Valid: true}
	default:
		return sql.NullInt32{}
	}
}

// Float reads a numeric field as a float, same coercion rule as Int.
func (s RawPlayerStats) Float(key string) sql.NullFloat64 {
	v, ok := s[key]
	if !ok || v == nil {
		return sql.NullFloat64{}
	}
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return sql.NullFloat64{}
		}
		return sql.NullFloat64{Float64: f, Valid: true}
	case float64:
		return sql.NullFloat64{Float64: t, Valid: true}
	case string:
		var n json.Number = json.Number(t)
		f, err := n.Float64()
		if err != nil {
			return sql.NullFloat64{}
		}
		return sql.NullFloat64{Float64: f, Valid: true}
	default:
		return sql.NullFloat64{}
	}
}

// Gamertag extracts the player's display name from a stats blob under
// either of the two keys the upstream is observed to use.
func (s RawPlayerStats) Gamertag() string {
	if v := s.String("playername"); v.Valid {
		return v.String
	}
	if v := s.String("persona"); v.Valid {
		return v.String
	}
	return ""
}
