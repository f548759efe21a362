package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPlayerMatchStats_CoercesSkaterLine(t *testing.T) {
	raw := RawPlayerStats{
		"skgoals":     json.Number("2"),
		"skassists":   json.Number("1"),
		"skshots":     json.Number("6"),
		"ratingteamplay": "not-present-under-this-key",
		"ratingOffense": json.Number("8.4"),
		"teamSide":    json.Number("0"),
		"position":    "center",
	}

	stats := NewPlayerMatchStats("1000123456789", "match-abc", raw)

	assert.Equal(t, "1000123456789", stats.ExternalPlayerID)
	assert.Equal(t, "match-abc", stats.ExternalMatchID)
	assert.Equal(t, int32(2), stats.SkGoals.Int32)
	assert.Equal(t, int32(1), stats.SkAssists.Int32)
	assert.Equal(t, int32(6), stats.SkShots.Int32)
	assert.InDelta(t, 8.4, stats.RatingOffense.Float64, 0.0001)
	assert.Equal(t, "center", stats.Position.String)
	assert.Equal(t, int32(0), stats.TeamSide.Int32)
}

func TestNewPlayerMatchStats_MissingFieldsBecomeNull(t *testing.T) {
	stats := NewPlayerMatchStats("p1", "m1", RawPlayerStats{})

	assert.False(t, stats.SkGoals.Valid)
	assert.False(t, stats.RatingOffense.Valid)
	assert.False(t, stats.Position.Valid)
	assert.False(t, stats.OpponentClubID.Valid)
}

func TestNewPlayerMatchStats_MalformedValuesBecomeNullNotError(t *testing.T) {
	raw := RawPlayerStats{
		"skgoals":       "definitely-not-a-number",
		"ratingOffense": []int{1, 2, 3},
	}

	stats := NewPlayerMatchStats("p1", "m1", raw)

	assert.False(t, stats.SkGoals.Valid)
	assert.False(t, stats.RatingOffense.Valid)
}
