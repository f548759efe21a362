package persist

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"clubarchive/ingestion/internal/models"
)

func TestBuildMatch_HomePerspectiveWin(t *testing.T) {
	raw := models.RawMatch{
		MatchID:   "m1",
		Timestamp: 1700000000,
		Clubs: map[string]models.RawClubResult{
			"111": {Goals: json.Number("3"), Result: "win", TeamSide: json.Number("0")},
			"222": {Goals: json.Number("1"), Result: "loss", TeamSide: json.Number("1")},
		},
	}

	m, opponent, winner := buildMatch(1, "111", raw)

	assert.Equal(t, "111", m.HomeClubExternalID)
	assert.Equal(t, "222", m.AwayClubExternalID)
	assert.True(t, m.IsHome.Bool)
	assert.Equal(t, int32(3), m.HomeScore.Int32)
	assert.Equal(t, int32(1), m.AwayScore.Int32)
	assert.Equal(t, "222", opponent)
	assert.Equal(t, "111", winner)
}

func TestBuildMatch_AwayPerspectiveLoss(t *testing.T) {
	raw := models.RawMatch{
		MatchID:   "m2",
		Timestamp: 1700000001,
		Clubs: map[string]models.RawClubResult{
			"111": {Goals: json.Number("3"), Result: "win", TeamSide: json.Number("0")},
			"222": {Goals: json.Number("1"), Result: "loss", TeamSide: json.Number("1")},
		},
	}

	m, opponent, winner := buildMatch(1, "222", raw)

	assert.Equal(t, "111", m.HomeClubExternalID)
	assert.Equal(t, "222", m.AwayClubExternalID)
	assert.False(t, m.IsHome.Bool)
	assert.Equal(t, "111", opponent)
	assert.Equal(t, "111", winner)
}

func TestBuildMatch_MissingSelfPerspective(t *testing.T) {
	raw := models.RawMatch{
		MatchID:   "m3",
		Timestamp: 1700000002,
		Clubs: map[string]models.RawClubResult{
			"999": {Goals: json.Number("2"), Result: "win", TeamSide: json.Number("0")},
		},
	}

	m, opponent, winner := buildMatch(1, "111", raw)

	assert.Equal(t, "m3", m.ExternalMatchID)
	assert.False(t, m.IsHome.Valid)
	assert.Equal(t, "999", opponent)
	assert.Empty(t, winner)
}

func TestBuildMatch_Tie(t *testing.T) {
	raw := models.RawMatch{
		MatchID:   "m4",
		Timestamp: 1700000003,
		Clubs: map[string]models.RawClubResult{
			"111": {Goals: json.Number("2"), Result: "tie", TeamSide: json.Number("0")},
			"222": {Goals: json.Number("2"), Result: "tie", TeamSide: json.Number("1")},
		},
	}

	_, _, winner := buildMatch(1, "111", raw)
	assert.Empty(t, winner)
}
