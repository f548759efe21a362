package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRawPlayerStats_String(t *testing.T) {
	s := RawPlayerStats{
		"playername": "PuckHog99",
		"empty":      "",
		"number":     json.Number("42"),
		"wrongtype":  3.14,
		"nullval":    nil,
	}

	assert.Equal(t, "PuckHog99", s.String("playername").String)
	assert.True(t, s.String("playername").Valid)

	assert.False(t, s.String("empty").Valid)
	assert.False(t, s.String("missing").Valid)
	assert.False(t, s.String("nullval").Valid)

	assert.Equal(t, "42", s.String("number").String)
	assert.False(t, s.String("wrongtype").Valid)
}

func TestRawPlayerStats_Int(t *testing.T) {
	s := RawPlayerStats{
		"goals":       json.Number("3"),
		"assists":     float64(2),
		"shots":       "7",
		"garbage":     "not-a-number",
		"nested":      map[string]interface{}{"a": 1},
		"nullval":     nil,
	}

	assert.Equal(t, int32(3), s.Int("goals").Int32)
	assert.True(t, s.Int("goals").Valid)

	assert.Equal(t, int32(2), s.Int("assists").Int32)
	assert.Equal(t, int32(7), s.Int("shots").Int32)

	assert.False(t, s.Int("garbage").Valid)
	assert.False(t, s.Int("missing").Valid)
	assert.False(t, s.Int("nested").Valid)
	assert.False(t, s.Int("nullval").Valid)
}

func TestRawPlayerStats_Float(t *testing.T) {
	s := RawPlayerStats{
		"rating":  json.Number("7.85"),
		"pct":     float64(0.333),
		"asText":  "1.5",
		"garbage": "nope",
	}

	assert.InDelta(t, 7.85, s.Float("rating").Float64, 0.0001)
	assert.True(t, s.Float("rating").Valid)
	assert.InDelta(t, 0.333, s.Float("pct").Float64, 0.0001)
	assert.InDelta(t, 1.5, s.Float("asText").Float64, 0.0001)

	assert.False(t, s.Float("garbage").Valid)
	assert.False(t, s.Float("missing").Valid)
}

func TestRawPlayerStats_Gamertag(t *testing.T) {
	withPlayername := RawPlayerStats{"playername": "SniperWolf"}
	assert.Equal(t, "SniperWolf", withPlayername.Gamertag())

	withPersonaOnly := RawPlayerStats{"persona": "GoalieGuru"}
	assert.Equal(t, "GoalieGuru", withPersonaOnly.Gamertag())

	preferPlayername := RawPlayerStats{"playername": "First", "persona": "Second"}
	assert.Equal(t, "First", preferPlayername.Gamertag())

	empty := RawPlayerStats{}
	assert.Equal(t, "", empty.Gamertag())
}
