package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"clubarchive/ingestion/internal/models"
)

func mustGate(t *testing.T) *Gate {
	g, err := NewGate("America/New_York")
	require.NoError(t, err)
	return g
}

func TestGate_Admitted_WithinWindow(t *testing.T) {
	g := mustGate(t)
	// Monday 2024-01-01 14:00 America/New_York
	loc, _ := time.LoadLocation("America/New_York")
	now := time.Date(2024, 1, 1, 14, 0, 0, 0, loc)

	cfg := &models.SchedulerConfig{
		ActiveDays: []int{0, 1, 2, 3, 4},
		StartHour:  9,
		EndHour:    17,
	}

	require.True(t, g.Admitted(cfg, now))
}

func TestGate_Admitted_OutsideHours(t *testing.T) {
	g := mustGate(t)
	loc, _ := time.LoadLocation("America/New_York")
	now := time.Date(2024, 1, 1, 20, 0, 0, 0, loc)

	cfg := &models.SchedulerConfig{
		ActiveDays: []int{0, 1, 2, 3, 4},
		StartHour:  9,
		EndHour:    17,
	}

	require.False(t, g.Admitted(cfg, now))
}

func TestGate_Admitted_WrongDay(t *testing.T) {
	g := mustGate(t)
	loc, _ := time.LoadLocation("America/New_York")
	// 2024-01-06 is a Saturday
	now := time.Date(2024, 1, 6, 14, 0, 0, 0, loc)

	cfg := &models.SchedulerConfig{
		ActiveDays: []int{0, 1, 2, 3, 4},
		StartHour:  9,
		EndHour:    17,
	}

	require.False(t, g.Admitted(cfg, now))
}

func TestGate_Admitted_Paused(t *testing.T) {
	g := mustGate(t)
	loc, _ := time.LoadLocation("America/New_York")
	now := time.Date(2024, 1, 1, 14, 0, 0, 0, loc)

	cfg := &models.SchedulerConfig{
		ActiveDays: []int{0, 1, 2, 3, 4},
		StartHour:  9,
		EndHour:    17,
		IsPaused:   true,
	}

	require.False(t, g.Admitted(cfg, now))
}

func TestGate_Admitted_EmptyWindow(t *testing.T) {
	g := mustGate(t)
	loc, _ := time.LoadLocation("America/New_York")
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, loc)

	cfg := &models.SchedulerConfig{
		ActiveDays: []int{0, 1, 2, 3, 4, 5, 6},
		StartHour:  9,
		EndHour:    9,
	}

	require.False(t, g.Admitted(cfg, now))
}

func TestGate_Admitted_AlwaysOpen(t *testing.T) {
	g := mustGate(t)
	loc, _ := time.LoadLocation("America/New_York")
	now := time.Date(2024, 1, 6, 3, 0, 0, 0, loc)

	cfg := &models.SchedulerConfig{
		ActiveDays: []int{0, 1, 2, 3, 4, 5, 6},
		StartHour:  0,
		EndHour:    24,
	}

	require.True(t, g.Admitted(cfg, now))
}
