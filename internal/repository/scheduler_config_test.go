package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubarchive/ingestion/internal/models"
)

func TestSchedulerConfigRepository_CreateAndGet(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	input := models.SchedulerConfigInput{
		ActiveDays:      []int{0, 1, 2, 3, 4},
		StartHour:       9,
		EndHour:         17,
		IntervalMinutes: 5,
	}

	cfg, err := db.SchedulerConfigs.Create(ctx, 90001, input)
	require.NoError(t, err)
	assert.False(t, cfg.IsActive)
	assert.False(t, cfg.IsPaused)

	fetched, err := db.SchedulerConfigs.GetBySeasonID(ctx, 90001)
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, fetched.ID)
	assert.Equal(t, 5, fetched.IntervalMinutes)
}

func TestSchedulerConfigRepository_GetBySeasonID_NotFound(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.SchedulerConfigs.GetBySeasonID(ctx, -1)
	assert.ErrorIs(t, err, ErrNotFound)
}
