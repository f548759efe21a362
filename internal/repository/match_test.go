package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubarchive/ingestion/internal/models"
)

func TestMatchRepository_UpsertDedup(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	m := &models.Match{
		ExternalMatchID:    "match-dedup-1",
		ExternalTimestamp:  1700000000,
		HomeClubExternalID: "111",
		AwayClubExternalID: "222",
		HomeScore:          sql.NullInt32{Int32: 3, Valid: true},
		AwayScore:          sql.NullInt32{Int32: 1, Valid: true},
		IsHome:             sql.NullBool{Bool: true, Valid: true},
		RawPayload:         []byte(`{}`),
	}

	isNew, err := db.Matches.Upsert(ctx, db.Pool, m)
	require.NoError(t, err)
	assert.True(t, isNew)

	m2 := *m
	m2.ID = 0
	isNew, err = db.Matches.Upsert(ctx, db.Pool, &m2)
	require.NoError(t, err)
	assert.False(t, isNew, "replayed match must not be counted as new")
}
