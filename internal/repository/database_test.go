package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for database operations. They require a live
// Postgres instance and are skipped unless DATABASE_TEST_HOST is set,
// matching the teacher's setupTestDB convention.

func setupTestDB(t *testing.T) (*Database, context.Context) {
	if os.Getenv("DATABASE_TEST_HOST") == "" {
		t.Skip("DATABASE_TEST_HOST not set, skipping integration test")
	}

	ctx := context.Background()

	cfg := Config{
		Host:     os.Getenv("DATABASE_TEST_HOST"),
		Port:     "5432",
		Database: "clubarchive_test",
		User:     "clubarchive",
		Password: os.Getenv("DATABASE_TEST_PASSWORD"),
		SSLMode:  "disable",
	}

	db, err := NewDatabase(ctx, cfg)
	require.NoError(t, err, "Failed to connect to test database")

	return db, ctx
}

func teardownTestDB(t *testing.T, db *Database) {
	db.Close()
}

func TestDatabaseConnection(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	err := db.Health(ctx)
	assert.NoError(t, err, "Database health check should pass")

	stats := db.PoolStats()
	assert.NotNil(t, stats, "Should return connection pool stats")
	assert.GreaterOrEqual(t, stats["max_conns"].(int32), int32(1), "Should have at least 1 max connection")
}

func TestDatabasePing(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := db.Pool.Ping(ctx)
	assert.NoError(t, err, "Should successfully ping database")
}
