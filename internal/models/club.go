package models

import (
	"database/sql"
	"time"
)

// Club is a team known to the archive, identified internally by a
// database id and externally by a numeric id assigned by the upstream
// game service. The scheduler never mutates a club beyond opportunistically
// caching its resolved external id.
type Club struct {
	ID         int            `db:"id"`
	SeasonID   int            `db:"season_id"`
	Name       string         `db:"name"`
	Platform   string         `db:"platform"`
	ExternalID sql.NullString `db:"external_id"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}
