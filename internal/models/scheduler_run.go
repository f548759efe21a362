package models

import (
	"database/sql"
	"time"
)

// SchedulerRun is the immutable-after-close audit record for one tick
// of a season's ingestion job.
type SchedulerRun struct {
	ID              int            `db:"id"`
	SchedulerConfigID int          `db:"scheduler_config_id"`
	SeasonID        int            `db:"season_id"`
	StartedAt       time.Time      `db:"started_at"`
	FinishedAt      sql.NullTime   `db:"finished_at"`
	Status          RunStatus      `db:"status"`
	MatchesFetched  int            `db:"matches_fetched"`
	MatchesNew      int            `db:"matches_new"`
	ErrorMessage    sql.NullString `db:"error_message"`
}

// Close finalizes the run with the outcome of the tick.
func (r *SchedulerRun) Close(status RunStatus, fetched, new int, errMsg string) {
	r.FinishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	r.Status = status
	r.MatchesFetched = fetched
	r.MatchesNew = new
	if errMsg != "" {
		r.ErrorMessage = sql.NullString{String: errMsg, Valid: true}
	}
}
