// Package recorder opens and closes the audit trail (SchedulerRun) for
// every tick, and derives the run's terminal status.
package recorder

import (
	"context"
	"fmt"

	"clubarchive/ingestion/internal/models"
	"clubarchive/ingestion/internal/repository"
)

// Recorder manages the lifecycle of one tick's audit record.
type Recorder struct {
	db *repository.Database
}

// New builds a Recorder backed by the given database.
func New(db *repository.Database) *Recorder {
	return &Recorder{db: db}
}

// Open inserts a new `running` SchedulerRun for the start of a tick.
func (r *Recorder) Open(ctx context.Context, schedulerConfigID, seasonID int) (*models.SchedulerRun, error) {
	run, err := r.db.SchedulerRuns.Open(ctx, schedulerConfigID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to open run: %w", err)
	}
	return run, nil
}

// Outcome accumulates counters and errors across one tick's club fetches.
type Outcome struct {
	MatchesFetched int
	MatchesNew     int
	AnyClubErrored bool
	AnyMatchFailed bool
	AnyMatchOK     bool
	ErrorMessages  []string
}

// Status derives the run's terminal status per spec §4.4:
// success if nothing failed, failed if nothing succeeded and something
// failed, partial otherwise.
func (o Outcome) Status() models.RunStatus {
	failed := o.AnyClubErrored || o.AnyMatchFailed
	succeeded := o.MatchesFetched > 0 || o.MatchesNew > 0 || o.AnyMatchOK

	switch {
	case !failed:
		return models.RunStatusSuccess
	case failed && !succeeded:
		return models.RunStatusFailed
	default:
		return models.RunStatusPartial
	}
}

// Close finalizes the run with the tick's outcome and mirrors the
// result onto the owning config's last_run_at/last_run_status.
func (r *Recorder) Close(ctx context.Context, run *models.SchedulerRun, outcome Outcome) error {
	errMsg := ""
	if len(outcome.ErrorMessages) > 0 {
		errMsg = joinErrors(outcome.ErrorMessages)
	}

	run.Close(outcome.Status(), outcome.MatchesFetched, outcome.MatchesNew, errMsg)

	if err := r.db.SchedulerRuns.Close(ctx, run); err != nil {
		return fmt.Errorf("failed to close run %d: %w", run.ID, err)
	}
	if err := r.db.SchedulerConfigs.RecordRunOutcome(ctx, run.SeasonID, run.Status); err != nil {
		return fmt.Errorf("failed to record run outcome for season %d: %w", run.SeasonID, err)
	}
	return nil
}

// CloseCrashed marks a run as failed with the cause's message, keeping
// the counters reached so far, and mirrors that onto the config. The job
// runtime calls it when a tick panics.
func (r *Recorder) CloseCrashed(ctx context.Context, run *models.SchedulerRun, fetched, new int, cause error) error {
	run.Close(models.RunStatusFailed, fetched, new, joinErrors([]string{cause.Error()}))

	if err := r.db.SchedulerRuns.Close(ctx, run); err != nil {
		return fmt.Errorf("failed to close run %d: %w", run.ID, err)
	}
	if err := r.db.SchedulerConfigs.RecordRunOutcome(ctx, run.SeasonID, run.Status); err != nil {
		return fmt.Errorf("failed to record run outcome for season %d: %w", run.SeasonID, err)
	}
	return nil
}

func joinErrors(msgs []string) string {
	out := msgs[0]
	for _, m := range msgs[1:] {
		out += "; " + m
	}
	if len(out) > 2000 {
		out = out[:2000]
	}
	return out
}
