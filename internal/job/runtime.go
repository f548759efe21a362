// Package job implements the per-season worker: one goroutine holding
// its own timer, honoring pause/stop, invoking the fetch pipeline on
// each admitted tick, and cooperating on cancellation between clubs and
// matches.
package job

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"clubarchive/ingestion/internal/clock"
	"clubarchive/ingestion/internal/metrics"
	"clubarchive/ingestion/internal/models"
	"clubarchive/ingestion/internal/persist"
	"clubarchive/ingestion/internal/recorder"
	"clubarchive/ingestion/internal/repository"
	"clubarchive/ingestion/internal/upstream"
)

// cronParser is used only to validate/describe the civil-time window as
// an equivalent cron expression for operator-facing logging. The tick
// itself never runs off this parser's schedule — each Job owns a plain
// time.Timer per spec's per-job-timer guidance.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// DescribeWindow renders a config's active days and start hour as a
// standard cron expression, validating it in the process. The end hour
// is not part of the expression. Used only for descriptive logging at
// job creation.
func DescribeWindow(cfg *models.SchedulerConfig) (string, error) {
	days := make([]string, len(cfg.ActiveDays))
	for i, d := range cfg.ActiveDays {
		// cron.Dow is 0=Sun..6=Sat; the domain is 0=Mon..6=Sun.
		days[i] = fmt.Sprintf("%d", (d+1)%7)
	}
	expr := fmt.Sprintf("0 %d * * %s", cfg.StartHour, strings.Join(days, ","))
	if _, err := cronParser.Parse(expr); err != nil {
		return "", fmt.Errorf("invalid window expression %q: %w", expr, err)
	}
	return expr, nil
}

// Deps bundles the collaborators a Job needs to run its pipeline.
type Deps struct {
	DB        *repository.Database
	Upstream  *upstream.Client
	Gate      *clock.Gate
	Persister *persist.Persister
	Recorder  *recorder.Recorder
}

// Job supervises the ingestion tick loop for exactly one season.
type Job struct {
	seasonID int
	deps     Deps

	mu     sync.RWMutex
	config *models.SchedulerConfig

	ticking atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New constructs a Job in a not-yet-started state.
func New(seasonID int, cfg *models.SchedulerConfig, deps Deps) *Job {
	if expr, err := DescribeWindow(cfg); err != nil {
		log.Warn().Err(err).Int("season_id", seasonID).Msg("could not describe job window")
	} else {
		log.Info().Int("season_id", seasonID).Str("window", expr).Msg("job created")
	}
	return &Job{seasonID: seasonID, config: cfg, deps: deps}
}

// SeasonID returns the season this job serves.
func (j *Job) SeasonID() int { return j.seasonID }

// Config returns a copy of the job's current configuration snapshot.
func (j *Job) Config() models.SchedulerConfig {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return *j.config
}

// SetConfig replaces the job's in-memory config snapshot; the run loop
// reads the interval from it when arming the next timer. The Manager
// does not call it: UpdateConfig replaces the whole worker instead.
func (j *Job) SetConfig(cfg *models.SchedulerConfig) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.config = cfg
}

// SetPaused flips the in-memory paused flag without tearing the worker down.
func (j *Job) SetPaused(paused bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.config.IsPaused = paused
}

// IsTicking reports whether a tick is currently in flight.
func (j *Job) IsTicking() bool { return j.ticking.Load() }

// Run starts the timer loop and blocks until Stop is called or the
// worker context is cancelled. Intended to be launched via `go job.Run()`.
func (j *Job) Run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	j.mu.Lock()
	j.cancel = cancel
	j.done = make(chan struct{})
	j.mu.Unlock()
	defer close(j.done)

	for {
		cfg := j.Config()
		interval := cfg.Interval()
		if interval <= 0 {
			interval = time.Minute
		}
		timer := time.NewTimer(interval)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			j.tick(ctx)
		}
	}
}

// Stop signals the run loop and any in-flight tick to cancel, and
// blocks until the loop has observed it and returned.
func (j *Job) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	done := j.done
	j.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if done != nil {
		<-done
	}
}

// tick runs one gate-check-then-fetch cycle. Overlapping ticks are
// impossible by construction (the timer loop only fires the next tick
// after this one returns), but the flag lets callers
// (Manager.ListWithStatus) observe whether a tick is currently in progress.
func (j *Job) tick(ctx context.Context) {
	j.ticking.Store(true)
	defer j.ticking.Store(false)

	cfg := j.Config()

	if !j.deps.Gate.Admitted(&cfg, time.Now()) {
		return
	}

	if err := j.runFetchPipeline(ctx, cfg); err != nil {
		log.Error().Err(err).Int("season_id", j.seasonID).Msg("fetch pipeline failed")
	}
}

// TriggerNow runs the fetch pipeline immediately, bypassing the window
// gate. Used by the triggerrun CLI. It still respects cancellation and
// records a normal audit run.
func (j *Job) TriggerNow(ctx context.Context) error {
	return j.runFetchPipeline(ctx, j.Config())
}

// runFetchPipeline implements spec §4.5's fetch pipeline: open a run,
// enumerate clubs, resolve/list/persist matches per club, close the run.
// A panic inside the pipeline closes the run as failed via
// Recorder.CloseCrashed and is returned as an error.
func (j *Job) runFetchPipeline(ctx context.Context, cfg models.SchedulerConfig) (err error) {
	start := time.Now()
	seasonLabel := fmt.Sprintf("%d", j.seasonID)

	run, err := j.deps.Recorder.Open(ctx, cfg.ID, j.seasonID)
	if err != nil {
		metrics.RecordError("job", "open_run")
		return fmt.Errorf("failed to open run for season %d: %w", j.seasonID, err)
	}

	outcome := recorder.Outcome{}
	defer func() {
		if p := recover(); p != nil {
			cause := fmt.Errorf("tick panicked: %v", p)
			err = cause
			if cerr := j.deps.Recorder.CloseCrashed(ctx, run, outcome.MatchesFetched, outcome.MatchesNew, cause); cerr != nil {
				err = fmt.Errorf("%v; %w", cause, cerr)
			}
		}
	}()
	defer func() {
		metrics.RecordTick(seasonLabel, string(outcome.Status()), time.Since(start).Seconds())
		metrics.RecordMatches(seasonLabel, outcome.MatchesFetched, outcome.MatchesNew)
	}()

	clubs, err := j.deps.DB.Clubs.ListBySeasonID(ctx, j.seasonID)
	if err != nil {
		outcome.AnyClubErrored = true
		outcome.ErrorMessages = append(outcome.ErrorMessages, fmt.Sprintf("failed to enumerate clubs: %v", err))
		metrics.RecordError("job", "list_clubs")
		return j.deps.Recorder.Close(ctx, run, outcome)
	}

	for _, club := range clubs {
		select {
		case <-ctx.Done():
			outcome.ErrorMessages = append(outcome.ErrorMessages, "cancelled during club iteration")
			return j.deps.Recorder.Close(ctx, run, outcome)
		default:
		}

		externalID := club.ExternalID.String
		if !club.ExternalID.Valid || externalID == "" {
			resolved, err := j.deps.Upstream.ResolveClub(ctx, club.Name)
			if err != nil {
				outcome.AnyClubErrored = true
				outcome.ErrorMessages = append(outcome.ErrorMessages, fmt.Sprintf("club %s: resolve failed: %v", club.Name, err))
				metrics.RecordError("job", "resolve_club")
				continue
			}
			if resolved == "" {
				outcome.AnyClubErrored = true
				outcome.ErrorMessages = append(outcome.ErrorMessages, fmt.Sprintf("club %s: no external id resolved", club.Name))
				metrics.RecordError("job", "resolve_club_empty")
				continue
			}
			externalID = resolved
			if err := j.deps.DB.Clubs.UpdateExternalID(ctx, club.ID, externalID); err != nil {
				log.Warn().Err(err).Int("club_id", club.ID).Msg("failed to persist resolved club external id")
			}
		}

		matches, err := j.deps.Upstream.ListMatches(ctx, externalID)
		if err != nil {
			outcome.AnyClubErrored = true
			outcome.ErrorMessages = append(outcome.ErrorMessages, fmt.Sprintf("club %s: list matches failed: %v", club.Name, err))
			metrics.RecordError("job", "list_matches")
			continue
		}

		outcome.MatchesFetched += len(matches)

		for _, raw := range matches {
			select {
			case <-ctx.Done():
				outcome.ErrorMessages = append(outcome.ErrorMessages, "cancelled during match iteration")
				return j.deps.Recorder.Close(ctx, run, outcome)
			default:
			}

			result, err := j.deps.Persister.Persist(ctx, j.seasonID, externalID, raw)
			if err != nil {
				outcome.AnyMatchFailed = true
				outcome.ErrorMessages = append(outcome.ErrorMessages, fmt.Sprintf("match %s: %v", raw.MatchID, err))
				metrics.RecordError("job", "persist_match")
				continue
			}
			outcome.AnyMatchOK = true
			if result.IsNew {
				outcome.MatchesNew++
			}
		}
	}

	return j.deps.Recorder.Close(ctx, run, outcome)
}
