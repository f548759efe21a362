// Package manager implements the process-singleton Scheduler Manager:
// the registry of season jobs, their lifecycle transitions, startup
// restore, and graceful shutdown.
package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"clubarchive/ingestion/internal/clock"
	"clubarchive/ingestion/internal/job"
	"clubarchive/ingestion/internal/metrics"
	"clubarchive/ingestion/internal/models"
	"clubarchive/ingestion/internal/persist"
	"clubarchive/ingestion/internal/recorder"
	"clubarchive/ingestion/internal/repository"
	"clubarchive/ingestion/internal/upstream"
)

// ErrInvalidTransition is returned when a lifecycle operation is
// attempted from a state that does not permit it.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// Manager is the process-wide, mutex-serialized registry of season jobs.
type Manager struct {
	db        *repository.Database
	upstream  *upstream.Client
	gate      *clock.Gate
	persister *persist.Persister
	recorder  *recorder.Recorder

	shutdownGrace time.Duration

	mu    sync.Mutex
	jobs  map[int]*job.Job
	stops map[int]context.CancelFunc
}

// New builds a Manager. Call Restore once at startup before serving
// any lifecycle operations.
func New(db *repository.Database, up *upstream.Client, gate *clock.Gate, shutdownGrace time.Duration) *Manager {
	return &Manager{
		db:            db,
		upstream:      up,
		gate:          gate,
		persister:     persist.New(db),
		recorder:      recorder.New(db),
		shutdownGrace: shutdownGrace,
		jobs:          make(map[int]*job.Job),
		stops:         make(map[int]context.CancelFunc),
	}
}

func (m *Manager) deps() job.Deps {
	return job.Deps{
		DB:        m.db,
		Upstream:  m.upstream,
		Gate:      m.gate,
		Persister: m.persister,
		Recorder:  m.recorder,
	}
}

// Restore reads every active SchedulerConfig and instantiates a worker
// for it, preserving whichever of running/paused it held before
// shutdown. Any SchedulerRun left `running` from a crash is closed as
// `failed`, per spec §9's crash-recovery guidance.
func (m *Manager) Restore(ctx context.Context) error {
	closed, err := m.db.SchedulerRuns.CloseStaleRunning(ctx)
	if err != nil {
		return fmt.Errorf("failed to close stale running runs: %w", err)
	}
	if closed > 0 {
		log.Warn().Int64("count", closed).Msg("closed stale running scheduler runs left over from a prior crash")
	}

	configs, err := m.db.SchedulerConfigs.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active scheduler configs: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, cfg := range configs {
		m.startWorkerLocked(cfg)
		log.Info().Int("season_id", cfg.SeasonID).Bool("paused", cfg.IsPaused).Msg("restored scheduler job")
	}
	return nil
}

// startWorkerLocked creates and launches a worker goroutine for cfg.
// Caller must hold m.mu.
func (m *Manager) startWorkerLocked(cfg *models.SchedulerConfig) {
	j := job.New(cfg.SeasonID, cfg, m.deps())
	ctx, cancel := context.WithCancel(context.Background())

	m.jobs[cfg.SeasonID] = j
	m.stops[cfg.SeasonID] = cancel

	go j.Run(ctx)
	metrics.SetActiveJobs(len(m.jobs))
}

// stopWorkerLocked tears down the worker for seasonID, if any. Caller
// must hold m.mu.
func (m *Manager) stopWorkerLocked(seasonID int) {
	if j, ok := m.jobs[seasonID]; ok {
		j.Stop()
	}
	if cancel, ok := m.stops[seasonID]; ok {
		cancel()
	}
	delete(m.jobs, seasonID)
	delete(m.stops, seasonID)
	metrics.SetActiveJobs(len(m.jobs))
}

// CreateConfig persists a new config for a season. The job stays
// inactive until Start is called.
func (m *Manager) CreateConfig(ctx context.Context, seasonID int, input models.SchedulerConfigInput) (*models.SchedulerConfig, error) {
	return m.db.SchedulerConfigs.Create(ctx, seasonID, input)
}

// UpdateConfig applies field changes; if the job is currently running or
// paused, the worker is torn down and replaced with fresh timing,
// preserving its prior paused state.
func (m *Manager) UpdateConfig(ctx context.Context, seasonID int, input models.SchedulerConfigInput) error {
	if err := m.db.SchedulerConfigs.UpdateFields(ctx, seasonID, input); err != nil {
		return fmt.Errorf("failed to update config for season %d: %w", seasonID, err)
	}

	cfg, err := m.db.SchedulerConfigs.GetBySeasonID(ctx, seasonID)
	if err != nil {
		return fmt.Errorf("failed to reload config for season %d: %w", seasonID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, running := m.jobs[seasonID]; running && cfg.IsActive {
		m.stopWorkerLocked(seasonID)
		m.startWorkerLocked(cfg)
	}
	return nil
}

// DeleteConfig tears down the worker if present and deletes the config;
// runs cascade at the storage layer.
func (m *Manager) DeleteConfig(ctx context.Context, seasonID int) error {
	m.mu.Lock()
	m.stopWorkerLocked(seasonID)
	m.mu.Unlock()

	if err := m.db.SchedulerConfigs.Delete(ctx, seasonID); err != nil {
		return fmt.Errorf("failed to delete config for season %d: %w", seasonID, err)
	}
	return nil
}

// Start transitions a season from inactive to running: persist the
// flags, then create the worker. Persistence-first, best-effort worker
// reconciliation per spec §4.6.
func (m *Manager) Start(ctx context.Context, seasonID int) error {
	cfg, err := m.db.SchedulerConfigs.GetBySeasonID(ctx, seasonID)
	if err != nil {
		return fmt.Errorf("failed to load config for season %d: %w", seasonID, err)
	}
	if cfg.IsActive {
		return fmt.Errorf("%w: season %d is already active", ErrInvalidTransition, seasonID)
	}

	if err := m.db.SchedulerConfigs.SetLifecycle(ctx, seasonID, true, false); err != nil {
		return fmt.Errorf("failed to activate config for season %d: %w", seasonID, err)
	}
	cfg.IsActive = true
	cfg.IsPaused = false

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jobs[seasonID]; exists {
		log.Warn().Int("season_id", seasonID).Msg("worker already present for season being started, replacing")
		m.stopWorkerLocked(seasonID)
	}
	m.startWorkerLocked(cfg)
	return nil
}

// Pause transitions a season from running to paused: the worker stays
// alive, but its next tick is a no-op at the gate layer.
func (m *Manager) Pause(ctx context.Context, seasonID int) error {
	cfg, err := m.db.SchedulerConfigs.GetBySeasonID(ctx, seasonID)
	if err != nil {
		return fmt.Errorf("failed to load config for season %d: %w", seasonID, err)
	}
	if !cfg.IsActive || cfg.IsPaused {
		return fmt.Errorf("%w: season %d is not running", ErrInvalidTransition, seasonID)
	}

	if err := m.db.SchedulerConfigs.SetLifecycle(ctx, seasonID, true, true); err != nil {
		return fmt.Errorf("failed to pause config for season %d: %w", seasonID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[seasonID]; ok {
		j.SetPaused(true)
	} else {
		log.Warn().Int("season_id", seasonID).Msg("paused config had no worker to reconcile; will reconcile on next restart")
	}
	return nil
}

// Resume transitions a season from paused back to running.
func (m *Manager) Resume(ctx context.Context, seasonID int) error {
	cfg, err := m.db.SchedulerConfigs.GetBySeasonID(ctx, seasonID)
	if err != nil {
		return fmt.Errorf("failed to load config for season %d: %w", seasonID, err)
	}
	if !cfg.IsActive || !cfg.IsPaused {
		return fmt.Errorf("%w: season %d is not paused", ErrInvalidTransition, seasonID)
	}

	if err := m.db.SchedulerConfigs.SetLifecycle(ctx, seasonID, true, false); err != nil {
		return fmt.Errorf("failed to resume config for season %d: %w", seasonID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[seasonID]; ok {
		j.SetPaused(false)
	} else {
		log.Warn().Int("season_id", seasonID).Msg("resumed config had no worker; starting one now")
		m.startWorkerLocked(cfg)
	}
	return nil
}

// Stop transitions a season from running or paused back to inactive,
// tearing down its worker. An in-flight tick is cancelled and waited
// for: it stops at its next club or match boundary before Stop returns.
func (m *Manager) Stop(ctx context.Context, seasonID int) error {
	cfg, err := m.db.SchedulerConfigs.GetBySeasonID(ctx, seasonID)
	if err != nil {
		return fmt.Errorf("failed to load config for season %d: %w", seasonID, err)
	}
	if !cfg.IsActive {
		return fmt.Errorf("%w: season %d is not active", ErrInvalidTransition, seasonID)
	}

	if err := m.db.SchedulerConfigs.SetLifecycle(ctx, seasonID, false, false); err != nil {
		return fmt.Errorf("failed to deactivate config for season %d: %w", seasonID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopWorkerLocked(seasonID)
	return nil
}

// ConfigStatus enriches a config with whether a live worker exists and
// whether it is currently mid-tick, for the operator dashboard.
type ConfigStatus struct {
	Config    models.SchedulerConfig
	HasWorker bool
	Ticking   bool
}

// ListWithStatus returns every config enriched with live worker state.
func (m *Manager) ListWithStatus(ctx context.Context) ([]ConfigStatus, error) {
	configs, err := m.db.SchedulerConfigs.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduler configs: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	statuses := make([]ConfigStatus, 0, len(configs))
	for _, cfg := range configs {
		j, hasWorker := m.jobs[cfg.SeasonID]
		st := ConfigStatus{Config: *cfg, HasWorker: hasWorker}
		if hasWorker {
			st.Ticking = j.IsTicking()
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// Runs returns recent audit records for a season, newest first.
func (m *Manager) Runs(ctx context.Context, seasonID int, limit int) ([]*models.SchedulerRun, error) {
	return m.db.SchedulerRuns.ListBySeasonID(ctx, seasonID, limit)
}

// TriggerNow forces one immediate tick for a season, bypassing the
// window gate, for use by the triggerrun CLI. The season must already
// have a live worker (i.e. be running or paused).
func (m *Manager) TriggerNow(ctx context.Context, seasonID int) error {
	m.mu.Lock()
	j, ok := m.jobs[seasonID]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: season %d has no active worker", ErrInvalidTransition, seasonID)
	}
	return j.TriggerNow(ctx)
}

// Shutdown tears down every worker, waiting up to the configured grace
// period for in-flight ticks to observe cancellation.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	seasonIDs := make([]int, 0, len(m.jobs))
	for id := range m.jobs {
		seasonIDs = append(seasonIDs, id)
	}
	m.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(ctx, m.shutdownGrace)
	defer cancel()

	done := make(chan struct{})
	go func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for _, id := range seasonIDs {
			m.stopWorkerLocked(id)
		}
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("all scheduler workers stopped cleanly")
	case <-shutdownCtx.Done():
		log.Warn().Msg("shutdown grace period elapsed before all workers confirmed stopped")
	}
}
