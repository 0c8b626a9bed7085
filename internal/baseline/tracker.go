// Package baseline saves before-cleanup snapshots and compares them with the
// current system state.
package baseline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fentz26/prochunt/internal/models"
	"github.com/fentz26/prochunt/internal/power"
)

// TopDepth is the number of top CPU consumers captured in a snapshot.
const TopDepth = 5

var (
	// ErrNoBaseline indicates a comparison was requested before any save.
	ErrNoBaseline = errors.New("baseline: no baseline saved")
	// ErrNegativeCounter rejects negative kill counts or freed memory.
	ErrNegativeCounter = errors.New("baseline: counters must be non-negative")
)

// TopLister lists the highest-CPU processes.
type TopLister interface {
	Top(ctx context.Context, n int) ([]models.TopProcess, error)
}

// Tracker captures, stores and compares snapshots.
type Tracker struct {
	repo   Repository
	power  power.Source
	procs  TopLister
	logger *zap.Logger
	now    func() time.Time
}

// NewTracker creates a tracker.
func NewTracker(repo Repository, src power.Source, procs TopLister, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		repo:   repo,
		power:  src,
		procs:  procs,
		logger: logger,
		now:    time.Now,
	}
}

// Status reads the current power state. Read failures degrade to an unknown
// status.
func (t *Tracker) Status(ctx context.Context) models.PowerState {
	state, err := t.power.Read(ctx)
	if err != nil {
		t.logger.Warn("power state unavailable", zap.Error(err))
		return models.PowerState{Status: models.PowerUnknown}
	}
	return state
}

// Capture takes the current power state and top consumers.
func (t *Tracker) Capture(ctx context.Context) (models.PowerState, []models.TopProcess) {
	state := t.Status(ctx)
	top, err := t.procs.Top(ctx, TopDepth)
	if err != nil {
		t.logger.Warn("top process listing unavailable", zap.Error(err))
		top = nil
	}
	if top == nil {
		top = []models.TopProcess{}
	}
	return state, top
}

// Save captures the current state and overwrites the stored baseline.
func (t *Tracker) Save(ctx context.Context, killed int, memFreedMB float64) (models.BaselineSnapshot, error) {
	if killed < 0 || memFreedMB < 0 {
		return models.BaselineSnapshot{}, ErrNegativeCounter
	}

	state, top := t.Capture(ctx)
	snap := models.BaselineSnapshot{
		Timestamp:       t.now(),
		PowerState:      state,
		TopProcesses:    top,
		ProcessesKilled: killed,
		MemFreedMB:      memFreedMB,
	}
	if err := t.repo.Store(snap); err != nil {
		return models.BaselineSnapshot{}, fmt.Errorf("failed to save baseline: %w", err)
	}

	t.logger.Info("baseline saved",
		zap.Int("percentage", state.Percentage),
		zap.Int("processes_killed", killed),
		zap.Float64("mem_freed_mb", memFreedMB),
	)
	return snap, nil
}

// Compare reports against the stored baseline using the counters saved with it.
func (t *Tracker) Compare(ctx context.Context) (ImpactReport, error) {
	before, err := t.repo.Load()
	if err != nil {
		return ImpactReport{}, err
	}
	if before == nil {
		return ImpactReport{}, ErrNoBaseline
	}

	state, top := t.Capture(ctx)
	return BuildReport(before, state, top, before.ProcessesKilled, before.MemFreedMB), nil
}

// Report builds a report with caller-supplied counters. A missing baseline
// yields a report without comparison sections.
func (t *Tracker) Report(ctx context.Context, killed int, memFreedMB float64) (ImpactReport, error) {
	if killed < 0 || memFreedMB < 0 {
		return ImpactReport{}, ErrNegativeCounter
	}

	before, err := t.repo.Load()
	if err != nil {
		return ImpactReport{}, err
	}

	state, top := t.Capture(ctx)
	return BuildReport(before, state, top, killed, memFreedMB), nil
}
