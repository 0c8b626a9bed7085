// Package hunt provides the service layer shared by the prochunt CLI and picker.
package hunt

import (
	"context"

	"go.uber.org/zap"

	"github.com/fentz26/prochunt/internal/baseline"
	"github.com/fentz26/prochunt/internal/collector"
	"github.com/fentz26/prochunt/internal/models"
)

// Scanner produces classified process records.
type Scanner interface {
	Scan(ctx context.Context, opts collector.Options) ([]models.ProcessRecord, error)
}

// Terminator stops a single process.
type Terminator interface {
	Terminate(pid int, force bool) models.TerminationOutcome
}

// Recorder journals state-mutating actions.
type Recorder interface {
	RecordTermination(out models.TerminationOutcome) (*models.DecisionEntry, error)
	RecordBaseline(snap models.BaselineSnapshot) (*models.DecisionEntry, error)
}

// Journal lists recorded decisions.
type Journal interface {
	ListDecisions(action string, limit int) ([]models.DecisionEntry, error)
}

// Service provides the hunt business logic.
type Service struct {
	scanner  Scanner
	reaper   Terminator
	tracker  *baseline.Tracker
	recorder Recorder
	journal  Journal
	logger   *zap.Logger
}

// NewService creates a new hunt service. The journal is optional; see SetJournal.
func NewService(scanner Scanner, reaper Terminator, tracker *baseline.Tracker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scanner: scanner,
		reaper:  reaper,
		tracker: tracker,
		logger:  logger,
	}
}

// SetJournal enables decision recording and history.
func (s *Service) SetJournal(rec Recorder, journal Journal) {
	s.recorder = rec
	s.journal = journal
}

// --- Process Operations ---

// Scan lists classified processes above the thresholds.
func (s *Service) Scan(ctx context.Context, opts collector.Options) ([]models.ProcessRecord, error) {
	return s.scanner.Scan(ctx, opts)
}

// Terminate stops one process and journals the attempt.
func (s *Service) Terminate(pid int, force bool) models.TerminationOutcome {
	out := s.reaper.Terminate(pid, force)
	if s.recorder != nil {
		if _, err := s.recorder.RecordTermination(out); err != nil {
			s.logger.Warn("journal write failed", zap.Int("pid", pid), zap.Error(err))
		}
	}
	return out
}

// BatchResult summarises a sequence of terminations.
type BatchResult struct {
	Outcomes   []models.TerminationOutcome
	Killed     int
	MemFreedMB float64
}

// Add records the outcome of terminating rec. Freed memory counts the
// scanned resident size of each confirmed termination.
func (b *BatchResult) Add(rec models.ProcessRecord, out models.TerminationOutcome) {
	b.Outcomes = append(b.Outcomes, out)
	if out.Success {
		b.Killed++
		b.MemFreedMB += rec.MemMB
	}
}

// --- Baseline Operations ---

// SaveBaseline captures and stores a baseline, then journals it.
func (s *Service) SaveBaseline(ctx context.Context, killed int, memFreedMB float64) (models.BaselineSnapshot, error) {
	snap, err := s.tracker.Save(ctx, killed, memFreedMB)
	if err != nil {
		return snap, err
	}
	if s.recorder != nil {
		if _, err := s.recorder.RecordBaseline(snap); err != nil {
			s.logger.Warn("journal write failed", zap.Error(err))
		}
	}
	return snap, nil
}

// Compare reports against the saved baseline.
func (s *Service) Compare(ctx context.Context) (baseline.ImpactReport, error) {
	return s.tracker.Compare(ctx)
}

// Report builds a report with explicit counters.
func (s *Service) Report(ctx context.Context, killed int, memFreedMB float64) (baseline.ImpactReport, error) {
	return s.tracker.Report(ctx, killed, memFreedMB)
}

// Status reads the current power state.
func (s *Service) Status(ctx context.Context) models.PowerState {
	return s.tracker.Status(ctx)
}

// --- Journal Operations ---

// History lists journal entries, newest first.
func (s *Service) History(action string, limit int) ([]models.DecisionEntry, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	return s.journal.ListDecisions(action, limit)
}
