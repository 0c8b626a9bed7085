package baseline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/prochunt/internal/models"
)

type fixedPower struct {
	state models.PowerState
	err   error
}

func (f *fixedPower) Read(context.Context) (models.PowerState, error) {
	return f.state, f.err
}

type fixedTop struct {
	procs []models.TopProcess
	err   error
	asked int
}

func (f *fixedTop) Top(_ context.Context, n int) ([]models.TopProcess, error) {
	f.asked = n
	return f.procs, f.err
}

func mins(m int) *int { return &m }

func newTestTracker(state models.PowerState, top []models.TopProcess) (*Tracker, *MemoryRepository, *fixedPower, *fixedTop) {
	repo := NewMemoryRepository()
	p := &fixedPower{state: state}
	procs := &fixedTop{procs: top}
	tr := NewTracker(repo, p, procs, nil)
	tr.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return tr, repo, p, procs
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		delta int
		want  Tier
	}{
		{31, TierMajor},
		{30, TierNotable},
		{11, TierNotable},
		{10, TierMarginal},
		{1, TierMarginal},
		{0, TierNoChange},
		{-1, TierRegression},
		{-90, TierRegression},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.delta), "delta %d", tt.delta)
	}
}

func TestRoundTrip_ZeroDelta(t *testing.T) {
	state := models.PowerState{Percentage: 80, Status: models.PowerDischarging, TimeRemainingMinutes: mins(240)}
	top := []models.TopProcess{{PID: 1, CPUPercent: 40, Name: "node"}}
	tr, _, _, procs := newTestTracker(state, top)

	_, err := tr.Save(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, TopDepth, procs.asked)

	report, err := tr.Compare(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report.DeltaMinutes)
	assert.Equal(t, 0, *report.DeltaMinutes)
	assert.Equal(t, TierNoChange, report.Tier)
	assert.False(t, report.ShowReduction())
	assert.False(t, report.Improved)
}

func TestCompare_Tiers(t *testing.T) {
	for delta, want := range map[int]Tier{31: TierMajor, 11: TierNotable, 1: TierMarginal, 0: TierNoChange, -1: TierRegression} {
		tr, _, p, _ := newTestTracker(models.PowerState{TimeRemainingMinutes: mins(100)}, nil)
		_, err := tr.Save(context.Background(), 2, 512)
		require.NoError(t, err)

		p.state = models.PowerState{TimeRemainingMinutes: mins(100 + delta)}
		report, err := tr.Compare(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, report.Tier, "delta %d", delta)
	}
}

func TestCompare_NoBaseline(t *testing.T) {
	tr, _, _, _ := newTestTracker(models.PowerState{}, nil)
	_, err := tr.Compare(context.Background())
	assert.ErrorIs(t, err, ErrNoBaseline)
}

func TestCompare_UsesSavedCounters(t *testing.T) {
	tr, _, _, _ := newTestTracker(models.PowerState{}, nil)
	_, err := tr.Save(context.Background(), 3, 2048)
	require.NoError(t, err)

	report, err := tr.Compare(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.ProcessesKilled)
	assert.InDelta(t, 2048.0, report.MemFreedMB, 1e-9)
	assert.True(t, report.Improved)
}

func TestBuildReport_NullRemainingTime(t *testing.T) {
	before := &models.BaselineSnapshot{PowerState: models.PowerState{TimeRemainingMinutes: mins(60)}}

	report := BuildReport(before, models.PowerState{}, nil, 1, 0)
	assert.Nil(t, report.DeltaMinutes)
	assert.Equal(t, TierUnknown, report.Tier)

	before.PowerState.TimeRemainingMinutes = nil
	report = BuildReport(before, models.PowerState{TimeRemainingMinutes: mins(60)}, nil, 1, 0)
	assert.Nil(t, report.DeltaMinutes)
	assert.Equal(t, TierUnknown, report.Tier)
}

func TestBuildReport_CPUReduction(t *testing.T) {
	before := &models.BaselineSnapshot{TopProcesses: []models.TopProcess{
		{CPUPercent: 50}, {CPUPercent: 30}, {CPUPercent: 20}, {CPUPercent: 90},
	}}

	lighter := []models.TopProcess{{CPUPercent: 10}, {CPUPercent: 5}}
	report := BuildReport(before, models.PowerState{}, lighter, 1, 0)
	assert.InDelta(t, 100.0, report.BeforeCPU, 1e-9, "only the first three count")
	assert.InDelta(t, 15.0, report.AfterCPU, 1e-9)
	assert.InDelta(t, 85.0, report.CPUReduction, 1e-9)
	assert.True(t, report.ShowReduction())

	heavier := []models.TopProcess{{CPUPercent: 99}, {CPUPercent: 99}, {CPUPercent: 99}}
	report = BuildReport(before, models.PowerState{}, heavier, 1, 0)
	assert.Zero(t, report.CPUReduction)
	assert.False(t, report.ShowReduction())
}

func TestBuildReport_Improved(t *testing.T) {
	before := &models.BaselineSnapshot{}
	assert.True(t, BuildReport(before, models.PowerState{}, nil, 1, 0).Improved)
	assert.False(t, BuildReport(before, models.PowerState{}, nil, 0, 100).Improved)
	assert.False(t, BuildReport(nil, models.PowerState{}, nil, 5, 100).Improved)
}

func TestReport_WithoutBaseline(t *testing.T) {
	tr, _, _, _ := newTestTracker(models.PowerState{Percentage: 55}, []models.TopProcess{{CPUPercent: 1}})
	report, err := tr.Report(context.Background(), 2, 100)
	require.NoError(t, err)
	assert.False(t, report.HasBaseline)
	assert.Equal(t, TierUnknown, report.Tier)
	assert.Equal(t, 55, report.After.Percentage)
	assert.False(t, report.Improved)
}

func TestSave_Overwrites(t *testing.T) {
	tr, repo, _, _ := newTestTracker(models.PowerState{}, nil)
	_, err := tr.Save(context.Background(), 1, 10)
	require.NoError(t, err)
	_, err = tr.Save(context.Background(), 4, 40)
	require.NoError(t, err)

	snap, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, 4, snap.ProcessesKilled)
	assert.NotNil(t, snap.TopProcesses)
}

func TestSave_RejectsNegativeCounters(t *testing.T) {
	tr, _, _, _ := newTestTracker(models.PowerState{}, nil)
	_, err := tr.Save(context.Background(), -1, 0)
	assert.ErrorIs(t, err, ErrNegativeCounter)
	_, err = tr.Report(context.Background(), 0, -5)
	assert.ErrorIs(t, err, ErrNegativeCounter)
}

func TestCapture_Degrades(t *testing.T) {
	tr, _, p, procs := newTestTracker(models.PowerState{Percentage: 90}, nil)
	p.err = errors.New("no pmset")
	procs.err = errors.New("no ps")

	state, top := tr.Capture(context.Background())
	assert.Equal(t, models.PowerUnknown, state.Status)
	assert.Empty(t, top)
}

func TestFileRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "baseline.json")
	repo := NewFileRepository(path)

	snap, err := repo.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)

	want := models.BaselineSnapshot{
		Timestamp:       time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
		PowerState:      models.PowerState{Percentage: 42, Status: models.PowerCharging},
		TopProcesses:    []models.TopProcess{{PID: 9, CPUPercent: 12.5, MemMB: 100, Name: "node"}},
		ProcessesKilled: 2,
		MemFreedMB:      768,
	}
	require.NoError(t, repo.Store(want))

	got, err := repo.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, want.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, want.PowerState, got.PowerState)
	assert.Equal(t, want.TopProcesses, got.TopProcesses)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"time_remaining_minutes": null`)
	assert.Contains(t, string(raw), "\n  \"power_state\"")
}

func TestFileRepository_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFileRepository(path).Load()
	assert.Error(t, err)
}
