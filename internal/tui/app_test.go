package tui

import (
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/prochunt/internal/models"
)

var pickerRecords = []models.ProcessRecord{
	{PID: 10, Name: "node", CPUPercent: 80, MemMB: 200, Category: models.CategoryAutoKill, Reason: "Vite dev server"},
	{PID: 20, Name: "postgres", CPUPercent: 20, MemMB: 900, Category: models.CategoryAsk, Reason: "unclassified process"},
	{PID: 30, Name: "kernel_task", CPUPercent: 99, MemMB: 50, Category: models.CategoryIgnore, Reason: "protected system process"},
	{PID: 40, Name: "esbuild", CPUPercent: 15, MemMB: 100, Category: models.CategoryAutoKill, Reason: "esbuild"},
}

type fakeTerminate struct {
	calls []int
	fail  map[int]bool
}

func (f *fakeTerminate) terminate(pid int) models.TerminationOutcome {
	f.calls = append(f.calls, pid)
	if f.fail[pid] {
		return models.TerminationOutcome{PID: pid, Failure: models.FailurePersisted, Message: "still alive"}
	}
	return models.TerminationOutcome{PID: pid, Success: true, Message: "exited"}
}

// drain runs cmd and feeds every resulting message back into the model,
// returning whether the program asked to quit.
func drain(t *testing.T, a *App, cmd tea.Cmd) bool {
	t.Helper()
	if cmd == nil {
		return false
	}
	switch msg := cmd().(type) {
	case nil, spinner.TickMsg:
		return false
	case tea.QuitMsg:
		return true
	case tea.BatchMsg:
		quit := false
		for _, c := range msg {
			if drain(t, a, c) {
				quit = true
			}
		}
		return quit
	default:
		_, next := a.Update(msg)
		return drain(t, a, next)
	}
}

func press(t *testing.T, a *App, msg tea.KeyMsg) bool {
	t.Helper()
	_, cmd := a.Update(msg)
	return drain(t, a, cmd)
}

var (
	keySpace = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" ")}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNew_HidesIgnored(t *testing.T) {
	a := New(pickerRecords, nil)
	require.Len(t, a.records, 3)
	for _, r := range a.records {
		assert.NotEqual(t, models.CategoryIgnore, r.Category)
	}
	assert.NotContains(t, a.View(), "kernel_task")
}

func TestPicker_MarkAndTerminate(t *testing.T) {
	f := &fakeTerminate{}
	a := New(pickerRecords, f.terminate)

	press(t, a, keyDown)
	press(t, a, keySpace)
	assert.Contains(t, a.View(), "1 marked")
	assert.Equal(t, 1, a.table.Cursor(), "space marks instead of paging")

	press(t, a, keyEnter)
	assert.Equal(t, phaseConfirm, a.phase)
	assert.Contains(t, a.View(), "Terminate 1 processes? [y/n]")

	quit := press(t, a, runes("y"))
	assert.True(t, quit)
	assert.Equal(t, phaseDone, a.phase)
	assert.Equal(t, []int{20}, f.calls)

	res := a.Result()
	assert.Equal(t, 1, res.Killed)
	assert.InDelta(t, 900.0, res.MemFreedMB, 1e-9)
	assert.False(t, a.Cancelled())
}

func TestPicker_MarkAllAutoKill(t *testing.T) {
	f := &fakeTerminate{fail: map[int]bool{40: true}}
	a := New(pickerRecords, f.terminate)

	press(t, a, runes("a"))
	press(t, a, keyEnter)
	press(t, a, runes("y"))

	assert.Equal(t, []int{10, 40}, f.calls, "marked rows terminate in table order")
	res := a.Result()
	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, 1, res.Killed)
	assert.InDelta(t, 200.0, res.MemFreedMB, 1e-9)
	assert.Contains(t, a.View(), "still alive")
}

func TestPicker_SpaceToggles(t *testing.T) {
	a := New(pickerRecords, nil)
	press(t, a, keySpace)
	press(t, a, keySpace)
	assert.Empty(t, a.markedRecords())
}

func TestPicker_EnterWithoutMarksStays(t *testing.T) {
	a := New(pickerRecords, nil)
	press(t, a, keyEnter)
	assert.Equal(t, phasePick, a.phase)
}

func TestPicker_DeclineReturnsToPick(t *testing.T) {
	f := &fakeTerminate{}
	a := New(pickerRecords, f.terminate)

	press(t, a, keySpace)
	press(t, a, keyEnter)
	press(t, a, runes("n"))
	assert.Equal(t, phasePick, a.phase)
	assert.Empty(t, f.calls)

	press(t, a, keyEnter)
	press(t, a, keyEsc)
	assert.Equal(t, phasePick, a.phase)
	assert.Len(t, a.markedRecords(), 1, "marks survive a declined confirmation")
}

func TestPicker_QuitCancels(t *testing.T) {
	f := &fakeTerminate{}
	a := New(pickerRecords, f.terminate)

	press(t, a, keySpace)
	assert.True(t, press(t, a, runes("q")))
	assert.True(t, a.Cancelled())
	assert.Empty(t, f.calls)
	assert.Empty(t, a.Result().Outcomes)
}

func TestPicker_IgnoresKeysWhileRunning(t *testing.T) {
	a := New(pickerRecords, nil)
	a.phase = phaseRunning
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, cmd)
	assert.False(t, a.Cancelled())
}

func TestPicker_Empty(t *testing.T) {
	a := New(nil, nil)
	assert.Contains(t, a.View(), "Nothing above the thresholds")
	assert.True(t, press(t, a, runes("q")))
}
