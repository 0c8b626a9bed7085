// Package tui provides the interactive process picker for prochunt.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/prochunt/internal/classifier"
	"github.com/fentz26/prochunt/internal/hunt"
	"github.com/fentz26/prochunt/internal/models"
	"github.com/fentz26/prochunt/internal/render"
)

var (
	// Colors
	primaryColor = lipgloss.Color("#7C3AED")
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	fgColor      = lipgloss.Color("#F9FAFB")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	tableStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor)

	confirmStyle = lipgloss.NewStyle().
			Foreground(fgColor).
			Background(errorColor).
			Bold(true).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	okStyle   = lipgloss.NewStyle().Foreground(successColor)
	failStyle = lipgloss.NewStyle().Foreground(errorColor)
	markStyle = lipgloss.NewStyle().Foreground(warningColor).Bold(true)
)

type phase int

const (
	phasePick phase = iota
	phaseConfirm
	phaseRunning
	phaseDone
)

// TerminateFunc stops one process.
type TerminateFunc func(pid int) models.TerminationOutcome

// outcomeMsg carries the result of one termination back to the model.
type outcomeMsg struct {
	record  models.ProcessRecord
	outcome models.TerminationOutcome
}

// App is the picker model.
type App struct {
	records   []models.ProcessRecord
	marked    map[int]bool
	table     table.Model
	spinner   spinner.Model
	phase     phase
	queue     []models.ProcessRecord
	result    hunt.BatchResult
	terminate TerminateFunc
	cancelled bool
}

// New creates a picker over the visible records of a scan.
func New(records []models.ProcessRecord, terminate TerminateFunc) *App {
	visible := classifier.Visible(records)

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "", Width: 3},
			{Title: "PID", Width: 7},
			{Title: "CPU%", Width: 6},
			{Title: "MEM", Width: 10},
			{Title: "NAME", Width: 20},
			{Title: "CATEGORY", Width: 9},
			{Title: "REASON", Width: 28},
		}),
		table.WithFocused(true),
		table.WithHeight(min(len(visible)+1, 20)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(mutedColor).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(fgColor).
		Background(primaryColor).
		Bold(true)
	t.SetStyles(s)

	a := &App{
		records:   visible,
		marked:    make(map[int]bool),
		table:     t,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		terminate: terminate,
	}
	a.refreshRows()
	return a
}

// Run starts the picker and returns what it terminated.
func (a *App) Run() (hunt.BatchResult, error) {
	p := tea.NewProgram(a, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return hunt.BatchResult{}, err
	}
	return a.Result(), nil
}

// Result returns the terminations performed so far.
func (a *App) Result() hunt.BatchResult {
	return a.result
}

// Cancelled reports whether the operator quit without terminating anything.
func (a *App) Cancelled() bool {
	return a.cancelled
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if h := msg.Height - 10; h > 3 {
			a.table.SetHeight(min(h, len(a.records)+1))
		}
		return a, nil

	case spinner.TickMsg:
		if a.phase != phaseRunning {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case outcomeMsg:
		a.result.Add(msg.record, msg.outcome)
		if len(a.queue) == 0 {
			a.phase = phaseDone
			return a, tea.Quit
		}
		return a, a.next()

	case tea.KeyMsg:
		switch a.phase {
		case phaseConfirm:
			return a.updateConfirm(msg)
		case phasePick:
			return a.updatePick(msg)
		}
		// Terminations run to completion once confirmed.
		return a, nil
	}

	return a, nil
}

func (a *App) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		a.queue = a.markedRecords()
		a.phase = phaseRunning
		return a, tea.Batch(a.spinner.Tick, a.next())
	case "n", "N", "esc":
		a.phase = phasePick
	}
	return a, nil
}

func (a *App) updatePick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		a.cancelled = true
		return a, tea.Quit
	case " ":
		// The table binds space to page-down, so marks are handled first.
		if i := a.table.Cursor(); i >= 0 && i < len(a.records) {
			a.marked[i] = !a.marked[i]
			a.refreshRows()
		}
		return a, nil
	case "a":
		for i, r := range a.records {
			if r.Category == models.CategoryAutoKill {
				a.marked[i] = true
			}
		}
		a.refreshRows()
		return a, nil
	case "enter":
		if len(a.markedRecords()) > 0 {
			a.phase = phaseConfirm
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return a, cmd
}

// next pops the queue and terminates the head in a command, keeping the
// terminations strictly sequential.
func (a *App) next() tea.Cmd {
	rec := a.queue[0]
	a.queue = a.queue[1:]
	terminate := a.terminate
	return func() tea.Msg {
		return outcomeMsg{record: rec, outcome: terminate(rec.PID)}
	}
}

func (a *App) markedRecords() []models.ProcessRecord {
	var out []models.ProcessRecord
	for i, r := range a.records {
		if a.marked[i] {
			out = append(out, r)
		}
	}
	return out
}

func (a *App) refreshRows() {
	rows := make([]table.Row, 0, len(a.records))
	for i, r := range a.records {
		mark := "[ ]"
		if a.marked[i] {
			mark = "[x]"
		}
		rows = append(rows, table.Row{
			mark,
			fmt.Sprintf("%d", r.PID),
			fmt.Sprintf("%.1f", r.CPUPercent),
			render.Memory(r.MemMB),
			r.Name,
			string(r.Category),
			r.Reason,
		})
	}
	a.table.SetRows(rows)
}

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("prochunt") + "\n\n")

	switch a.phase {
	case phasePick, phaseConfirm:
		if len(a.records) == 0 {
			b.WriteString(okStyle.Render("  Nothing above the thresholds.") + "\n")
			b.WriteString(helpStyle.Render("\n  q: quit") + "\n")
			return b.String()
		}
		b.WriteString(tableStyle.Render(a.table.View()) + "\n")

		marked := a.markedRecords()
		if len(marked) > 0 {
			var mem float64
			for _, r := range marked {
				mem += r.MemMB
			}
			b.WriteString(markStyle.Render(fmt.Sprintf("  %d marked (~%s)", len(marked), render.Memory(mem))) + "\n")
		}

		if a.phase == phaseConfirm {
			prompt := fmt.Sprintf("Terminate %d processes? [y/n]", len(marked))
			b.WriteString("\n" + confirmStyle.Render(prompt) + "\n")
		} else {
			b.WriteString(helpStyle.Render("\n  space: mark • a: mark all AUTO_KILL • enter: terminate marked • q: quit") + "\n")
		}

	case phaseRunning, phaseDone:
		for _, o := range a.result.Outcomes {
			if o.Success {
				b.WriteString(okStyle.Render("  ✓ "+o.Message) + "\n")
			} else {
				b.WriteString(failStyle.Render("  ✗ "+o.Message) + "\n")
			}
		}
		if a.phase == phaseRunning {
			done := len(a.result.Outcomes)
			total := done + len(a.queue) + 1
			b.WriteString(fmt.Sprintf("  %s terminating %d/%d\n", a.spinner.View(), done+1, total))
		}
	}

	return b.String()
}
