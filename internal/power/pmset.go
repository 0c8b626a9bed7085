package power

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fentz26/prochunt/internal/connectors"
	"github.com/fentz26/prochunt/internal/models"
)

var (
	percentRe   = regexp.MustCompile(`(\d+)%`)
	remainingRe = regexp.MustCompile(`(\d+):(\d+) remaining`)
)

// Pmset reads battery state from macOS `pmset -g batt`.
type Pmset struct {
	runner connectors.Runner
}

// NewPmset creates a pmset-backed source.
func NewPmset(runner connectors.Runner) *Pmset {
	return &Pmset{runner: runner}
}

// Read runs pmset and parses its output.
func (p *Pmset) Read(ctx context.Context) (models.PowerState, error) {
	res, err := p.runner.Execute(ctx, "pmset", []string{"-g", "batt"})
	if err != nil {
		return models.PowerState{Status: models.PowerUnknown}, fmt.Errorf("pmset: %w", err)
	}
	return ParsePmset(res.Stdout)
}

// ParsePmset extracts percentage, status and remaining time from pmset
// output. Status keywords are checked in order, so "discharging" wins over
// its "charging" substring.
func ParsePmset(out string) (models.PowerState, error) {
	state := models.PowerState{Status: models.PowerUnknown}
	found := false

	if m := percentRe.FindStringSubmatch(out); m != nil {
		if pct, err := strconv.Atoi(m[1]); err == nil {
			state.Percentage = clampPercent(pct)
			found = true
		}
	}

	lower := strings.ToLower(out)
	switch {
	case strings.Contains(lower, "discharging"):
		state.Status = models.PowerDischarging
	case strings.Contains(lower, "charging"):
		state.Status = models.PowerCharging
	case strings.Contains(lower, "charged"):
		state.Status = models.PowerCharged
	case strings.Contains(out, "AC Power"):
		state.Status = models.PowerOnAC
	}
	if state.Status != models.PowerUnknown {
		found = true
	}

	if m := remainingRe.FindStringSubmatch(out); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		state.TimeRemainingMinutes = minutes(h*60 + mm)
	}

	if !found {
		return state, ErrNoBattery
	}
	return state, nil
}
