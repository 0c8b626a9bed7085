// Package power reads the machine's battery state.
package power

import (
	"context"
	"errors"
	"runtime"

	"github.com/fentz26/prochunt/internal/connectors"
	"github.com/fentz26/prochunt/internal/models"
)

// ErrNoBattery indicates the platform exposes no battery information.
var ErrNoBattery = errors.New("power: no battery information")

// Source reports the current power state.
type Source interface {
	Read(ctx context.Context) (models.PowerState, error)
}

// Detect picks the source for the running platform.
func Detect(runner connectors.Runner) Source {
	switch runtime.GOOS {
	case "darwin":
		return NewPmset(runner)
	case "linux":
		return NewSysfs(DefaultSysfsRoot)
	default:
		return Unavailable{}
	}
}

// Unavailable is the source for platforms without a battery reader.
type Unavailable struct{}

// Read always fails with ErrNoBattery.
func (Unavailable) Read(context.Context) (models.PowerState, error) {
	return models.PowerState{Status: models.PowerUnknown}, ErrNoBattery
}

func minutes(m int) *int {
	return &m
}

func clampPercent(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
