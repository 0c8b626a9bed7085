package power

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fentz26/prochunt/internal/models"
)

// DefaultSysfsRoot is where Linux exposes power supplies.
const DefaultSysfsRoot = "/sys/class/power_supply"

// Sysfs reads battery state from the Linux power_supply class.
type Sysfs struct {
	root string
}

// NewSysfs creates a source rooted at root.
func NewSysfs(root string) *Sysfs {
	return &Sysfs{root: root}
}

// Read reports the first battery found. A machine with no battery but a
// connected mains supply reads as on-ac-power.
func (s *Sysfs) Read(ctx context.Context) (models.PowerState, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return models.PowerState{Status: models.PowerUnknown}, fmt.Errorf("%w: %v", ErrNoBattery, err)
	}

	mainsOnline := false
	for _, e := range entries {
		dir := filepath.Join(s.root, e.Name())
		switch readString(dir, "type") {
		case "Battery":
			return readBattery(dir)
		case "Mains":
			if readString(dir, "online") == "1" {
				mainsOnline = true
			}
		}
	}

	if mainsOnline {
		return models.PowerState{Status: models.PowerOnAC}, nil
	}
	return models.PowerState{Status: models.PowerUnknown}, ErrNoBattery
}

func readBattery(dir string) (models.PowerState, error) {
	state := models.PowerState{Status: models.PowerUnknown}

	capacity, ok := readInt(dir, "capacity")
	if !ok {
		return state, fmt.Errorf("%w: %s has no capacity", ErrNoBattery, dir)
	}
	state.Percentage = clampPercent(int(capacity))

	switch readString(dir, "status") {
	case "Discharging":
		state.Status = models.PowerDischarging
	case "Charging":
		state.Status = models.PowerCharging
	case "Full":
		state.Status = models.PowerCharged
	case "Not charging":
		state.Status = models.PowerOnAC
	}

	state.TimeRemainingMinutes = remaining(dir, state.Status)
	return state, nil
}

// remaining estimates minutes to empty when discharging or to full when
// charging, from either the energy (µWh/µW) or charge (µAh/µA) counters.
func remaining(dir string, status models.PowerStatus) *int {
	if status != models.PowerDischarging && status != models.PowerCharging {
		return nil
	}

	now, full, rate, ok := counters(dir, "energy_now", "energy_full", "power_now")
	if !ok {
		now, full, rate, ok = counters(dir, "charge_now", "charge_full", "current_now")
	}
	if !ok || rate <= 0 {
		return nil
	}

	left := now
	if status == models.PowerCharging {
		left = full - now
	}
	if left < 0 {
		left = 0
	}
	return minutes(int(float64(left) / float64(rate) * 60))
}

func counters(dir, nowFile, fullFile, rateFile string) (now, full, rate int64, ok bool) {
	var okNow, okFull, okRate bool
	now, okNow = readInt(dir, nowFile)
	full, okFull = readInt(dir, fullFile)
	rate, okRate = readInt(dir, rateFile)
	if rate < 0 {
		// Some drivers report discharge current as negative.
		rate = -rate
	}
	return now, full, rate, okNow && okFull && okRate
}

func readString(dir, name string) string {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func readInt(dir, name string) (int64, bool) {
	v, err := strconv.ParseInt(readString(dir, name), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
