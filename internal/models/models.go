// Package models defines the core domain types for prochunt.
package models

import "time"

// Category is the kill-safety class assigned to a process.
type Category string

const (
	CategoryAutoKill Category = "AUTO_KILL"
	CategoryAsk      Category = "ASK"
	CategoryIgnore   Category = "IGNORE"
)

// ProcessRecord is one process observed during a scan.
type ProcessRecord struct {
	PID        int      `json:"pid"`
	Name       string   `json:"name"`
	Command    string   `json:"command"`
	CPUPercent float64  `json:"cpu_percent"`
	MemMB      float64  `json:"mem_mb"`
	Category   Category `json:"category"`
	Reason     string   `json:"reason"`
}

// ImpactScore is the composite value used to order scan output.
// About 100 MB of resident memory weighs the same as one CPU percent point.
func (p ProcessRecord) ImpactScore() float64 {
	return p.CPUPercent + p.MemMB/100
}

// FailureKind tells apart the ways a termination can fail.
type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureNotFound   FailureKind = "not_found"
	FailurePermission FailureKind = "permission"
	FailurePersisted  FailureKind = "persisted"
	FailureOS         FailureKind = "os_error"
)

// TerminationOutcome is the result of one termination attempt.
type TerminationOutcome struct {
	PID int `json:"pid"`
	// ResolvedName is empty when the process was already gone.
	ResolvedName string      `json:"resolved_name,omitempty"`
	Success      bool        `json:"success"`
	Message      string      `json:"message"`
	Failure      FailureKind `json:"failure,omitempty"`
	State        string      `json:"state"`
	Signals      []string    `json:"signals"`
	Forced       bool        `json:"forced"`
}

// PowerStatus is the charge status reported by the power source.
type PowerStatus string

const (
	PowerDischarging PowerStatus = "discharging"
	PowerCharging    PowerStatus = "charging"
	PowerCharged     PowerStatus = "charged"
	PowerOnAC        PowerStatus = "on-ac-power"
	PowerUnknown     PowerStatus = "unknown"
)

// PowerState is a point-in-time battery reading.
type PowerState struct {
	Percentage int         `json:"percentage"`
	Status     PowerStatus `json:"status"`
	// TimeRemainingMinutes is nil when the OS has no estimate.
	TimeRemainingMinutes *int `json:"time_remaining_minutes"`
}

// TopProcess is a compact entry in a baseline's top consumer list.
type TopProcess struct {
	PID        int     `json:"pid"`
	CPUPercent float64 `json:"cpu_percent"`
	MemMB      float64 `json:"mem_mb"`
	Name       string  `json:"name"`
}

// BaselineSnapshot is the saved "before" side of an impact comparison.
type BaselineSnapshot struct {
	Timestamp       time.Time    `json:"timestamp"`
	PowerState      PowerState   `json:"power_state"`
	TopProcesses    []TopProcess `json:"top_processes"`
	ProcessesKilled int          `json:"processes_killed"`
	MemFreedMB      float64      `json:"mem_freed_mb"`
}

// DecisionEntry is one journal record of a state-mutating action.
type DecisionEntry struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	InputsHash string    `json:"inputs_hash"`
	Outcome    string    `json:"outcome"`
	PID        int       `json:"pid,omitempty"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
