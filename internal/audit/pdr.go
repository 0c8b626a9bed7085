// Package audit records process decisions in the journal.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/fentz26/prochunt/internal/models"
)

// Journal actions.
const (
	ActionTerminate    = "terminate"
	ActionBaselineSave = "baseline.save"
)

// Journal is the storage the recorder writes to.
type Journal interface {
	WriteDecision(action, inputsHash, outcome string, pid int, details string) (*models.DecisionEntry, error)
}

// Recorder writes decision records for state-mutating actions.
type Recorder struct {
	journal Journal
}

// NewRecorder creates a new recorder.
func NewRecorder(j Journal) *Recorder {
	return &Recorder{journal: j}
}

// RecordTermination journals one termination attempt.
func (r *Recorder) RecordTermination(out models.TerminationOutcome) (*models.DecisionEntry, error) {
	inputs := struct {
		PID   int  `json:"pid"`
		Force bool `json:"force"`
	}{out.PID, out.Forced}

	outcome := "success"
	if !out.Success {
		outcome = "failed:" + string(out.Failure)
	}
	return r.journal.WriteDecision(ActionTerminate, hashInputs(inputs), outcome, out.PID, out.Message)
}

// RecordBaseline journals a baseline save.
func (r *Recorder) RecordBaseline(snap models.BaselineSnapshot) (*models.DecisionEntry, error) {
	inputs := struct {
		Killed     int     `json:"processes_killed"`
		MemFreedMB float64 `json:"mem_freed_mb"`
	}{snap.ProcessesKilled, snap.MemFreedMB}

	details := fmt.Sprintf("battery %d%% %s, %d top processes", snap.PowerState.Percentage, snap.PowerState.Status, len(snap.TopProcesses))
	return r.journal.WriteDecision(ActionBaselineSave, hashInputs(inputs), "success", 0, details)
}

// hashInputs creates a SHA256 hash of the inputs for reproducibility.
func hashInputs(inputs interface{}) string {
	data, err := json.Marshal(inputs)
	if err != nil {
		return "hash_error"
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
