package hunt

import "errors"

// Sentinel errors for hunt operations.
var (
	ErrJournalDisabled = errors.New("decision journal is disabled")
)
