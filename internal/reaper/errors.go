package reaper

import "errors"

// Sentinel errors returned by Process implementations.
var (
	ErrPermission  = errors.New("reaper: insufficient privilege")
	ErrNoProcess   = errors.New("reaper: no such process")
	ErrUnsupported = errors.New("reaper: signal not supported on this platform")
)
