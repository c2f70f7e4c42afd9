package constants

// RunStatus is the canonical status for rows in the local run catalog.
type RunStatus string

// Stable values (store these exact strings).
const (
	RunStatusQueued  RunStatus = "QUEUED"  // queued for processing
	RunStatusRunning RunStatus = "RUNNING" // in progress
	RunStatusDone    RunStatus = "DONE"    // extraction finished, entries may be zero
	RunStatusFailed  RunStatus = "FAILED"  // terminal failure
)
