package ingest

import "fmt"

// Pipeline phases, used to locate failures.
const (
	PhaseDownload = "download"
	PhaseUpload   = "upload"
)

// PhaseError reports where in the run a failure happened along with the
// object it happened on.
type PhaseError struct {
	Phase string
	Key   string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s failed for %q: %v", e.Phase, e.Key, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

func newPhaseError(phase, key string, err error) *PhaseError {
	return &PhaseError{Phase: phase, Key: key, Err: err}
}
