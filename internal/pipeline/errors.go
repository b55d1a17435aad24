package pipeline

import (
	"errors"
	"fmt"
)

// Error kinds. Every core failure is a *StageError wrapping one of these.
var (
	ErrTranscription   = errors.New("transcription failed")
	ErrCompletion      = errors.New("completion failed")
	ErrMalformedResult = errors.New("malformed aggregation result")
)

// StageTranscribe names the transcription step in a StageError.
const StageTranscribe = "transcribe"

// StageError records where the pipeline stopped. errors.Is matches both the
// kind and the underlying cause.
type StageError struct {
	Stage string
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func stageErr(stage string, kind, err error) error {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}
