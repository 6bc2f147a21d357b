package media

import (
	"errors"
	"fmt"
)

// Sentinel errors for media pipeline operations.
// These errors enable reliable error classification using errors.Is().
var (
	// ErrUnreadableSource indicates the source cannot be opened for decoding.
	ErrUnreadableSource = errors.New("unreadable source")

	// ErrCodecUnavailable indicates the output writer could not be initialized.
	ErrCodecUnavailable = errors.New("codec unavailable")

	// ErrFrameDecode indicates a frame failed to decode.
	ErrFrameDecode = errors.New("frame decode failure")

	// ErrNoFramesProduced indicates a generator captured no usable frames.
	ErrNoFramesProduced = errors.New("no frames produced")

	// ErrWriteFailure indicates an artifact could not be written after its
	// writer opened.
	ErrWriteFailure = errors.New("write failure")
)

// Stage names the pipeline step that produced an error.
type Stage string

// Pipeline stages.
const (
	StageMetadata  Stage = "metadata"
	StageTranscode Stage = "transcode"
	StageThumbnail Stage = "thumbnail"
	StagePreview   Stage = "preview"
)

// StageError attaches the failing stage and path to a classified error.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

// NewStageError classifies cause under kind. Both remain reachable through
// errors.Is; cause may be nil.
func NewStageError(stage Stage, path string, kind, cause error) *StageError {
	err := kind
	if cause != nil {
		err = fmt.Errorf("%w: %w", kind, cause)
	}
	return &StageError{Stage: stage, Path: path, Err: err}
}

func (e *StageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageOf returns the stage recorded in err, or "" when err carries none.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
