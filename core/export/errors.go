package export

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal run failure. The set is closed so callers can branch
// without inspecting error strings.
type Kind int

const (
	FetchFailed Kind = iota
	ParseFailed
	UnknownResolution
	SinkWriteFailed
	CheckpointIOFailed
)

func (k Kind) String() string {
	switch k {
	case FetchFailed:
		return "fetch failed"
	case ParseFailed:
		return "parse failed"
	case UnknownResolution:
		return "unknown resolution"
	case SinkWriteFailed:
		return "sink write failed"
	case CheckpointIOFailed:
		return "checkpoint io failed"
	default:
		return "unknown failure"
	}
}

// RunError is a fatal run failure carrying its structured cause.
type RunError struct {
	Kind Kind
	Err  error
}

func (e *RunError) Error() string { return fmt.Sprintf("%s: %v", e.Kind, e.Err) }

func (e *RunError) Unwrap() error { return e.Err }

// IsKind reports whether err is (or wraps) a RunError of the given kind.
func IsKind(err error, kind Kind) bool {
	var re *RunError
	return errors.As(err, &re) && re.Kind == kind
}

// wrap boxes err under kind unless a deeper layer already classified it.
func wrap(kind Kind, err error) error {
	var re *RunError
	if errors.As(err, &re) {
		return re
	}
	return &RunError{Kind: kind, Err: err}
}
