package orchestrator

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures by where they came from.
type Kind int

const (
	KindService Kind = iota + 1 // ffmpeg, transcription or completion failed
	KindParse
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindService:
		return "service"
	case KindParse:
		return "parse"
	case KindIO:
		return "io"
	}
	return "unknown"
}

// Error is returned by every Pipeline stage.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

func wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
