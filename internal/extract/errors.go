package extract

import (
	"errors"
	"fmt"
)

// Kind classifies an extraction failure. Every kind is terminal.
type Kind int

const (
	KindTimeout Kind = iota + 1
	KindFetchFailed
	KindParseFailed
	KindExtractionFailed
)

// Sentinels for errors.Is; an *Error matches the sentinel of its Kind.
var (
	ErrTimeout          = errors.New("timeout")
	ErrFetchFailed      = errors.New("fetch failed")
	ErrParseFailed      = errors.New("parse failed")
	ErrExtractionFailed = errors.New("extraction failed")
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "Timeout"
	case KindFetchFailed:
		return "FetchFailed"
	case KindParseFailed:
		return "ParseFailed"
	case KindExtractionFailed:
		return "ExtractionFailed"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) sentinel() error {
	switch k {
	case KindTimeout:
		return ErrTimeout
	case KindFetchFailed:
		return ErrFetchFailed
	case KindParseFailed:
		return ErrParseFailed
	case KindExtractionFailed:
		return ErrExtractionFailed
	}
	return nil
}

// Error is the single error type returned by Extractor.Extract. It carries
// the originating URL, the stage that failed, and the underlying cause.
type Error struct {
	Kind  Kind
	Stage Stage
	URL   string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: %s during %s: %v", e.URL, e.Kind, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the Kind of err, or zero when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
