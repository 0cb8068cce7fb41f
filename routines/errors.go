package routines

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedSource = errors.New("malformed source")
	ErrBindFailure     = errors.New("bind failure")
)

// GenerationError reports a candidate that could not become an executable routine.
type GenerationError struct {
	Kind   error
	Entry  string
	Reason string
	Err    error
}

func (g *GenerationError) Error() string {
	msg := fmt.Sprintf("%v: %s", g.Kind, g.Entry)
	if g.Reason != "" {
		msg += ": " + g.Reason
	}
	if g.Err != nil {
		msg += ": " + g.Err.Error()
	}
	return msg
}

func (g *GenerationError) Is(target error) bool {
	return target == g.Kind
}

func (g *GenerationError) Unwrap() error {
	return g.Err
}

func malformed(entry string, format string, args ...any) error {
	return &GenerationError{
		Kind:   ErrMalformedSource,
		Entry:  entry,
		Reason: fmt.Sprintf(format, args...),
	}
}

func bindFailure(entry string, err error) error {
	return &GenerationError{
		Kind:  ErrBindFailure,
		Entry: entry,
		Err:   err,
	}
}
