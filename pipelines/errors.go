package pipelines

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reusee/vague/identities"
)

var ErrGenerationExhausted = errors.New("generation exhausted")

// errAbandoned marks shared work cancelled because every caller waiting on it left.
var errAbandoned = errors.New("abandoned by callers")

// ExhaustedError carries the error of every failed attempt for one key.
type ExhaustedError struct {
	Key      identities.Key
	Attempts []error
}

func (e *ExhaustedError) Error() string {
	msgs := make([]string, 0, len(e.Attempts))
	for i, err := range e.Attempts {
		msgs = append(msgs, fmt.Sprintf("attempt %d: %v", i+1, err))
	}
	return fmt.Sprintf("%v: %s after %d attempts: %s",
		ErrGenerationExhausted,
		e.Key.Short(),
		len(e.Attempts),
		strings.Join(msgs, "; "),
	)
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrGenerationExhausted
}

func (e *ExhaustedError) Unwrap() []error {
	return e.Attempts
}
