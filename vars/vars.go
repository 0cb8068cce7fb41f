package vars

import "time"

func FirstNonZero[T comparable](values ...T) T {
	var zero T
	for _, value := range values {
		if value != zero {
			return value
		}
	}
	return zero
}

func DerefOrZero[T any](ptr *T) (ret T) {
	if ptr == nil {
		return
	}
	return *ptr
}

func PtrTo[T any](v T) *T {
	return &v
}

// DurationOr parses str, falling back when str is empty or invalid.
func DurationOr(str string, fallback time.Duration) time.Duration {
	if str == "" {
		return fallback
	}
	d, err := time.ParseDuration(str)
	if err != nil {
		return fallback
	}
	return d
}
