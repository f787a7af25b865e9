package weather

import "fmt"

// FetchErrorKind classifies why a weather fetch failed.
type FetchErrorKind string

const (
	// FetchErrorNetwork covers transport failures: connection errors,
	// non-2xx statuses, open circuit breaker.
	FetchErrorNetwork FetchErrorKind = "network"
	// FetchErrorParse covers malformed or unexpected response shapes.
	FetchErrorParse FetchErrorKind = "parse"
)

// FetchError is returned by the Client when a daily-aggregates request
// fails. Callers own the user-facing messaging; no partial results are
// delivered alongside it.
type FetchError struct {
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("weather fetch failed (%s): %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
