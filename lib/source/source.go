// Package source implements ordered fallback chains for top-level data
// fetches: attempt each configured source in order and use the first
// success.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// UnavailableError is returned when every source in a chain has failed.
// It is fatal to the pipeline run.
type UnavailableError struct {
	// names of the sources in the order they were attempted
	Attempted []string
	errs      []error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf(
		"all data sources failed: %s: %s",
		strings.Join(e.Attempted, ", "),
		errors.Join(e.errs...),
	)
}

func (e *UnavailableError) Unwrap() []error {
	return e.errs
}

// Attempt is a single named fetch strategy in a fallback chain.
type Attempt[T any] struct {
	Name  string
	Fetch func(ctx context.Context) (T, error)
}

// First runs the attempts in order and returns the first successful
// result. When every attempt fails it returns an *UnavailableError
// naming all attempted sources.
func First[T any](ctx context.Context, attempts []Attempt[T]) (T, error) {
	var zero T
	var attempted []string
	var errs []error

	for _, a := range attempts {
		out, err := a.Fetch(ctx)
		if err == nil {
			return out, nil
		}
		slog.WarnContext(ctx, "data source failed", "source", a.Name, "err", err)
		attempted = append(attempted, a.Name)
		errs = append(errs, fmt.Errorf("%s: %w", a.Name, err))
	}

	return zero, &UnavailableError{Attempted: attempted, errs: errs}
}
