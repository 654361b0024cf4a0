// Package fallback tries an ordered list of candidates until one succeeds.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// ErrSkip marks a failure that should move on to the next candidate. Any
// other error aborts the run.
var ErrSkip = errors.New("candidate unavailable")

// ExhaustedError is returned when every candidate was skipped.
type ExhaustedError struct {
	Attempted []string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("no candidate succeeded (tried: %s)", strings.Join(e.Attempted, ", "))
}

// Attempt runs a single candidate.
type Attempt[T any] func(ctx context.Context, candidate string) (T, error)

// Run calls attempt for each candidate in order and returns the first success
// along with the candidate that produced it. Errors wrapping ErrSkip advance
// to the next candidate; any other error is returned immediately.
func Run[T any](ctx context.Context, candidates []string, attempt Attempt[T]) (T, string, error) {
	var zero T
	if len(candidates) == 0 {
		return zero, "", &ExhaustedError{}
	}

	tried := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return zero, "", err
		}
		tried = append(tried, c)

		result, err := attempt(ctx, c)
		if err == nil {
			return result, c, nil
		}
		if !errors.Is(err, ErrSkip) {
			return zero, c, err
		}
		log.Printf("[fallback] %s skipped: %v", c, err)
	}
	return zero, "", &ExhaustedError{Attempted: tried}
}
