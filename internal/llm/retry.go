package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ExhaustedError is returned by Retry when every attempt failed.
type ExhaustedError struct {
	Attempts int
	Errs     []error
}

func (e *ExhaustedError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = fmt.Sprintf("attempt %d: %v", i+1, err)
	}
	return fmt.Sprintf("failed after %d attempts: %s", e.Attempts, strings.Join(msgs, "; "))
}

func (e *ExhaustedError) Unwrap() []error { return e.Errs }

// Last returns the error of the final attempt.
func (e *ExhaustedError) Last() error {
	if len(e.Errs) == 0 {
		return nil
	}
	return e.Errs[len(e.Errs)-1]
}

// AttemptFunc runs one attempt. prior holds the errors of every earlier attempt,
// oldest first, so the attempt can build corrective context from them.
type AttemptFunc[T any] func(ctx context.Context, attempt int, prior []error) (T, error)

// Retry runs fn until it succeeds or maxAttempts attempts have failed. Context
// cancellation stops the loop immediately and is returned as is.
func Retry[T any](ctx context.Context, maxAttempts int, fn AttemptFunc[T]) (T, error) {
	var zero T
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	errs := make([]error, 0, maxAttempts)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		out, err := fn(ctx, attempt, errs)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		errs = append(errs, err)
	}
	return zero, &ExhaustedError{Attempts: maxAttempts, Errs: errs}
}
