// Package fallback runs a fallible primary path with a deterministic secondary.
package fallback

import (
	"context"
	"fmt"
)

// Outcome is the result of Do. Degraded is true when Value came from the
// secondary path, and Err then holds the primary failure.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Err      error
}

// PanicError wraps a value recovered from a panicking primary.
type PanicError struct {
	Name  string
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Name, e.Value)
}

// Do runs primary and returns its value on success. On error, panic or an
// already cancelled context it returns secondary() instead. secondary must
// not fail.
func Do[T any](ctx context.Context, name string, primary func(context.Context) (T, error), secondary func() T) Outcome[T] {
	if err := ctx.Err(); err != nil {
		return Outcome[T]{Value: secondary(), Degraded: true, Err: fmt.Errorf("%s: %w", name, err)}
	}

	v, err := safeCall(ctx, name, primary)
	if err != nil {
		return Outcome[T]{Value: secondary(), Degraded: true, Err: err}
	}
	return Outcome[T]{Value: v}
}

func safeCall[T any](ctx context.Context, name string, fn func(context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Name: name, Value: r}
		}
	}()
	return fn(ctx)
}
