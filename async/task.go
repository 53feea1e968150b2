/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package async

import (
	"context"
)

// Task represents a single asynchronous result. A Task completes exactly once,
// either with a value or with an error, and may be awaited by any number of
// callers.
type Task[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc

	value T
	err   error
}

// Run starts fn on a background goroutine and returns a handle for its result.
// The supplied context bounds the computation; cancelling the task cancels the
// derived context passed to fn.
func Run[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Task[T] {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task[T]{done: make(chan struct{}), cancel: cancel}

	go func() {
		defer close(t.done)
		defer cancel()
		t.value, t.err = fn(ctx)
	}()

	return t
}

// Done returns an already-completed task holding v.
func Done[T any](v T) *Task[T] {
	t := &Task[T]{done: make(chan struct{}), value: v}
	close(t.done)
	return t
}

// Fail returns an already-failed task.
func Fail[T any](err error) *Task[T] {
	t := &Task[T]{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

// Await blocks until the task completes or ctx expires.
func (t *Task[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Cancel stops the underlying computation if it is still running. Writes the
// computation already committed are not rolled back.
func (t *Task[T]) Cancel() {
	if t.cancel != nil {
		t.cancel()
	}
}

// Then derives a task that applies fn to the result of t once it completes.
// Errors from t short-circuit fn.
func Then[T, U any](ctx context.Context, t *Task[T], fn func(T) (U, error)) *Task[U] {
	return Run(ctx, func(ctx context.Context) (U, error) {
		v, err := t.Await(ctx)
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(v)
	})
}
