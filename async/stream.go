/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package async

import (
	"context"
)

type streamItem[T any] struct {
	value T
	err   error
}

// Stream is a lazy, cancellable sequence of values produced on a background
// goroutine and consumed through Next or Collect. A stream terminates either
// cleanly (exhausted) or with a single trailing error.
type Stream[T any] struct {
	ch     chan streamItem[T]
	cancel context.CancelFunc
}

// StreamOptions configures stream delivery.
type StreamOptions struct {
	// BufferSize is the result channel buffer (default: 100).
	BufferSize int
}

// StreamOption is a functional option for configuring a stream.
type StreamOption func(*StreamOptions)

// DefaultStreamOptions returns the default stream options.
func DefaultStreamOptions() StreamOptions {
	return StreamOptions{BufferSize: 100}
}

// WithBufferSize sets the result channel buffer size.
func WithBufferSize(size int) StreamOption {
	return func(opts *StreamOptions) {
		opts.BufferSize = size
	}
}

// Produce starts fn on a background goroutine and returns the stream it feeds.
// fn emits values through yield, which reports false once the consumer has
// cancelled or the context expired; producers must stop emitting when that
// happens. A non-nil error from fn terminates the stream with that error.
func Produce[T any](ctx context.Context, fn func(ctx context.Context, yield func(T) bool) error, opts ...StreamOption) *Stream[T] {
	options := DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Stream[T]{ch: make(chan streamItem[T], options.BufferSize), cancel: cancel}

	go func() {
		defer close(s.ch)
		yield := func(v T) bool {
			select {
			case s.ch <- streamItem[T]{value: v}:
				return true
			case <-ctx.Done():
				return false
			}
		}
		if err := fn(ctx, yield); err != nil {
			select {
			case s.ch <- streamItem[T]{err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return s
}

// Of returns an already-produced stream over the given values.
func Of[T any](values ...T) *Stream[T] {
	ch := make(chan streamItem[T], len(values))
	for _, v := range values {
		ch <- streamItem[T]{value: v}
	}
	close(ch)
	return &Stream[T]{ch: ch}
}

// Empty returns a stream that terminates immediately.
func Empty[T any]() *Stream[T] {
	return Of[T]()
}

// FailStream returns a stream that terminates with err.
func FailStream[T any](err error) *Stream[T] {
	ch := make(chan streamItem[T], 1)
	ch <- streamItem[T]{err: err}
	close(ch)
	return &Stream[T]{ch: ch}
}

// Next returns the next element. ok is false once the stream is exhausted or
// failed; a failed stream reports its error alongside ok=false.
func (s *Stream[T]) Next(ctx context.Context) (value T, ok bool, err error) {
	select {
	case item, open := <-s.ch:
		if !open {
			var zero T
			return zero, false, nil
		}
		if item.err != nil {
			var zero T
			return zero, false, item.err
		}
		return item.value, true, nil
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	}
}

// Collect drains the stream into a slice.
func (s *Stream[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for {
		v, ok, err := s.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}

// Cancel stops the producer and abandons undelivered elements.
func (s *Stream[T]) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Transform derives a stream applying fn to every element of s. fn may drop an
// element by returning keep=false; a non-nil error fails the derived stream.
func Transform[T, U any](ctx context.Context, s *Stream[T], fn func(T) (mapped U, keep bool, err error)) *Stream[U] {
	return Produce(ctx, func(ctx context.Context, yield func(U) bool) error {
		defer s.Cancel()
		for {
			v, ok, err := s.Next(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			mapped, keep, err := fn(v)
			if err != nil {
				return err
			}
			if keep && !yield(mapped) {
				return nil
			}
		}
	})
}
