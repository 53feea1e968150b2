/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package async

import (
	"context"

	kverrors "github.com/suparena/keyvalue/errors"
)

// One drains s and requires exactly one element: zero or multiple elements
// raise a multiplicity error. The stream is cancelled as soon as a second
// element is observed.
func One[T any](ctx context.Context, s *Stream[T]) (T, error) {
	defer s.Cancel()

	var zero T
	first, ok, err := s.Next(ctx)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, kverrors.NewMultiplicityError("exactly one", 0)
	}
	if _, more, err := s.Next(ctx); err != nil {
		return zero, err
	} else if more {
		return zero, kverrors.NewMultiplicityError("exactly one", 2)
	}
	return first, nil
}

// AtMostOne drains s and requires zero or one element. Zero elements is a
// valid absent result (ok=false); more than one raises a multiplicity error.
func AtMostOne[T any](ctx context.Context, s *Stream[T]) (T, bool, error) {
	defer s.Cancel()

	var zero T
	first, ok, err := s.Next(ctx)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		return zero, false, nil
	}
	if _, more, err := s.Next(ctx); err != nil {
		return zero, false, err
	} else if more {
		return zero, false, kverrors.NewMultiplicityError("at most one", 2)
	}
	return first, true, nil
}
