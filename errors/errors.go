/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrDuplicateKey is returned when an insert targets an id that is already
	// present in its keyspace.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidUsage is returned when a caller violates an operation
	// precondition, such as a missing identifier or unresolvable keyspace.
	ErrInvalidUsage = errors.New("invalid usage")

	// ErrMultiplicity is returned when a cardinality constraint is violated:
	// zero results where exactly one was required, or more than one where at
	// most one was allowed.
	ErrMultiplicity = errors.New("unexpected result count")

	// ErrAdapterRequired is returned when a query engine executes before an
	// adapter has been registered.
	ErrAdapterRequired = errors.New("adapter required")
)

// DuplicateKeyError reports an insert against an existing id.
type DuplicateKeyError struct {
	Keyspace string
	ID       string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("cannot insert existing id %q into keyspace %q; use update", e.ID, e.Keyspace)
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// InvalidUsageError reports a violated caller precondition.
type InvalidUsageError struct {
	Message string
}

func (e *InvalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage: %s", e.Message)
}

func (e *InvalidUsageError) Is(target error) bool {
	return target == ErrInvalidUsage
}

// MultiplicityError reports a cardinality violation.
type MultiplicityError struct {
	Expected string
	Actual   int
}

func (e *MultiplicityError) Error() string {
	return fmt.Sprintf("expected %s result, got %d", e.Expected, e.Actual)
}

func (e *MultiplicityError) Is(target error) bool {
	return target == ErrMultiplicity
}

// Helper functions for creating errors

// NewDuplicateKeyError creates a new DuplicateKeyError.
func NewDuplicateKeyError(keyspace, id string) error {
	return &DuplicateKeyError{Keyspace: keyspace, ID: id}
}

// NewInvalidUsageError creates a new InvalidUsageError.
func NewInvalidUsageError(format string, args ...any) error {
	return &InvalidUsageError{Message: fmt.Sprintf(format, args...)}
}

// NewMultiplicityError creates a new MultiplicityError. expected describes the
// violated constraint, for example "exactly one" or "at most one".
func NewMultiplicityError(expected string, actual int) error {
	return &MultiplicityError{Expected: expected, Actual: actual}
}

// IsDuplicateKey checks if an error is a duplicate-key error.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// IsInvalidUsage checks if an error is an invalid-usage error.
func IsInvalidUsage(err error) bool {
	return errors.Is(err, ErrInvalidUsage)
}

// IsMultiplicity checks if an error is a multiplicity error.
func IsMultiplicity(err error) bool {
	return errors.Is(err, ErrMultiplicity)
}

// Translator converts low-level adapter failures into domain errors. It is
// applied once, at the outermost boundary of the Execute escape hatch.
// Returning nil declines translation and lets the original error propagate.
type Translator interface {
	Translate(err error) error
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(err error) error

func (f TranslatorFunc) Translate(err error) error {
	return f(err)
}
