/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/keyvalue/async"
	kverrors "github.com/suparena/keyvalue/errors"
	"github.com/suparena/keyvalue/query"
)

// GetAs retrieves the value under id narrowed to T. Narrowing is a filter,
// never an error: a stored value of a different type yields an absent result.
func GetAs[T any](ctx context.Context, a Adapter, id, keyspace string) *async.Task[*T] {
	return async.Then(ctx, a.Get(ctx, id, keyspace), narrow[T])
}

// DeleteAs removes the value under id and returns it narrowed to T, with the
// same filter semantics as GetAs. The removal happens regardless of whether
// the removed value matched T.
func DeleteAs[T any](ctx context.Context, a Adapter, id, keyspace string) *async.Task[*T] {
	return async.Then(ctx, a.Delete(ctx, id, keyspace), narrow[T])
}

// GetAllOfAs enumerates the keyspace keeping only values of type T.
func GetAllOfAs[T any](ctx context.Context, a Adapter, keyspace string) *async.Stream[T] {
	return async.Transform(ctx, a.GetAllOf(ctx, keyspace), func(v any) (T, bool, error) {
		t, ok := v.(T)
		return t, ok, nil
	})
}

// FindAs executes the query narrowed to T. Unlike GetAs this contract is
// strict: any produced element that is not a T fails the whole stream.
func FindAs[T any](ctx context.Context, a Adapter, q *query.Query, keyspace string) *async.Stream[T] {
	return async.Transform(ctx, a.Find(ctx, q, keyspace), func(v any) (T, bool, error) {
		t, ok := v.(T)
		if !ok {
			return t, false, kverrors.NewInvalidUsageError("query produced %T, want %T", v, t)
		}
		return t, true, nil
	})
}

// Stored values may be T or *T depending on how the caller handed them to the
// write path; narrowing admits both.
func narrow[T any](v any) (*T, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case T:
		return &t, nil
	case *T:
		return t, nil
	default:
		return nil, nil
	}
}
