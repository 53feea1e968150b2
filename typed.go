/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package keyvalue

import (
	"context"
	"reflect"

	"github.com/suparena/keyvalue/async"
	"github.com/suparena/keyvalue/query"
)

// Type-parameterized operations over a Template. The keyspace is resolved
// from the type parameter; retrieval applies a type-narrowing filter, so a
// keyspace shared by several types (or addressed through an interface type)
// only yields values the requested type admits.

// FindByID retrieves the value under id narrowed to T; absent and
// type-mismatched values both yield nil.
func FindByID[T any](ctx context.Context, t *Template, id string) *async.Task[*T] {
	return async.Run(ctx, func(ctx context.Context) (*T, error) {
		keyspace, err := t.keyspaceOf(typeOf[T]())
		if err != nil {
			return nil, err
		}
		found, err := t.doFindByID(ctx, id, keyspace, elemType(typeOf[T]()), narrowTo[T])
		if err != nil {
			return nil, err
		}
		return deref[T](found), nil
	})
}

// FindAll enumerates the keyspace of T keeping the values T admits. With an
// interface type parameter every implementation passes the filter.
func FindAll[T any](ctx context.Context, t *Template) *async.Stream[T] {
	keyspace, err := t.keyspaceOf(typeOf[T]())
	if err != nil {
		return async.FailStream[T](err)
	}
	return filterAssignable[T](ctx, t.adapter.GetAllOf(ctx, keyspace))
}

// FindAllSorted enumerates the keyspace of T in the given order. The sort
// source is resolved by the adapter's query engine.
func FindAllSorted[T any](ctx context.Context, t *Template, sort any) *async.Stream[T] {
	return Find[T](ctx, t, query.New().OrderBy(sort))
}

// Find executes the query against the keyspace of T, keeping the values T
// admits.
func Find[T any](ctx context.Context, t *Template, q *query.Query) *async.Stream[T] {
	keyspace, err := t.keyspaceOf(typeOf[T]())
	if err != nil {
		return async.FailStream[T](err)
	}
	return filterAssignable[T](ctx, t.adapter.Find(ctx, q, keyspace))
}

// FindInRange returns up to rows values starting at offset.
func FindInRange[T any](ctx context.Context, t *Template, offset int64, rows int) *async.Stream[T] {
	return Find[T](ctx, t, query.New().Skip(offset).Take(rows))
}

// FindInRangeSorted is FindInRange with an ordering applied before the range.
func FindInRangeSorted[T any](ctx context.Context, t *Template, offset int64, rows int, sort any) *async.Stream[T] {
	return Find[T](ctx, t, query.New().OrderBy(sort).Skip(offset).Take(rows))
}

// Count returns the number of entries in the keyspace of T.
func Count[T any](ctx context.Context, t *Template) *async.Task[int64] {
	keyspace, err := t.keyspaceOf(typeOf[T]())
	if err != nil {
		return async.Fail[int64](err)
	}
	return t.adapter.Count(ctx, keyspace)
}

// CountMatching counts the entries of T's keyspace matching the query's
// criteria. Exactly one raw count is required from the adapter.
func CountMatching[T any](ctx context.Context, t *Template, q *query.Query) *async.Task[int64] {
	return async.Run(ctx, func(ctx context.Context) (int64, error) {
		keyspace, err := t.keyspaceOf(typeOf[T]())
		if err != nil {
			return 0, err
		}
		return t.countMatching(ctx, q, keyspace)
	})
}

// DeleteByID removes the value under id from the keyspace of T and returns it
// narrowed to T; deleting a missing id yields nil, never an error.
func DeleteByID[T any](ctx context.Context, t *Template, id string) *async.Task[*T] {
	return async.Run(ctx, func(ctx context.Context) (*T, error) {
		keyspace, err := t.keyspaceOf(typeOf[T]())
		if err != nil {
			return nil, err
		}
		removed, err := t.doDelete(ctx, id, keyspace, elemType(typeOf[T]()), narrowTo[T])
		if err != nil {
			return nil, err
		}
		return deref[T](removed), nil
	})
}

// DeleteAll drops the keyspace of T: every entry is removed, other keyspaces
// are unaffected.
func DeleteAll[T any](ctx context.Context, t *Template) *async.Task[struct{}] {
	return async.Run(ctx, func(ctx context.Context) (struct{}, error) {
		keyspace, err := t.keyspaceOf(typeOf[T]())
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, t.dropKeyspace(ctx, keyspace, elemType(typeOf[T]()))
	})
}

// Stored values may be T or *T depending on how the caller handed them to the
// write path; narrowing admits both.
func filterAssignable[T any](ctx context.Context, s *async.Stream[any]) *async.Stream[T] {
	return async.Transform(ctx, s, func(v any) (T, bool, error) {
		if t, ok := v.(T); ok {
			return t, true, nil
		}
		if p, ok := v.(*T); ok && p != nil {
			return *p, true, nil
		}
		var zero T
		return zero, false, nil
	})
}

func narrowTo[T any](v any) (any, bool) {
	if t, ok := v.(T); ok {
		return t, true
	}
	if p, ok := v.(*T); ok && p != nil {
		return p, true
	}
	return nil, false
}

func deref[T any](v any) *T {
	switch t := v.(type) {
	case nil:
		return nil
	case T:
		return &t
	case *T:
		return t
	default:
		return nil
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func elemType(typ reflect.Type) reflect.Type {
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return typ
}
