/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query_test

import (
	"context"
	"errors"
	"testing"

	"github.com/suparena/keyvalue/async"
	kverrors "github.com/suparena/keyvalue/errors"
	"github.com/suparena/keyvalue/query"
)

// stringAccessor resolves string criteria and sort sources verbatim.
type stringAccessor struct{}

func (stringAccessor) Resolve(q *query.Query) (string, bool, error) {
	switch src := q.Criteria.(type) {
	case nil:
		return "", false, nil
	case string:
		return src, true, nil
	default:
		return "", false, kverrors.NewInvalidUsageError("unsupported criteria %T", src)
	}
}

type sortAccessor struct{}

func (sortAccessor) Resolve(q *query.Query) (string, bool, error) {
	if q.Sort == nil {
		return "", false, nil
	}
	return q.Sort.(string), true, nil
}

// recordingExecutor captures what the engine resolved.
type recordingExecutor struct {
	criteria *string
	sort     *string
	offset   int64
	limit    int
	counted  bool
}

func (r *recordingExecutor) ExecuteResolved(ctx context.Context, criteria, sort *string, offset int64, limit int, keyspace string) *async.Stream[any] {
	r.criteria, r.sort, r.offset, r.limit = criteria, sort, offset, limit
	return async.Of[any](keyspace)
}

func (r *recordingExecutor) CountResolved(ctx context.Context, criteria *string, keyspace string) *async.Task[int64] {
	r.criteria = criteria
	r.counted = true
	return async.Done(int64(1))
}

func TestEngineResolution(t *testing.T) {
	ctx := context.Background()

	t.Run("ResolvesCriteriaAndSort", func(t *testing.T) {
		exec := &recordingExecutor{}
		e := query.NewEngine[string, string](stringAccessor{}, sortAccessor{}, exec)

		q := query.New().WithCriteria("Age > 20").OrderBy("Age").Skip(2).Take(5)
		if _, err := e.Execute(ctx, q, "players").Collect(ctx); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if exec.criteria == nil || *exec.criteria != "Age > 20" {
			t.Fatalf("criteria not resolved: %v", exec.criteria)
		}
		if exec.sort == nil || *exec.sort != "Age" {
			t.Fatalf("sort not resolved: %v", exec.sort)
		}
		if exec.offset != 2 || exec.limit != 5 {
			t.Fatalf("range not forwarded: offset=%d limit=%d", exec.offset, exec.limit)
		}
	})

	t.Run("AbsentSourcesResolveToNil", func(t *testing.T) {
		exec := &recordingExecutor{}
		e := query.NewEngine[string, string](stringAccessor{}, sortAccessor{}, exec)

		if _, err := e.Execute(ctx, query.New(), "players").Collect(ctx); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if exec.criteria != nil || exec.sort != nil {
			t.Fatalf("expected nil criteria and sort, got %v %v", exec.criteria, exec.sort)
		}
		if exec.offset != query.Unset || exec.limit != query.Unset {
			t.Fatalf("expected unset range, got offset=%d limit=%d", exec.offset, exec.limit)
		}
	})

	t.Run("ResolutionErrorFailsStream", func(t *testing.T) {
		exec := &recordingExecutor{}
		e := query.NewEngine[string, string](stringAccessor{}, sortAccessor{}, exec)

		q := query.New().WithCriteria(42)
		if _, err := e.Execute(ctx, q, "players").Collect(ctx); !kverrors.IsInvalidUsage(err) {
			t.Fatalf("expected invalid usage, got %v", err)
		}
	})

	t.Run("CountIgnoresSort", func(t *testing.T) {
		exec := &recordingExecutor{}
		e := query.NewEngine[string, string](stringAccessor{}, sortAccessor{}, exec)

		q := query.New().WithCriteria("Age > 20").OrderBy("Age")
		n, err := e.Count(ctx, q, "players").Await(ctx)
		if err != nil || n != 1 {
			t.Fatalf("Count: %d, %v", n, err)
		}
		if !exec.counted {
			t.Fatal("CountResolved not invoked")
		}
	})
}

func TestEngineAdapterRegistration(t *testing.T) {
	enumerator := enumeratorFunc(func(ctx context.Context, keyspace string) *async.Stream[any] {
		return async.Empty[any]()
	})

	t.Run("RequiredAdapterBeforeRegistration", func(t *testing.T) {
		e := query.NewEngine[string, string](stringAccessor{}, sortAccessor{}, &recordingExecutor{})
		if _, err := e.RequiredAdapter(); !errors.Is(err, kverrors.ErrAdapterRequired) {
			t.Fatalf("expected ErrAdapterRequired, got %v", err)
		}
	})

	t.Run("RegisterIsWriteOnce", func(t *testing.T) {
		e := query.NewEngine[string, string](stringAccessor{}, sortAccessor{}, &recordingExecutor{})
		e.RegisterAdapter(enumerator)
		if e.Adapter() == nil {
			t.Fatal("adapter not registered")
		}

		defer func() {
			if recover() == nil {
				t.Fatal("expected panic on second registration")
			}
		}()
		e.RegisterAdapter(enumerator)
	})
}

type enumeratorFunc func(ctx context.Context, keyspace string) *async.Stream[any]

func (f enumeratorFunc) GetAllOf(ctx context.Context, keyspace string) *async.Stream[any] {
	return f(ctx, keyspace)
}
