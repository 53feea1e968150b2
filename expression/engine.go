/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package expression

import (
	"context"
	"sort"

	"github.com/suparena/keyvalue/async"
	kverrors "github.com/suparena/keyvalue/errors"
	"github.com/suparena/keyvalue/query"
)

// Engine is the reference query engine: criteria are boolean expressions
// evaluated per candidate, sorts are arbitrary comparators, and both operate
// in memory over the full keyspace enumeration of the registered adapter.
type Engine struct {
	*query.Engine[Criteria, Comparator]
}

// New creates an expression engine. The adapter is registered separately at
// wiring time.
func New() *Engine {
	e := &Engine{}
	e.Engine = query.NewEngine[Criteria, Comparator](criteriaAccessor{}, sortAccessor{}, e)
	return e
}

// ExecuteResolved fetches the keyspace snapshot, stably sorts it if a
// comparator is present, filters it if criteria are present, then applies
// offset and limit.
func (e *Engine) ExecuteResolved(ctx context.Context, criteria *Criteria, cmp *Comparator, offset int64, limit int, keyspace string) *async.Stream[any] {
	adapter, err := e.RequiredAdapter()
	if err != nil {
		return async.FailStream[any](err)
	}

	return async.Produce(ctx, func(ctx context.Context, yield func(any) bool) error {
		snapshot, err := adapter.GetAllOf(ctx, keyspace).Collect(ctx)
		if err != nil {
			return err
		}
		if cmp != nil {
			sortStable(snapshot, *cmp)
		}
		matched, err := filterMatching(snapshot, criteria)
		if err != nil {
			return err
		}
		for _, v := range applyRange(matched, offset, limit) {
			if !yield(v) {
				return nil
			}
		}
		return nil
	})
}

// CountResolved counts the matching entries. Offset and limit never apply.
func (e *Engine) CountResolved(ctx context.Context, criteria *Criteria, keyspace string) *async.Task[int64] {
	adapter, err := e.RequiredAdapter()
	if err != nil {
		return async.Fail[int64](err)
	}

	return async.Run(ctx, func(ctx context.Context) (int64, error) {
		snapshot, err := adapter.GetAllOf(ctx, keyspace).Collect(ctx)
		if err != nil {
			return 0, err
		}
		matched, err := filterMatching(snapshot, criteria)
		if err != nil {
			return 0, err
		}
		return int64(len(matched)), nil
	})
}

func sortStable(values []any, cmp Comparator) {
	sort.SliceStable(values, func(i, j int) bool {
		return cmp(values[i], values[j]) < 0
	})
}

func filterMatching(values []any, criteria *Criteria) ([]any, error) {
	if criteria == nil {
		return values, nil
	}
	matched := make([]any, 0, len(values))
	for _, v := range values {
		ok, err := criteria.Matches(v)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, v)
		}
	}
	return matched, nil
}

func applyRange(values []any, offset int64, limit int) []any {
	if offset > 0 {
		if offset >= int64(len(values)) {
			return nil
		}
		values = values[offset:]
	}
	if limit > 0 && limit < len(values) {
		values = values[:limit]
	}
	return values
}

type criteriaAccessor struct{}

func (criteriaAccessor) Resolve(q *query.Query) (Criteria, bool, error) {
	switch c := q.Criteria.(type) {
	case nil:
		return Criteria{}, false, nil
	case *Criteria:
		return *c, true, nil
	case Criteria:
		return c, true, nil
	case string:
		compiled, err := NewCriteria(c)
		if err != nil {
			return Criteria{}, false, err
		}
		return *compiled, true, nil
	default:
		return Criteria{}, false, kverrors.NewInvalidUsageError("unsupported criteria source %T", c)
	}
}

type sortAccessor struct{}

func (sortAccessor) Resolve(q *query.Query) (Comparator, bool, error) {
	switch s := q.Sort.(type) {
	case nil:
		return nil, false, nil
	case Comparator:
		return s, true, nil
	case func(a, b any) int:
		return s, true, nil
	case string:
		cmp, err := ByField(s)
		if err != nil {
			return nil, false, err
		}
		return cmp, true, nil
	default:
		return nil, false, kverrors.NewInvalidUsageError("unsupported sort source %T", s)
	}
}
