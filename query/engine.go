/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query

import (
	"context"
	"sync"

	"github.com/suparena/keyvalue/async"
	kverrors "github.com/suparena/keyvalue/errors"
)

// CriteriaAccessor resolves a Query's opaque criteria source into an
// engine-specific criteria value. Resolution is a pure function of the query;
// ok=false means "no filtering".
type CriteriaAccessor[C any] interface {
	Resolve(q *Query) (criteria C, ok bool, err error)
}

// SortAccessor resolves a Query's opaque sort source into an engine-specific
// ordering. ok=false means "no ordering".
type SortAccessor[S any] interface {
	Resolve(q *Query) (sort S, ok bool, err error)
}

// Enumerator is the slice of the storage adapter contract a query engine
// executes against.
type Enumerator interface {
	GetAllOf(ctx context.Context, keyspace string) *async.Stream[any]
}

// Executor is the evaluation strategy of a concrete engine. Criteria and sort
// arrive resolved; nil means absent.
type Executor[C, S any] interface {
	ExecuteResolved(ctx context.Context, criteria *C, sort *S, offset int64, limit int, keyspace string) *async.Stream[any]
	CountResolved(ctx context.Context, criteria *C, keyspace string) *async.Task[int64]
}

// Engine is the resolve-then-execute half of a query engine: it runs a Query
// through the configured accessors and delegates the resolved attributes to
// the concrete Executor. An Engine executes against exactly one registered
// adapter.
type Engine[C, S any] struct {
	criteria CriteriaAccessor[C]
	sort     SortAccessor[S]
	exec     Executor[C, S]

	mu      sync.Mutex
	adapter Enumerator
}

// NewEngine creates an Engine with the given accessors and evaluation
// strategy. Either accessor may be nil, meaning queries are never filtered
// respectively never ordered by this engine.
func NewEngine[C, S any](criteria CriteriaAccessor[C], sort SortAccessor[S], exec Executor[C, S]) *Engine[C, S] {
	return &Engine[C, S]{criteria: criteria, sort: sort, exec: exec}
}

// RegisterAdapter wires the adapter this engine executes against. The field is
// write-once: registering a second adapter is a configuration error and
// panics.
func (e *Engine[C, S]) RegisterAdapter(adapter Enumerator) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.adapter != nil {
		panic("query: cannot register more than one adapter for this engine")
	}
	e.adapter = adapter
}

// Adapter returns the registered adapter, nil if none.
func (e *Engine[C, S]) Adapter() Enumerator {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.adapter
}

// RequiredAdapter returns the registered adapter or ErrAdapterRequired.
func (e *Engine[C, S]) RequiredAdapter() (Enumerator, error) {
	if a := e.Adapter(); a != nil {
		return a, nil
	}
	return nil, kverrors.ErrAdapterRequired
}

// Execute resolves the query's criteria and sort and delegates to the
// concrete evaluation strategy.
func (e *Engine[C, S]) Execute(ctx context.Context, q *Query, keyspace string) *async.Stream[any] {
	criteria, sort, err := e.resolve(q)
	if err != nil {
		return async.FailStream[any](err)
	}
	return e.exec.ExecuteResolved(ctx, criteria, sort, q.Offset, q.Limit, keyspace)
}

// Count resolves the query's criteria and delegates to the concrete counting
// strategy. Offset and limit never apply to counts.
func (e *Engine[C, S]) Count(ctx context.Context, q *Query, keyspace string) *async.Task[int64] {
	criteria, _, err := e.resolve(q)
	if err != nil {
		return async.Fail[int64](err)
	}
	return e.exec.CountResolved(ctx, criteria, keyspace)
}

func (e *Engine[C, S]) resolve(q *Query) (*C, *S, error) {
	var criteria *C
	var sort *S

	if e.criteria != nil {
		c, ok, err := e.criteria.Resolve(q)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			criteria = &c
		}
	}
	if e.sort != nil {
		s, ok, err := e.sort.Resolve(q)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			sort = &s
		}
	}
	return criteria, sort, nil
}
