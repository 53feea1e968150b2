/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/keyvalue/async"
	"github.com/suparena/keyvalue/query"
)

// QueryEngine is the engine-facing view an adapter needs: registration at
// wiring time plus query execution and counting.
type QueryEngine interface {
	RegisterAdapter(adapter query.Enumerator)
	Execute(ctx context.Context, q *query.Query, keyspace string) *async.Stream[any]
	Count(ctx context.Context, q *query.Query, keyspace string) *async.Task[int64]
}

// Base wires a concrete adapter to its query engine and supplies the
// engine-delegating Find and CountMatching implementations. Concrete adapters
// embed Base and pass themselves to NewBase at construction, which registers
// the adapter on the engine exactly once.
type Base struct {
	engine QueryEngine
}

// NewBase registers adapter on engine and returns the embeddable Base.
func NewBase(engine QueryEngine, adapter query.Enumerator) *Base {
	engine.RegisterAdapter(adapter)
	return &Base{engine: engine}
}

// Engine returns the wired query engine.
func (b *Base) Engine() QueryEngine {
	return b.engine
}

// Find delegates to the registered query engine.
func (b *Base) Find(ctx context.Context, q *query.Query, keyspace string) *async.Stream[any] {
	return b.engine.Execute(ctx, q, keyspace)
}

// CountMatching delegates to the registered query engine.
func (b *Base) CountMatching(ctx context.Context, q *query.Query, keyspace string) *async.Task[int64] {
	return b.engine.Count(ctx, q, keyspace)
}
