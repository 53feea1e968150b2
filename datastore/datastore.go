/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/keyvalue/async"
	"github.com/suparena/keyvalue/query"
)

// Entry is an (identifier, value) pair scoped to a keyspace.
type Entry struct {
	ID    string
	Value any
}

// Adapter is the pluggable storage backend: keyspace-partitioned CRUD and
// enumeration over opaque values. All operations are asynchronous and return
// handles; none blocks the calling goroutine. Identifier and keyspace
// arguments must be non-empty; passing an empty one is a caller contract
// violation surfaced as an invalid-usage failure.
//
// Keyspaces are created lazily on first write and never declared explicitly.
type Adapter interface {
	// Put upserts value under id and returns whatever was previously stored
	// at that id, nil if nothing was.
	Put(ctx context.Context, id, keyspace string, value any) *async.Task[any]

	// Get returns the value stored under id, nil if absent.
	Get(ctx context.Context, id, keyspace string) *async.Task[any]

	// Contains reports whether Get would yield a present value.
	Contains(ctx context.Context, id, keyspace string) *async.Task[bool]

	// Delete removes and returns the value stored under id, nil if none
	// existed.
	Delete(ctx context.Context, id, keyspace string) *async.Task[any]

	// GetAllOf enumerates every value in the keyspace. The enumeration is
	// read-committed at enumeration time, never a transactional snapshot:
	// concurrent writes may or may not be reflected.
	GetAllOf(ctx context.Context, keyspace string) *async.Stream[any]

	// Entries enumerates every (id, value) pair in the keyspace under the
	// same isolation as GetAllOf.
	Entries(ctx context.Context, keyspace string) *async.Stream[Entry]

	// DeleteAllOf removes every entry in the keyspace without touching other
	// keyspaces.
	DeleteAllOf(ctx context.Context, keyspace string) *async.Task[struct{}]

	// Count returns the number of entries currently in the keyspace, 0 if the
	// keyspace was never created.
	Count(ctx context.Context, keyspace string) *async.Task[int64]

	// Find delegates filtering, ordering and pagination to the registered
	// query engine.
	Find(ctx context.Context, q *query.Query, keyspace string) *async.Stream[any]

	// CountMatching counts the entries matching the query's criteria.
	CountMatching(ctx context.Context, q *query.Query, keyspace string) *async.Task[int64]

	// Clear removes every keyspace and every entry.
	Clear()

	// Dispose is the teardown hook, called exactly once at shutdown.
	Dispose() error
}
