/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mapstore

import (
	"context"
	"sync"

	"github.com/suparena/keyvalue/async"
	"github.com/suparena/keyvalue/datastore"
	kverrors "github.com/suparena/keyvalue/errors"
	"github.com/suparena/keyvalue/expression"
	"github.com/suparena/keyvalue/query"
)

// Store is the reference in-memory adapter: a two-level keyspace-name →
// container structure shared by all concurrent callers. Keyspace containers
// are created lazily on first write; creation is compare-and-create atomic, so
// concurrent first-writers observe exactly one shared container.
type Store struct {
	*datastore.Base

	mu        sync.RWMutex
	keyspaces map[string]Container

	newContainer ContainerFactory
	disposeOnce  sync.Once
}

// Option configures a Store.
type Option func(*config)

type config struct {
	factory ContainerFactory
	engine  datastore.QueryEngine
}

// WithContainerFactory selects the per-keyspace container backend.
func WithContainerFactory(factory ContainerFactory) Option {
	return func(c *config) {
		c.factory = factory
	}
}

// WithEngine selects the query engine; defaults to the expression engine.
func WithEngine(engine datastore.QueryEngine) Option {
	return func(c *config) {
		c.engine = engine
	}
}

// New creates a Store and registers it on its query engine.
func New(opts ...Option) *Store {
	cfg := config{factory: NewHashContainer}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.engine == nil {
		cfg.engine = expression.New()
	}

	s := &Store{
		keyspaces:    make(map[string]Container),
		newContainer: cfg.factory,
	}
	s.Base = datastore.NewBase(cfg.engine, s)
	return s
}

// Put upserts value under id, lazily creating the keyspace container, and
// returns the previously stored value (nil if none).
func (s *Store) Put(ctx context.Context, id, keyspace string, value any) *async.Task[any] {
	if err := requireArgs(id, keyspace); err != nil {
		return async.Fail[any](err)
	}
	return async.Run(ctx, func(ctx context.Context) (any, error) {
		prev, had := s.container(keyspace).Put(id, value)
		if !had {
			return nil, nil
		}
		return prev, nil
	})
}

// Get returns the value under id, nil if absent.
func (s *Store) Get(ctx context.Context, id, keyspace string) *async.Task[any] {
	if err := requireArgs(id, keyspace); err != nil {
		return async.Fail[any](err)
	}
	return async.Run(ctx, func(ctx context.Context) (any, error) {
		c, ok := s.peek(keyspace)
		if !ok {
			return nil, nil
		}
		v, ok := c.Get(id)
		if !ok {
			return nil, nil
		}
		return v, nil
	})
}

// Contains reports whether Get yields a present value.
func (s *Store) Contains(ctx context.Context, id, keyspace string) *async.Task[bool] {
	return async.Then(ctx, s.Get(ctx, id, keyspace), func(v any) (bool, error) {
		return v != nil, nil
	})
}

// Delete removes and returns the value under id, nil if none existed.
func (s *Store) Delete(ctx context.Context, id, keyspace string) *async.Task[any] {
	if err := requireArgs(id, keyspace); err != nil {
		return async.Fail[any](err)
	}
	return async.Run(ctx, func(ctx context.Context) (any, error) {
		c, ok := s.peek(keyspace)
		if !ok {
			return nil, nil
		}
		prev, had := c.Delete(id)
		if !had {
			return nil, nil
		}
		return prev, nil
	})
}

// Count returns the number of entries in the keyspace.
func (s *Store) Count(ctx context.Context, keyspace string) *async.Task[int64] {
	if keyspace == "" {
		return async.Fail[int64](kverrors.NewInvalidUsageError("keyspace must not be empty"))
	}
	return async.Run(ctx, func(ctx context.Context) (int64, error) {
		c, ok := s.peek(keyspace)
		if !ok {
			return 0, nil
		}
		return int64(c.Len()), nil
	})
}

// GetAllOf enumerates every value in the keyspace, read-committed at
// enumeration time.
func (s *Store) GetAllOf(ctx context.Context, keyspace string) *async.Stream[any] {
	return async.Transform(ctx, s.Entries(ctx, keyspace), func(e datastore.Entry) (any, bool, error) {
		return e.Value, true, nil
	})
}

// Entries enumerates every (id, value) pair in the keyspace.
func (s *Store) Entries(ctx context.Context, keyspace string) *async.Stream[datastore.Entry] {
	if keyspace == "" {
		return async.FailStream[datastore.Entry](kverrors.NewInvalidUsageError("keyspace must not be empty"))
	}
	return async.Produce(ctx, func(ctx context.Context, yield func(datastore.Entry) bool) error {
		c, ok := s.peek(keyspace)
		if !ok {
			return nil
		}
		for _, entry := range c.Snapshot() {
			if !yield(entry) {
				return nil
			}
		}
		return nil
	})
}

// DeleteAllOf removes every entry in the keyspace; other keyspaces are
// unaffected.
func (s *Store) DeleteAllOf(ctx context.Context, keyspace string) *async.Task[struct{}] {
	if keyspace == "" {
		return async.Fail[struct{}](kverrors.NewInvalidUsageError("keyspace must not be empty"))
	}
	return async.Run(ctx, func(ctx context.Context) (struct{}, error) {
		if c, ok := s.peek(keyspace); ok {
			c.Clear()
		}
		return struct{}{}, nil
	})
}

// Clear removes every keyspace and every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyspaces = make(map[string]Container)
}

// Dispose tears the store down; for the in-memory store this is Clear.
func (s *Store) Dispose() error {
	s.disposeOnce.Do(s.Clear)
	return nil
}

// container returns the keyspace's container, creating it if necessary.
// First writer wins; concurrent creators share the single stored container.
func (s *Store) container(keyspace string) Container {
	s.mu.RLock()
	c, ok := s.keyspaces[keyspace]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.keyspaces[keyspace]; ok {
		return c
	}
	c = s.newContainer()
	s.keyspaces[keyspace] = c
	return c
}

// peek looks up the keyspace's container without creating it.
func (s *Store) peek(keyspace string) (Container, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.keyspaces[keyspace]
	return c, ok
}

func requireArgs(id, keyspace string) error {
	if id == "" {
		return kverrors.NewInvalidUsageError("id must not be empty")
	}
	if keyspace == "" {
		return kverrors.NewInvalidUsageError("keyspace must not be empty")
	}
	return nil
}

var _ datastore.Adapter = (*Store)(nil)
var _ query.Enumerator = (*Store)(nil)
