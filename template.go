/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package keyvalue

import (
	"context"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/suparena/keyvalue/async"
	"github.com/suparena/keyvalue/datastore"
	kverrors "github.com/suparena/keyvalue/errors"
	"github.com/suparena/keyvalue/event"
	"github.com/suparena/keyvalue/query"
	"github.com/suparena/keyvalue/registry"
)

// KeyspaceResolver maps an entity type to the keyspace holding its entries.
// Resolution must be deterministic and side-effect free.
type KeyspaceResolver interface {
	Resolve(t reflect.Type) (string, error)
}

// KeyspaceResolverFunc adapts a function to the KeyspaceResolver interface.
type KeyspaceResolverFunc func(t reflect.Type) (string, error)

func (f KeyspaceResolverFunc) Resolve(t reflect.Type) (string, error) {
	return f(t)
}

// IdentifierGenerator produces an identifier for an entity that lacks one.
type IdentifierGenerator interface {
	GenerateID(entity any) (string, error)
}

// IdentifierGeneratorFunc adapts a function to the IdentifierGenerator
// interface.
type IdentifierGeneratorFunc func(entity any) (string, error)

func (f IdentifierGeneratorFunc) GenerateID(entity any) (string, error) {
	return f(entity)
}

// Callback is the escape hatch: direct adapter access with the template's
// exception translation applied to the result.
type Callback func(ctx context.Context, adapter datastore.Adapter) (any, error)

// StreamCallback is Callback's multi-result form.
type StreamCallback func(ctx context.Context, adapter datastore.Adapter) *async.Stream[any]

// Template is the top-level operations façade: it composes one storage
// adapter (whose query engine was wired at adapter construction) with the
// keyspace resolver, identifier generator, lifecycle event publisher and
// exception translator collaborators.
type Template struct {
	adapter    datastore.Adapter
	resolver   KeyspaceResolver
	idgen      IdentifierGenerator
	publisher  event.Publisher
	translator kverrors.Translator
	allowed    map[event.Kind]struct{}

	destroyOnce sync.Once
}

// Option configures a Template.
type Option func(*Template)

// WithKeyspaceResolver replaces the registry-backed default resolver.
func WithKeyspaceResolver(r KeyspaceResolver) Option {
	return func(t *Template) {
		t.resolver = r
	}
}

// WithIdentifierGenerator replaces the UUID default generator.
func WithIdentifierGenerator(g IdentifierGenerator) Option {
	return func(t *Template) {
		t.idgen = g
	}
}

// WithPublisher sets the lifecycle event publisher. Without one the template
// falls back to the process-wide subscriber, if any.
func WithPublisher(p event.Publisher) Option {
	return func(t *Template) {
		t.publisher = p
	}
}

// WithTranslator sets the exception translator applied at the Execute
// boundary.
func WithTranslator(tr kverrors.Translator) Option {
	return func(t *Template) {
		t.translator = tr
	}
}

// WithEventsToPublish restricts publishing to the given kinds. No kinds means
// publish everything, which is also the default.
func WithEventsToPublish(kinds ...event.Kind) Option {
	return func(t *Template) {
		t.allowed = make(map[event.Kind]struct{}, len(kinds))
		for _, k := range kinds {
			t.allowed[k] = struct{}{}
		}
	}
}

// New creates a Template over the given adapter.
func New(adapter datastore.Adapter, opts ...Option) *Template {
	if adapter == nil {
		panic("keyvalue: adapter must not be nil")
	}
	t := &Template{
		adapter: adapter,
		resolver: KeyspaceResolverFunc(func(typ reflect.Type) (string, error) {
			return registry.KeyspaceOf(typ)
		}),
		idgen: IdentifierGeneratorFunc(func(any) (string, error) {
			return uuid.NewString(), nil
		}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Adapter exposes the composed storage adapter.
func (t *Template) Adapter() datastore.Adapter {
	return t.adapter
}

// Insert stores the entity under its own identifier, generating and assigning
// one when the entity exposes an empty identifier. Fails with duplicate-key
// when the id is already present and with invalid-usage when the entity
// exposes no identifier at all. Returns the inserted entity pass-through.
func (t *Template) Insert(ctx context.Context, entity any) *async.Task[any] {
	return async.Run(ctx, func(ctx context.Context) (any, error) {
		id, hasID, err := registry.IDOf(entity)
		if err != nil {
			return nil, err
		}
		if !hasID {
			return nil, kverrors.NewInvalidUsageError("cannot determine id for type %T", entity)
		}
		if id == "" {
			id, err = t.idgen.GenerateID(entity)
			if err != nil {
				return nil, err
			}
			if err := registry.SetID(entity, id); err != nil {
				return nil, err
			}
		}
		return t.doInsert(ctx, id, entity)
	})
}

// InsertWithID stores the entity under the given id. Fails with duplicate-key
// when the id is already present in the entity's keyspace; nothing is written
// in that case.
func (t *Template) InsertWithID(ctx context.Context, id string, entity any) *async.Task[any] {
	return async.Run(ctx, func(ctx context.Context) (any, error) {
		return t.doInsert(ctx, id, entity)
	})
}

func (t *Template) doInsert(ctx context.Context, id string, entity any) (any, error) {
	if err := requireIDAndEntity(id, entity); err != nil {
		return nil, err
	}
	keyspace, err := t.keyspaceFor(entity)
	if err != nil {
		return nil, err
	}

	typ := entityType(entity)
	t.publish(event.Before(event.OpInsert, id, keyspace, typ, entity))

	exists, err := t.adapter.Contains(ctx, id, keyspace).Await(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, kverrors.NewDuplicateKeyError(keyspace, id)
	}
	if _, err := t.adapter.Put(ctx, id, keyspace, entity).Await(ctx); err != nil {
		return nil, err
	}

	t.publish(event.After(event.OpInsert, id, keyspace, typ, entity))
	return entity, nil
}

// Update stores the entity under its own identifier, overwriting whatever was
// there. Fails with invalid-usage when the entity exposes no identifier.
func (t *Template) Update(ctx context.Context, entity any) *async.Task[any] {
	return async.Run(ctx, func(ctx context.Context) (any, error) {
		id, hasID, err := registry.IDOf(entity)
		if err != nil {
			return nil, err
		}
		if !hasID || id == "" {
			return nil, kverrors.NewInvalidUsageError("cannot determine id for type %T", entity)
		}
		return t.doUpdate(ctx, id, entity)
	})
}

// UpdateWithID stores the entity under the given id. Update and create are
// the same write; only insert enforces prior absence. Returns the updated
// entity pass-through.
func (t *Template) UpdateWithID(ctx context.Context, id string, entity any) *async.Task[any] {
	return async.Run(ctx, func(ctx context.Context) (any, error) {
		return t.doUpdate(ctx, id, entity)
	})
}

func (t *Template) doUpdate(ctx context.Context, id string, entity any) (any, error) {
	if err := requireIDAndEntity(id, entity); err != nil {
		return nil, err
	}
	keyspace, err := t.keyspaceFor(entity)
	if err != nil {
		return nil, err
	}

	typ := entityType(entity)
	t.publish(event.Before(event.OpUpdate, id, keyspace, typ, entity))

	prev, err := t.adapter.Put(ctx, id, keyspace, entity).Await(ctx)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		t.publish(event.AfterUpdate(id, keyspace, typ, entity, prev))
	} else {
		t.publish(event.AfterUpdate(id, keyspace, typ, entity, nil))
	}
	return entity, nil
}

// DeleteEntity removes the entity by its own type and identifier, returning
// the removed value (nil if none existed). Fails with invalid-usage when no
// identifier can be extracted.
func (t *Template) DeleteEntity(ctx context.Context, entity any) *async.Task[any] {
	return async.Run(ctx, func(ctx context.Context) (any, error) {
		id, hasID, err := registry.IDOf(entity)
		if err != nil {
			return nil, err
		}
		if !hasID || id == "" {
			return nil, kverrors.NewInvalidUsageError("cannot extract id from %T", entity)
		}
		keyspace, err := t.keyspaceFor(entity)
		if err != nil {
			return nil, err
		}
		return t.doDelete(ctx, id, keyspace, entityType(entity), keepAny)
	})
}

func (t *Template) doDelete(ctx context.Context, id, keyspace string, typ reflect.Type, narrow func(any) (any, bool)) (any, error) {
	t.publish(event.Before(event.OpDelete, id, keyspace, typ, nil))

	removed, err := t.adapter.Delete(ctx, id, keyspace).Await(ctx)
	if err != nil {
		return nil, err
	}
	if removed != nil {
		if narrowed, ok := narrow(removed); ok {
			removed = narrowed
		} else {
			removed = nil
		}
	}

	t.publish(event.After(event.OpDelete, id, keyspace, typ, removed))
	return removed, nil
}

func (t *Template) doFindByID(ctx context.Context, id, keyspace string, typ reflect.Type, narrow func(any) (any, bool)) (any, error) {
	t.publish(event.Before(event.OpGet, id, keyspace, typ, nil))

	found, err := t.adapter.Get(ctx, id, keyspace).Await(ctx)
	if err != nil {
		return nil, err
	}
	if found != nil {
		if narrowed, ok := narrow(found); ok {
			found = narrowed
		} else {
			found = nil
		}
	}

	t.publish(event.After(event.OpGet, id, keyspace, typ, found))
	return found, nil
}

func (t *Template) dropKeyspace(ctx context.Context, keyspace string, typ reflect.Type) error {
	t.publish(event.Before(event.OpDropKeyspace, "", keyspace, typ, nil))

	if _, err := t.adapter.DeleteAllOf(ctx, keyspace).Await(ctx); err != nil {
		return err
	}

	t.publish(event.After(event.OpDropKeyspace, "", keyspace, typ, nil))
	return nil
}

// countMatching layers the exactly-one cardinality requirement on the
// adapter's raw count.
func (t *Template) countMatching(ctx context.Context, q *query.Query, keyspace string) (int64, error) {
	counts := async.Produce(ctx, func(ctx context.Context, yield func(int64) bool) error {
		n, err := t.adapter.CountMatching(ctx, q, keyspace).Await(ctx)
		if err != nil {
			return err
		}
		yield(n)
		return nil
	})
	return async.One(ctx, counts)
}

// Execute runs the callback with direct adapter access, routing any failure
// through the exception translator before re-raising.
func (t *Template) Execute(ctx context.Context, action Callback) *async.Task[any] {
	return async.Run(ctx, func(ctx context.Context) (any, error) {
		v, err := action(ctx, t.adapter)
		if err != nil {
			return nil, t.translate(err)
		}
		return v, nil
	})
}

// ExecuteStream is Execute's multi-result form.
func (t *Template) ExecuteStream(ctx context.Context, action StreamCallback) *async.Stream[any] {
	source := action(ctx, t.adapter)
	return async.Produce(ctx, func(ctx context.Context, yield func(any) bool) error {
		defer source.Cancel()
		for {
			v, ok, err := source.Next(ctx)
			if err != nil {
				return t.translate(err)
			}
			if !ok {
				return nil
			}
			if !yield(v) {
				return nil
			}
		}
	})
}

// Destroy tears the template down, disposing the adapter exactly once.
func (t *Template) Destroy() error {
	var err error
	t.destroyOnce.Do(func() {
		err = t.adapter.Dispose()
	})
	return err
}

func (t *Template) translate(err error) error {
	if t.translator == nil {
		return err
	}
	if translated := t.translator.Translate(err); translated != nil {
		return translated
	}
	return err
}

// publish delivers a lifecycle event best effort: filtered by the allow-list,
// isolated from publisher panics, never failing the data operation.
func (t *Template) publish(e event.Event) {
	p := t.publisher
	if p == nil {
		p = event.Default()
	}
	if p == nil {
		return
	}
	if len(t.allowed) > 0 {
		if _, ok := t.allowed[e.Kind()]; !ok {
			return
		}
	}
	defer func() {
		_ = recover()
	}()
	p.Publish(e)
}

func (t *Template) keyspaceFor(entity any) (string, error) {
	if entity == nil {
		return "", kverrors.NewInvalidUsageError("entity must not be nil")
	}
	return t.resolver.Resolve(reflect.TypeOf(entity))
}

func (t *Template) keyspaceOf(typ reflect.Type) (string, error) {
	return t.resolver.Resolve(typ)
}

func requireIDAndEntity(id string, entity any) error {
	if id == "" {
		return kverrors.NewInvalidUsageError("id must not be empty")
	}
	if entity == nil {
		return kverrors.NewInvalidUsageError("entity must not be nil")
	}
	return nil
}

func keepAny(v any) (any, bool) {
	return v, true
}

// entityType reports the entity's element type; pointer entities resolve to
// what they point at, mirroring keyspace resolution.
func entityType(entity any) reflect.Type {
	return elemType(reflect.TypeOf(entity))
}
