/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"sync"

	kverrors "github.com/suparena/keyvalue/errors"
)

// Keyspace resolution is deterministic for the lifetime of the process: a
// type resolves to its registered name, or to its struct name when nothing
// was registered, and the first resolution is cached.

var (
	mu             sync.RWMutex
	keyspaceByType = make(map[reflect.Type]string)

	keyspaceCache sync.Map // reflect.Type -> string
)

// RegisterKeyspace associates type T with a keyspace name, overriding the
// default struct-name mapping. Registered once at wiring time; registering
// the same type twice panics to prevent accidental overrides.
func RegisterKeyspace[T any](name string) {
	if name == "" {
		panic("registry: keyspace name must not be empty")
	}
	t := typeOf[T]()

	mu.Lock()
	defer mu.Unlock()
	if existing, exists := keyspaceByType[t]; exists {
		panic(fmt.Sprintf("registry: keyspace for %v already registered as %q", t, existing))
	}
	keyspaceByType[t] = name
}

// KeyspaceOf resolves the keyspace name for a type. Pointer types resolve to
// their element type's keyspace.
func KeyspaceOf(t reflect.Type) (string, error) {
	if t == nil {
		return "", kverrors.NewInvalidUsageError("cannot resolve keyspace for nil type")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if cached, ok := keyspaceCache.Load(t); ok {
		return cached.(string), nil
	}

	mu.RLock()
	name, registered := keyspaceByType[t]
	mu.RUnlock()

	if !registered {
		name = t.Name()
		if name == "" {
			return "", kverrors.NewInvalidUsageError("cannot derive keyspace for unnamed type %v", t)
		}
	}
	keyspaceCache.Store(t, name)
	return name, nil
}

// KeyspaceFor resolves the keyspace name for an entity value.
func KeyspaceFor(entity any) (string, error) {
	if entity == nil {
		return "", kverrors.NewInvalidUsageError("cannot resolve keyspace for nil entity")
	}
	return KeyspaceOf(reflect.TypeOf(entity))
}

func typeOf[T any]() reflect.Type {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
