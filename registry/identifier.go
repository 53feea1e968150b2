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

// idAccessor reads and writes an entity's identifier in type-erased form.
type idAccessor struct {
	get func(entity any) (string, bool)
	set func(entity any, id string) bool
}

var (
	idMu        sync.RWMutex
	idAccessors = make(map[reflect.Type]idAccessor)
)

// RegisterIDAccessor installs explicit identifier access for type T, replacing
// the reflected "ID string" field fallback. set may be nil for read-only
// identifier types. Registering the same type twice panics.
func RegisterIDAccessor[T any](get func(entity T) string, set func(entity *T, id string)) {
	if get == nil {
		panic("registry: id accessor get func must not be nil")
	}
	t := typeOf[T]()

	accessor := idAccessor{
		get: func(entity any) (string, bool) {
			switch e := entity.(type) {
			case T:
				return get(e), true
			case *T:
				return get(*e), true
			default:
				return "", false
			}
		},
		set: func(entity any, id string) bool {
			if set == nil {
				return false
			}
			if e, ok := entity.(*T); ok {
				set(e, id)
				return true
			}
			return false
		},
	}

	idMu.Lock()
	defer idMu.Unlock()
	if _, exists := idAccessors[t]; exists {
		panic(fmt.Sprintf("registry: id accessor for %v already registered", t))
	}
	idAccessors[t] = accessor
}

// IDOf extracts the entity's identifier. hasID reports whether the entity
// exposes an identifier at all; an exposed but empty identifier returns
// ("", true, nil), which callers treat as "generate one".
func IDOf(entity any) (id string, hasID bool, err error) {
	if entity == nil {
		return "", false, kverrors.NewInvalidUsageError("cannot extract id from nil entity")
	}

	if accessor, ok := accessorFor(entity); ok {
		id, ok := accessor.get(entity)
		return id, ok, nil
	}

	field, ok := idField(entity)
	if !ok {
		return "", false, nil
	}
	return field.String(), true, nil
}

// SetID writes the identifier back onto the entity. The reflected fallback
// requires a pointer entity; anything else is an invalid-usage failure.
func SetID(entity any, id string) error {
	if entity == nil {
		return kverrors.NewInvalidUsageError("cannot set id on nil entity")
	}

	if accessor, ok := accessorFor(entity); ok {
		if accessor.set(entity, id) {
			return nil
		}
		return kverrors.NewInvalidUsageError("id accessor for %T cannot write; pass a pointer", entity)
	}

	v := reflect.ValueOf(entity)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return kverrors.NewInvalidUsageError("cannot set generated id on non-pointer %T", entity)
	}
	field, ok := idField(entity)
	if !ok || !field.CanSet() {
		return kverrors.NewInvalidUsageError("type %T has no settable ID field", entity)
	}
	field.SetString(id)
	return nil
}

func accessorFor(entity any) (idAccessor, bool) {
	t := reflect.TypeOf(entity)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	idMu.RLock()
	defer idMu.RUnlock()
	accessor, ok := idAccessors[t]
	return accessor, ok
}

// idField locates the entity's "ID string" field via reflection.
func idField(entity any) (reflect.Value, bool) {
	v := reflect.ValueOf(entity)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	field := v.FieldByName("ID")
	if !field.IsValid() || field.Kind() != reflect.String {
		return reflect.Value{}, false
	}
	return field, true
}
