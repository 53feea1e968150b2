/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package event

import (
	"reflect"
)

// Op identifies the data operation an event was emitted around.
type Op string

const (
	OpInsert       Op = "insert"
	OpUpdate       Op = "update"
	OpDelete       Op = "delete"
	OpGet          Op = "get"
	OpDropKeyspace Op = "drop-keyspace"
)

// Phase identifies whether an event was emitted before or after its operation.
type Phase string

const (
	PhaseBefore Phase = "before"
	PhaseAfter  Phase = "after"
)

// Kind is the (operation, phase) pair used for publish filtering.
type Kind struct {
	Op    Op
	Phase Phase
}

// Event is an immutable record of a lifecycle notification emitted around a
// template operation. Events are created and consumed transiently; they are
// never persisted and are not part of the consistency contract.
type Event struct {
	// ID is the identifier the operation targeted; empty for keyspace-wide
	// operations such as drop.
	ID string
	// Keyspace the operation ran against.
	Keyspace string
	// Type is the entity type the operation addressed, known even when no
	// value is (before-get, before-delete, drop-keyspace). Pointer entities
	// report their element type.
	Type  reflect.Type
	Op    Op
	Phase Phase
	// Value carries the operation payload: the entity being written, the value
	// found (or nil) for gets, the removed value (or nil) for deletes.
	Value any
	// Previous carries the prior value for after-update events, nil when the
	// update created the entry. Best effort: it is whatever the adapter's put
	// reported, which may be stale under concurrent writers to the same id.
	Previous any
}

// Kind returns the event's (operation, phase) pair.
func (e Event) Kind() Kind {
	return Kind{Op: e.Op, Phase: e.Phase}
}

// Before builds a before-phase event.
func Before(op Op, id, keyspace string, typ reflect.Type, value any) Event {
	return Event{ID: id, Keyspace: keyspace, Type: typ, Op: op, Phase: PhaseBefore, Value: value}
}

// After builds an after-phase event.
func After(op Op, id, keyspace string, typ reflect.Type, value any) Event {
	return Event{ID: id, Keyspace: keyspace, Type: typ, Op: op, Phase: PhaseAfter, Value: value}
}

// AfterUpdate builds an after-update event carrying the previous value.
func AfterUpdate(id, keyspace string, typ reflect.Type, value, previous any) Event {
	return Event{ID: id, Keyspace: keyspace, Type: typ, Op: OpUpdate, Phase: PhaseAfter, Value: value, Previous: previous}
}
