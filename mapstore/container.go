/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mapstore

import (
	"sync"

	"github.com/suparena/keyvalue/datastore"
)

// Container is the per-keyspace backing structure. Implementations must be
// safe for concurrent use; the store serializes per-key mutation through the
// container but provides no ordering across distinct keys.
type Container interface {
	Get(id string) (value any, ok bool)
	Put(id string, value any) (prev any, had bool)
	Delete(id string) (prev any, had bool)
	Len() int
	// Snapshot copies the current entries. The copy is read-committed at the
	// time of the call, not a transactional snapshot.
	Snapshot() []datastore.Entry
	Clear()
}

// ContainerFactory produces the container backing a newly created keyspace.
type ContainerFactory func() Container

type hashContainer struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewHashContainer returns the default hash-backed container.
func NewHashContainer() Container {
	return &hashContainer{entries: make(map[string]any)}
}

func (c *hashContainer) Get(id string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[id]
	return v, ok
}

func (c *hashContainer) Put(id string, value any) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, had := c.entries[id]
	c.entries[id] = value
	return prev, had
}

func (c *hashContainer) Delete(id string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, had := c.entries[id]
	delete(c.entries, id)
	return prev, had
}

func (c *hashContainer) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *hashContainer) Snapshot() []datastore.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]datastore.Entry, 0, len(c.entries))
	for id, v := range c.entries {
		out = append(out, datastore.Entry{ID: id, Value: v})
	}
	return out
}

func (c *hashContainer) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]any)
}

type orderedContainer struct {
	mu      sync.RWMutex
	entries map[string]any
	order   []string
}

// NewOrderedContainer returns a container whose snapshots enumerate entries in
// insertion order.
func NewOrderedContainer() Container {
	return &orderedContainer{entries: make(map[string]any)}
}

func (c *orderedContainer) Get(id string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[id]
	return v, ok
}

func (c *orderedContainer) Put(id string, value any) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, had := c.entries[id]
	if !had {
		c.order = append(c.order, id)
	}
	c.entries[id] = value
	return prev, had
}

func (c *orderedContainer) Delete(id string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, had := c.entries[id]
	if had {
		delete(c.entries, id)
		for i, existing := range c.order {
			if existing == id {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	return prev, had
}

func (c *orderedContainer) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *orderedContainer) Snapshot() []datastore.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]datastore.Entry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, datastore.Entry{ID: id, Value: c.entries[id]})
	}
	return out
}

func (c *orderedContainer) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]any)
	c.order = nil
}
