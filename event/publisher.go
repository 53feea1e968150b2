/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package event

import (
	"sync"
)

// Publisher receives lifecycle events. Publish is fire-and-forget: it must not
// block the data operation that triggered it, and failures must never reach
// the caller.
type Publisher interface {
	Publish(e Event)
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(e Event)

func (f PublisherFunc) Publish(e Event) {
	f(e)
}

// ChannelPublisher delivers events into a buffered channel. When the buffer is
// full the event is dropped rather than blocking the originating operation.
type ChannelPublisher struct {
	ch chan Event
}

// NewChannelPublisher creates a ChannelPublisher with the given buffer size.
func NewChannelPublisher(buffer int) *ChannelPublisher {
	return &ChannelPublisher{ch: make(chan Event, buffer)}
}

// Events exposes the delivery channel for consumers.
func (p *ChannelPublisher) Events() <-chan Event {
	return p.ch
}

func (p *ChannelPublisher) Publish(e Event) {
	select {
	case p.ch <- e:
	default:
	}
}

// Process-wide subscriber registration. The subscriber is installed once at
// wiring time and torn down at shutdown; Publish itself is a pure notification.
var (
	mu         sync.RWMutex
	subscriber Publisher
)

// Subscribe installs the process-wide subscriber used by templates that were
// not given an explicit publisher.
func Subscribe(p Publisher) {
	mu.Lock()
	defer mu.Unlock()
	subscriber = p
}

// Reset removes the process-wide subscriber.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	subscriber = nil
}

// Default returns the process-wide subscriber, or nil if none installed.
func Default() Publisher {
	mu.RLock()
	defer mu.RUnlock()
	return subscriber
}
