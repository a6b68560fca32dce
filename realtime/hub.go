// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"context"
	"errors"
	"sync"
)

// Change operations
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
	// OpResync asks every subscriber to refetch; it matches all tables.
	OpResync = "resync"
)

// subscriptionBuffer is the number of undelivered changes a subscriber may
// have pending before further changes are coalesced into them.
const subscriptionBuffer = 16

// ErrClosed is returned by Watch when the hub shuts down.
var ErrClosed = errors.New("realtime: subscription closed")

// Change describes one insert, update or delete on a table.
type Change struct {
	Table  string `json:"table"`
	Op     string `json:"op"`
	PollID string `json:"poll_id,omitempty"`
	RowID  string `json:"row_id,omitempty"`
}

// Publisher accepts changes made by the store.
type Publisher interface {
	Publish(ctx context.Context, changes ...Change) error
}

// Source hands out subscriptions to changes on named tables.
type Source interface {
	Subscribe(tables ...string) *Subscription
}

// Hub fans changes out to in-process subscribers. Delivery never blocks
// the publisher: when a subscriber's buffer is full its oldest change is
// replaced by a resync, which makes it refetch everything.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers interest in the given tables; no tables means all.
// The caller must Close the subscription.
func (h *Hub) Subscribe(tables ...string) *Subscription {
	sub := &Subscription{
		hub: h,
		ch:  make(chan Change, subscriptionBuffer),
	}
	if len(tables) > 0 {
		sub.tables = make(map[string]bool, len(tables))
		for _, t := range tables {
			sub.tables[t] = true
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		sub.done = true
		return sub
	}
	h.subs[sub] = struct{}{}
	return sub
}

// Publish delivers changes to every matching subscriber.
func (h *Hub) Publish(ctx context.Context, changes ...Change) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	for _, c := range changes {
		for sub := range h.subs {
			if !sub.matches(c) {
				continue
			}
			select {
			case sub.ch <- c:
			default:
				sub.overflow()
			}
		}
	}
	return nil
}

// Len returns the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close ends every subscription; later publishes fail with ErrClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		sub.done = true
		close(sub.ch)
		delete(h.subs, sub)
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub.done {
		return
	}
	sub.done = true
	delete(h.subs, sub)
	close(sub.ch)
}

// Subscription is one subscriber's stream of changes.
type Subscription struct {
	hub    *Hub
	tables map[string]bool
	ch     chan Change
	done   bool // guarded by hub.mu
}

// C returns the channel changes arrive on. It is closed by Close.
func (s *Subscription) C() <-chan Change {
	return s.ch
}

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// overflow swaps the oldest pending change for a resync so a subscriber
// that fell behind still refetches whatever it missed. Called with hub.mu
// held, so no other sender can refill the freed slot.
func (s *Subscription) overflow() {
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- Change{Op: OpResync}:
	default:
	}
}

func (s *Subscription) matches(c Change) bool {
	if c.Op == OpResync || s.tables == nil {
		return true
	}
	return s.tables[c.Table]
}

// Watch subscribes to tables, calls fn for each change until ctx is done or
// fn fails, and always unsubscribes before returning.
func Watch(ctx context.Context, src Source, tables []string, fn func(Change) error) error {
	sub := src.Subscribe(tables...)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-sub.C():
			if !ok {
				return ErrClosed
			}
			if err := fn(c); err != nil {
				return err
			}
		}
	}
}
