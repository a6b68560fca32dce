// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package realtime delivers table change notifications to live viewers.

# Subscriptions

A Hub fans changes out to subscribers in the same process:

	sub := hub.Subscribe("option", "vote")
	defer sub.Close()
	for c := range sub.C() {
		// refetch
	}

Watch is the scoped form; it unsubscribes however it returns:

	err := realtime.Watch(ctx, hub, []string{"vote"}, func(c realtime.Change) error {
		return refresh(ctx)
	})

Delivery may coalesce. When a subscriber's buffer is full, its oldest
pending change is replaced by an OpResync, so a slow subscriber loses
detail but never misses that something changed. Consumers must treat a
Change as "something changed", never as a delta, and refetch on
OpResync.

# Multiple Instances

With PostgreSQL, PGBridge publishes through pg_notify and relays
notifications from a pq.Listener into the local hub, so viewers
connected to any instance see every vote. A listener reconnect emits an
OpResync change that matches every subscription.
*/
package realtime
