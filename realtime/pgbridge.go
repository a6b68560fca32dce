// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/lib/pq"

	"github.com/danielhkuo/votehub/db"
)

// DefaultChannel is the PostgreSQL NOTIFY channel changes travel on
const DefaultChannel = "votehub_changes"

const (
	minReconnect = 10 * time.Second
	maxReconnect = time.Minute
	pingInterval = 90 * time.Second
)

// PGBridge shares changes between server instances through PostgreSQL
// LISTEN/NOTIFY. The store publishes through it; Run relays every
// notification, including this instance's own, into the local hub.
type PGBridge struct {
	db      *sql.DB
	url     string
	channel string
	hub     *Hub
}

func NewPGBridge(conn *sql.DB, url string, hub *Hub) *PGBridge {
	return &PGBridge{db: conn, url: url, channel: DefaultChannel, hub: hub}
}

// Publish sends each change with pg_notify
func (b *PGBridge) Publish(ctx context.Context, changes ...Change) error {
	for _, c := range changes {
		payload, err := EncodeChange(c)
		if err != nil {
			return err
		}
		if _, err := b.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, b.channel, payload); err != nil {
			return fmt.Errorf("failed to notify %s: %w", b.channel, err)
		}
	}
	return nil
}

// Run listens until ctx is cancelled. After a reconnect the hub gets a
// resync change because notifications sent while disconnected are lost.
func (b *PGBridge) Run(ctx context.Context) error {
	listener := pq.NewListener(b.url, minReconnect, maxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			slog.Warn("change listener event", "event", int(ev), "error", err)
		}
	})
	defer listener.Close()

	if err := listener.Listen(b.channel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", b.channel, err)
	}
	slog.Info("listening for changes", "channel", b.channel)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-listener.Notify:
			if n == nil {
				slog.Info("change listener reconnected, requesting resync")
				b.relay(ctx, Change{Op: OpResync})
				continue
			}
			c, err := DecodeChange(n.Extra)
			if err != nil {
				slog.Warn("dropping malformed change notification", "error", err)
				continue
			}
			b.relay(ctx, c)
		case <-ticker.C:
			go func() {
				if err := listener.Ping(); err != nil {
					slog.Warn("change listener ping failed", "error", err)
				}
			}()
		}
	}
}

func (b *PGBridge) relay(ctx context.Context, c Change) {
	if err := b.hub.Publish(ctx, c); err != nil {
		slog.Warn("failed to relay change", "error", err)
	}
}

// EncodeChange renders a change as a NOTIFY payload
func EncodeChange(c Change) (string, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode change: %w", err)
	}
	return string(payload), nil
}

// DecodeChange parses a NOTIFY payload
func DecodeChange(payload string) (Change, error) {
	var c Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Change{}, fmt.Errorf("failed to decode change: %w", err)
	}
	switch c.Op {
	case OpResync:
		return c, nil
	case OpInsert, OpUpdate, OpDelete:
	default:
		return Change{}, fmt.Errorf("unknown change op in %q", payload)
	}
	if !slices.Contains(db.Tables, c.Table) {
		return Change{}, fmt.Errorf("change for unknown table in %q", payload)
	}
	return c, nil
}
