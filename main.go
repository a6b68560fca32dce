// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/votehub/auth"
	"github.com/danielhkuo/votehub/cliparse"
	"github.com/danielhkuo/votehub/db"
	"github.com/danielhkuo/votehub/middleware"
	"github.com/danielhkuo/votehub/realtime"
	"github.com/danielhkuo/votehub/router"
	"github.com/danielhkuo/votehub/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	if cfg.IssueAdminKey != "" {
		fmt.Println(auth.GenerateAdminKey(cfg.IssueAdminKey, cfg.AdminKeySalt))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect and verify
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := db.CreateSchema(ctx, dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Changes reach subscribers through the hub; on PostgreSQL they go
	// through LISTEN/NOTIFY first so every instance sees them.
	hub := realtime.NewHub()
	defer hub.Close()

	var pub realtime.Publisher = hub
	if cfg.DatabaseType != cliparse.DatabaseSQLite {
		bridge := realtime.NewPGBridge(dbConn, cfg.DatabaseURL, hub)
		pub = bridge
		go func() {
			if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("change listener stopped", "error", err)
			}
		}()
	}

	go func() {
		err := realtime.Watch(ctx, hub, []string{"setting"}, func(c realtime.Change) error {
			if c.Op == realtime.OpResync {
				return nil
			}
			slog.Info("settings changed", "section", c.RowID)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, realtime.ErrClosed) {
			slog.Warn("settings watcher stopped", "error", err)
		}
	}()

	st := store.New(dbConn, pub)
	mux := router.NewRouter(st, hub, cfg)

	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		// Cancelling first ends open result streams so Shutdown can finish
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
