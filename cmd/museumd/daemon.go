// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/clock"
	"github.com/bureau-foundation/museum/lib/config"
	"github.com/bureau-foundation/museum/lib/exhibit"
	"github.com/bureau-foundation/museum/lib/host"
	"github.com/bureau-foundation/museum/lib/museum"
	"github.com/bureau-foundation/museum/lib/service"
	"github.com/bureau-foundation/museum/lib/store"
)

// Daemon is the running museumd: one host and its loops.
type Daemon struct {
	host      *host.Host
	clock     clock.Clock
	logger    *slog.Logger
	startedAt time.Time

	pendingWarnAfter time.Duration
	watchInterval    time.Duration
}

// exhibitConfig translates the ledger and host sections into the
// exhibit's limits.
func exhibitConfig(cfg *config.Config) exhibit.Config {
	return exhibit.Config{
		VoteWindow:       cfg.Ledger.VoteWindow,
		CommentWindow:    cfg.Ledger.CommentWindow,
		DonationWindow:   cfg.Ledger.DonationWindow,
		MaxCommentLength: cfg.Ledger.MaxCommentLength,
		VoteBound:        int8(cfg.Ledger.VoteBound),
		BatchVoteBound:   int8(cfg.Ledger.BatchVoteBound),
		MinimumDeposit:   account.Amount(cfg.Host.MinimumDeposit),
	}
}

// newDaemon builds the host over backend and registers the museum and
// meme kinds. cfg must already be validated.
func newDaemon(ctx context.Context, cfg *config.Config, backend store.Store, clk clock.Clock, logger *slog.Logger) (*Daemon, error) {
	compression, err := store.ParseCompression(cfg.Store.Compression)
	if err != nil {
		return nil, err
	}
	instance, err := host.New(ctx, host.Config{
		Records:       store.NewRecords(backend, compression),
		Clock:         clk,
		Logger:        logger,
		DeliveryBatch: cfg.Host.DeliveryBatch,
	})
	if err != nil {
		return nil, fmt.Errorf("starting host: %w", err)
	}
	instance.Register(museum.Kind, museum.Factory())
	instance.Register(exhibit.Kind, exhibit.Factory(exhibitConfig(cfg)))

	return &Daemon{
		host:             instance,
		clock:            clk,
		logger:           logger,
		startedAt:        clk.Now(),
		pendingWarnAfter: cfg.Host.PendingWarnAfter,
		watchInterval:    cfg.Host.WatchInterval,
	}, nil
}

// serve runs the socket server, the delivery loop, and the watchdog
// until ctx is cancelled, and returns the first loop error.
func (d *Daemon) serve(ctx context.Context, server *service.SocketServer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	start := func(name string, loop func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := loop(ctx); err != nil {
				d.logger.Error("loop failed", "loop", name, "error", err)
				once.Do(func() { firstErr = fmt.Errorf("%s: %w", name, err) })
				cancel()
			}
		}()
	}
	start("socket", server.Serve)
	start("delivery", d.host.Run)
	start("watchdog", d.watch)

	wg.Wait()
	return firstErr
}

// watch logs stale pending operations every watchInterval. Listing
// failures are logged and retried on the next tick.
func (d *Daemon) watch(ctx context.Context) error {
	ticker := d.clock.NewTicker(d.watchInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stale, err := d.host.WarnStale(ctx, d.pendingWarnAfter)
			if err != nil {
				d.logger.Error("listing pending operations", "error", err)
				continue
			}
			if stale > 0 {
				d.logger.Warn("stale pending operations", "count", stale, "threshold", d.pendingWarnAfter)
			}
		}
	}
}
