// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/museum/lib/clock"
	"github.com/bureau-foundation/museum/lib/config"
	"github.com/bureau-foundation/museum/lib/service"
	"github.com/bureau-foundation/museum/lib/store"
	"github.com/bureau-foundation/museum/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("museumd", pflag.ContinueOnError)
	var (
		configPath  string
		socketPath  string
		showVersion bool
	)
	flags.StringVar(&configPath, "config", "", "path to museumd.yaml (default: $MUSEUM_CONFIG)")
	flags.StringVar(&socketPath, "socket", "", "Unix socket to listen on (overrides paths.socket)")
	flags.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if showVersion {
		fmt.Printf("museumd %s\n", version.Info())
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if socketPath != "" {
		cfg.Paths.Socket = socketPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsurePaths(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := store.Open(store.Config{
		Backend:  cfg.Store.Backend,
		Path:     cfg.Store.Path,
		PoolSize: cfg.Store.PoolSize,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("closing store", "error", err)
		}
	}()

	daemon, err := newDaemon(ctx, cfg, backend, clock.Real(), logger)
	if err != nil {
		return err
	}

	server := service.NewSocketServer(cfg.Paths.Socket, logger)
	daemon.registerActions(server)

	logger.Info("museumd starting",
		"version", version.Info(),
		"environment", cfg.Environment,
		"store", cfg.Store.Backend,
		"compression", cfg.Store.Compression,
		"socket", cfg.Paths.Socket,
	)
	err = daemon.serve(ctx, server)
	logger.Info("museumd stopped")
	return err
}

// loadConfig reads --config when given, MUSEUM_CONFIG otherwise.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		return cfg, nil
	}
	return config.Load()
}
