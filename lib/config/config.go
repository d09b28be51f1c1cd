// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for museumd.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Paths configures directory and socket locations.
	Paths PathsConfig `yaml:"paths"`

	// Store configures persistence.
	Store StoreConfig `yaml:"store"`

	// Ledger configures exhibit log capacities and limits.
	Ledger LedgerConfig `yaml:"ledger"`

	// Host configures the entity host.
	Host HostConfig `yaml:"host"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
// Zero values in an override leave the base value in place.
type ConfigOverrides struct {
	Paths  *PathsConfig  `yaml:"paths,omitempty"`
	Store  *StoreConfig  `yaml:"store,omitempty"`
	Ledger *LedgerConfig `yaml:"ledger,omitempty"`
	Host   *HostConfig   `yaml:"host,omitempty"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Root is the base directory for museum data.
	Root string `yaml:"root"`

	// State is where the SQLite database lives by default.
	State string `yaml:"state"`

	// Socket is the Unix socket museumd listens on.
	// Default: ${MUSEUM_ROOT}/museumd.sock
	Socket string `yaml:"socket"`
}

// StoreConfig configures the persistent record store.
type StoreConfig struct {
	// Backend is "memory" or "sqlite".
	// Default: sqlite
	Backend string `yaml:"backend"`

	// Path is the SQLite database file.
	// Default: ${MUSEUM_ROOT}/state/museum.db
	Path string `yaml:"path"`

	// PoolSize is the SQLite connection pool size.
	PoolSize int `yaml:"pool_size"`

	// Compression is applied to sealed records: "none", "lz4", or "zstd".
	// Default: zstd
	Compression string `yaml:"compression"`
}

// LedgerConfig configures exhibit recent-entry windows and limits.
type LedgerConfig struct {
	VoteWindow       int `yaml:"vote_window"`
	CommentWindow    int `yaml:"comment_window"`
	DonationWindow   int `yaml:"donation_window"`
	MaxCommentLength int `yaml:"max_comment_length"`

	// VoteBound bounds a single vote; BatchVoteBound bounds a
	// batch_vote with is_batch set. Both at most 127.
	VoteBound      int `yaml:"vote_bound"`
	BatchVoteBound int `yaml:"batch_vote_bound"`
}

// HostConfig configures the entity host and its watchdog.
type HostConfig struct {
	// MinimumDeposit is the least an exhibit may be created with.
	MinimumDeposit uint64 `yaml:"minimum_deposit"`

	// DeliveryBatch is how many receipts the delivery loop handles
	// per wakeup.
	DeliveryBatch int `yaml:"delivery_batch"`

	// PendingWarnAfter is the age at which an unresolved pending
	// operation is logged as stale.
	// Default: 5m
	PendingWarnAfter time.Duration `yaml:"pending_warn_after"`

	// WatchInterval is how often the stale-operation watchdog runs.
	// Default: 1m
	WatchInterval time.Duration `yaml:"watch_interval"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
// They exist primarily to ensure all fields have sensible zero-values,
// not as a fallback - the config file is required.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "museum")

	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			Root:   defaultRoot,
			State:  filepath.Join(defaultRoot, "state"),
			Socket: filepath.Join(defaultRoot, "museumd.sock"),
		},
		Store: StoreConfig{
			Backend:     "sqlite",
			Path:        filepath.Join(defaultRoot, "state", "museum.db"),
			PoolSize:    4,
			Compression: "zstd",
		},
		Ledger: LedgerConfig{
			VoteWindow:       10,
			CommentWindow:    10,
			DonationWindow:   10,
			MaxCommentLength: 500,
			VoteBound:        1,
			BatchVoteBound:   127,
		},
		Host: HostConfig{
			MinimumDeposit:   3,
			DeliveryBatch:    64,
			PendingWarnAfter: 5 * time.Minute,
			WatchInterval:    time.Minute,
		},
	}
}

// Load loads configuration from the MUSEUM_CONFIG environment variable.
// There are no fallbacks: if MUSEUM_CONFIG is not set, this fails.
func Load() (*Config, error) {
	configPath := os.Getenv("MUSEUM_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("MUSEUM_CONFIG environment variable not set; " +
			"set it to the path of your museumd.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables
// do not override config values; the only expansion performed is
// ${HOME} and similar path variables.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production defaults: durable storage.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Store: &StoreConfig{Backend: "sqlite"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Paths != nil {
		setString(&c.Paths.Root, overrides.Paths.Root)
		setString(&c.Paths.State, overrides.Paths.State)
		setString(&c.Paths.Socket, overrides.Paths.Socket)
	}

	if overrides.Store != nil {
		setString(&c.Store.Backend, overrides.Store.Backend)
		setString(&c.Store.Path, overrides.Store.Path)
		setInt(&c.Store.PoolSize, overrides.Store.PoolSize)
		setString(&c.Store.Compression, overrides.Store.Compression)
	}

	if overrides.Ledger != nil {
		setInt(&c.Ledger.VoteWindow, overrides.Ledger.VoteWindow)
		setInt(&c.Ledger.CommentWindow, overrides.Ledger.CommentWindow)
		setInt(&c.Ledger.DonationWindow, overrides.Ledger.DonationWindow)
		setInt(&c.Ledger.MaxCommentLength, overrides.Ledger.MaxCommentLength)
		setInt(&c.Ledger.VoteBound, overrides.Ledger.VoteBound)
		setInt(&c.Ledger.BatchVoteBound, overrides.Ledger.BatchVoteBound)
	}

	if overrides.Host != nil {
		if overrides.Host.MinimumDeposit != 0 {
			c.Host.MinimumDeposit = overrides.Host.MinimumDeposit
		}
		setInt(&c.Host.DeliveryBatch, overrides.Host.DeliveryBatch)
		if overrides.Host.PendingWarnAfter != 0 {
			c.Host.PendingWarnAfter = overrides.Host.PendingWarnAfter
		}
		if overrides.Host.WatchInterval != 0 {
			c.Host.WatchInterval = overrides.Host.WatchInterval
		}
	}
}

func setString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func setInt(target *int, value int) {
	if value != 0 {
		*target = value
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"MUSEUM_ROOT": c.Paths.Root,
		"HOME":        os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["MUSEUM_ROOT"] = c.Paths.Root // Update for dependent paths.

	c.Paths.State = expandVars(c.Paths.State, vars)
	c.Paths.Socket = expandVars(c.Paths.Socket, vars)
	c.Store.Path = expandVars(c.Store.Path, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Paths.Root == "" {
		errs = append(errs, fmt.Errorf("paths.root is required"))
	}
	if c.Paths.Socket == "" {
		errs = append(errs, fmt.Errorf("paths.socket is required"))
	}

	backends := []string{"memory", "sqlite"}
	if !slices.Contains(backends, c.Store.Backend) {
		errs = append(errs, fmt.Errorf("store.backend must be one of: %v", backends))
	}
	if c.Store.Backend == "sqlite" && c.Store.Path == "" {
		errs = append(errs, fmt.Errorf("store.path is required for the sqlite backend"))
	}
	if c.Environment == Production && c.Store.Backend != "sqlite" {
		errs = append(errs, fmt.Errorf("store.backend must be sqlite in production"))
	}
	compressions := []string{"none", "lz4", "zstd"}
	if !slices.Contains(compressions, c.Store.Compression) {
		errs = append(errs, fmt.Errorf("store.compression must be one of: %v", compressions))
	}

	limits := []struct {
		name  string
		value int
		max   int
	}{
		{"ledger.vote_window", c.Ledger.VoteWindow, 0},
		{"ledger.comment_window", c.Ledger.CommentWindow, 0},
		{"ledger.donation_window", c.Ledger.DonationWindow, 0},
		{"ledger.max_comment_length", c.Ledger.MaxCommentLength, 0},
		{"ledger.vote_bound", c.Ledger.VoteBound, 127},
		{"ledger.batch_vote_bound", c.Ledger.BatchVoteBound, 127},
	}
	for _, limit := range limits {
		if limit.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", limit.name, limit.value))
		}
		if limit.max > 0 && limit.value > limit.max {
			errs = append(errs, fmt.Errorf("%s must be at most %d, got %d", limit.name, limit.max, limit.value))
		}
	}

	if c.Host.MinimumDeposit == 0 {
		errs = append(errs, fmt.Errorf("host.minimum_deposit must be positive"))
	}
	if c.Host.PendingWarnAfter <= 0 || c.Host.WatchInterval <= 0 {
		errs = append(errs, fmt.Errorf("host.pending_warn_after and host.watch_interval must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates all configured directories if they don't exist.
func (c *Config) EnsurePaths() error {
	paths := []string{
		c.Paths.Root,
		c.Paths.State,
		filepath.Dir(c.Paths.Socket),
	}
	if c.Store.Backend == "sqlite" {
		paths = append(paths, filepath.Dir(c.Store.Path))
	}

	for _, path := range paths {
		if path == "" || path == "." {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}

	return nil
}
