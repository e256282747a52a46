// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults mirror the gate's shipped policy: enforcement on, entropy
// ceiling 1000.
const (
	DefaultMaxEntropy        = 1000
	DefaultSocketPath        = "/run/bark/bark.sock"
	DefaultStateDir          = "/var/lib/bark"
	DefaultAuditRingCapacity = 1024
	DefaultAuditQueueDepth   = 256
)

// Config is the static configuration for barkd, loaded once at
// startup. The Enforce, MaxEntropy, and Verbose fields seed the
// Runtime tunables; everything else is fixed for the process lifetime.
type Config struct {
	// SocketPath is where the control socket is served.
	SocketPath string `yaml:"socket_path"`

	// StateDir holds the authority public key (and, on signing
	// workstations, the private key).
	StateDir string `yaml:"state_dir"`

	// Enforce is the initial enforcement mode. When false, every
	// authorization request is allowed without any checks.
	Enforce bool `yaml:"enforce"`

	// MaxEntropy is the initial entropy ceiling.
	MaxEntropy uint64 `yaml:"max_entropy"`

	// Verbose controls whether audit emitters produce output. It
	// never changes counters.
	Verbose bool `yaml:"verbose"`

	// Authority is the static identity string of the signing
	// authority, exposed read-only on the control surface.
	Authority string `yaml:"authority"`

	// AuditRingCapacity is the number of recent audit events retained
	// in memory for the control surface.
	AuditRingCapacity int `yaml:"audit_ring_capacity"`

	// AuditQueueDepth is the audit delivery queue size. When the
	// queue is full, events are dropped rather than blocking the
	// authorization path.
	AuditQueueDepth int `yaml:"audit_queue_depth"`
}

// Default returns the shipped configuration.
func Default() Config {
	return Config{
		SocketPath:        DefaultSocketPath,
		StateDir:          DefaultStateDir,
		Enforce:           true,
		MaxEntropy:        DefaultMaxEntropy,
		Verbose:           false,
		AuditRingCapacity: DefaultAuditRingCapacity,
		AuditQueueDepth:   DefaultAuditQueueDepth,
	}
}

// Load reads and validates a YAML configuration file. Fields absent
// from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the daemon cannot run
// with.
func (c Config) Validate() error {
	if c.SocketPath == "" {
		return fmt.Errorf("socket_path must not be empty")
	}
	if c.StateDir == "" {
		return fmt.Errorf("state_dir must not be empty")
	}
	if c.AuditRingCapacity <= 0 {
		return fmt.Errorf("audit_ring_capacity must be positive, got %d", c.AuditRingCapacity)
	}
	if c.AuditQueueDepth <= 0 {
		return fmt.Errorf("audit_queue_depth must be positive, got %d", c.AuditQueueDepth)
	}
	return nil
}
