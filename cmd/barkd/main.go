// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

// barkd is the BARK gate daemon. It owns the authorization core —
// entropy governor, signature cache, statistics, audit trail — and
// serves the control socket the host event dispatcher and the bark
// CLI talk to.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/axiomhive/bark/lib/clock"
	"github.com/axiomhive/bark/lib/config"
	"github.com/axiomhive/bark/lib/control"
	"github.com/axiomhive/bark/lib/entropy"
	"github.com/axiomhive/bark/lib/gate"
	"github.com/axiomhive/bark/lib/signature"
	"github.com/axiomhive/bark/lib/stats"
	"github.com/axiomhive/bark/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "path to the barkd YAML config (required)")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("barkd %s\n", version.Info())
		return nil
	}

	if configPath == "" {
		return fmt.Errorf("--config is required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	publicKey, err := signature.LoadPublicKey(cfg.StateDir)
	if err != nil {
		return fmt.Errorf("loading authority public key: %w", err)
	}
	verifier, err := signature.NewAuthorityVerifier(publicKey)
	if err != nil {
		return err
	}

	settings := config.NewRuntime(cfg)
	governor := entropy.New(settings)
	cache := signature.NewCache(verifier, signature.ProcResolver{}, clock.Real())
	counters := &stats.Counters{}
	ring := stats.NewRingSink(cfg.AuditRingCapacity)
	trail := stats.NewTrail(
		stats.MultiSink{stats.NewLogSink(logger), ring},
		settings,
		clock.Real(),
		cfg.AuditQueueDepth,
	)
	defer trail.Close()

	g := gate.New(settings, governor, cache, counters, trail)

	logger.Info("bark gate initialized",
		"version", version.Info(),
		"enforce", settings.Enforcing(),
		"max_entropy", settings.Ceiling(),
		"authority", cfg.Authority,
	)

	server := control.NewServer(cfg.SocketPath, logger)
	registerActions(server, &daemon{
		config:   cfg,
		settings: settings,
		governor: governor,
		gate:     g,
		counters: counters,
		trail:    trail,
		ring:     ring,
		logger:   logger,
	})

	if err := server.Serve(ctx); err != nil {
		return err
	}

	snapshot := counters.Snapshot()
	logger.Info("bark gate shutting down",
		"authorizations", snapshot.Authorizations,
		"denials", snapshot.Denials,
		"entropy_blocks", snapshot.EntropyBlocks,
		"signature_failures", snapshot.SignatureFailures,
	)
	return nil
}
