// Copyright 2026 The BARK Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration for the BARK gate daemon.
//
// Static configuration is loaded from a single YAML file passed
// explicitly via --config. There are no fallbacks or automatic
// discovery: deterministic, auditable configuration with no hidden
// overrides.
//
// The tunable subset of the configuration — enforcement flag, entropy
// ceiling, verbose flag — lives in a Runtime value after startup.
// Runtime fields are individual atomics because the gate reads them
// on every authorization decision, from arbitrary host threads, and
// must never take a lock on that path.
package config
