// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

// Package weaveconfig loads configuration for weave's command-line
// adapters (cmd/weave-relay, cmd/weave-bridge) from a single YAML
// file, located by the WEAVE_CONFIG environment variable or a
// --config flag. There is no fallback discovery: deterministic,
// auditable configuration with no hidden overrides.
package weaveconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the configuration for a weave relay or bridge process.
type Config struct {
	// Listen is the TCP address cmd/weave-relay accepts connections
	// on (e.g. "0.0.0.0:8420"). Empty means "dial out only, accept
	// nothing."
	Listen string `yaml:"listen"`

	// StateDir is where cmd/weave-relay persists its per-covalue CBOR
	// journals.
	StateDir string `yaml:"state_dir"`

	// Peers lists remote relay addresses to dial on startup.
	Peers []string `yaml:"peers"`

	// Sync configures the sync manager's idle timeout and ping
	// interval (spec §6).
	Sync SyncConfig `yaml:"sync"`
}

// SyncConfig configures lib/peersync's idle-timer and ping behavior.
// Durations are strings (e.g. "2.5s"), parsed by IdleTimeoutDuration
// and PingIntervalDuration — mirroring lib/config's LauncherConfig,
// which stores StartupTimeout the same way rather than relying on
// YAML's own (string-typed) duration decoding.
type SyncConfig struct {
	// IdleTimeout is how long a peer channel may go without any
	// inbound message before it's considered dead. Default: "2.5s".
	IdleTimeout string `yaml:"idle_timeout"`

	// PingInterval is how often an idle channel emits a ping to reset
	// the remote end's idle timer. Default: "1s".
	PingInterval string `yaml:"ping_interval"`
}

// IdleTimeoutDuration parses IdleTimeout, defaulting to 2.5s if unset.
func (s SyncConfig) IdleTimeoutDuration() (time.Duration, error) {
	return parseDurationOrDefault(s.IdleTimeout, 2500*time.Millisecond)
}

// PingIntervalDuration parses PingInterval, defaulting to 1s if unset.
func (s SyncConfig) PingIntervalDuration() (time.Duration, error) {
	return parseDurationOrDefault(s.PingInterval, 1000*time.Millisecond)
}

func parseDurationOrDefault(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("weaveconfig: %q is not a valid duration: %w", value, err)
	}
	return d, nil
}

// Default returns the default configuration. These defaults fill in
// zero-values before the config file is applied; the config file is
// still required — Default is never returned on its own by Load.
func Default() Config {
	return Config{
		Listen:   "127.0.0.1:8420",
		StateDir: "./weave-state",
		Sync: SyncConfig{
			IdleTimeout:  "2.5s",
			PingInterval: "1s",
		},
	}
}

// Load loads configuration from the WEAVE_CONFIG environment
// variable. There is no fallback — if WEAVE_CONFIG is unset, this
// fails; use LoadFile with a --config flag value instead.
func Load() (Config, error) {
	path := os.Getenv("WEAVE_CONFIG")
	if path == "" {
		return Config{}, fmt.Errorf("weaveconfig: WEAVE_CONFIG environment variable not set; " +
			"set it to the path of your weave.yaml config file, or pass --config")
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path, merging it
// onto Default().
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("weaveconfig: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("weaveconfig: parsing %s: %w", path, err)
	}
	return cfg, nil
}
