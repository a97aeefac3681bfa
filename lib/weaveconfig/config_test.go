// Copyright 2026 The Weave Authors
// SPDX-License-Identifier: Apache-2.0

package weaveconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Listen != "127.0.0.1:8420" {
		t.Errorf("expected listen=127.0.0.1:8420, got %s", cfg.Listen)
	}
	idle, err := cfg.Sync.IdleTimeoutDuration()
	if err != nil {
		t.Fatalf("IdleTimeoutDuration: %v", err)
	}
	if idle != 2500*time.Millisecond {
		t.Errorf("expected idle_timeout=2.5s, got %v", idle)
	}
}

func TestLoad_RequiresWeaveConfig(t *testing.T) {
	original := os.Getenv("WEAVE_CONFIG")
	defer os.Setenv("WEAVE_CONFIG", original)
	os.Unsetenv("WEAVE_CONFIG")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when WEAVE_CONFIG not set, got nil")
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "weave.yaml")

	configContent := `
listen: "0.0.0.0:9000"
state_dir: "/var/lib/weave"
peers:
  - "peer-a:8420"
  - "peer-b:8420"
sync:
  idle_timeout: "5s"
  ping_interval: "2s"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Listen != "0.0.0.0:9000" {
		t.Errorf("listen: got %s, want 0.0.0.0:9000", cfg.Listen)
	}
	if cfg.StateDir != "/var/lib/weave" {
		t.Errorf("state_dir: got %s, want /var/lib/weave", cfg.StateDir)
	}
	if len(cfg.Peers) != 2 || cfg.Peers[0] != "peer-a:8420" {
		t.Errorf("peers: got %v, want [peer-a:8420 peer-b:8420]", cfg.Peers)
	}

	idle, err := cfg.Sync.IdleTimeoutDuration()
	if err != nil {
		t.Fatalf("IdleTimeoutDuration: %v", err)
	}
	if idle != 5*time.Second {
		t.Errorf("idle_timeout: got %v, want 5s", idle)
	}
	ping, err := cfg.Sync.PingIntervalDuration()
	if err != nil {
		t.Fatalf("PingIntervalDuration: %v", err)
	}
	if ping != 2*time.Second {
		t.Errorf("ping_interval: got %v, want 2s", ping)
	}
}

func TestSyncConfig_BadDuration(t *testing.T) {
	cfg := SyncConfig{IdleTimeout: "not-a-duration"}
	if _, err := cfg.IdleTimeoutDuration(); err == nil {
		t.Error("expected an error for a malformed duration string")
	}
}
