package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile(t *testing.T) {
	// WHAT: YAML fields load and unset fields fall back to defaults.
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("bot_token: \"123:ABC\"\nadmins: [42, 99]\npoll_interval: 30s\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BotToken != "123:ABC" {
		t.Errorf("bot_token = %q", cfg.BotToken)
	}
	if len(cfg.Admins) != 2 || cfg.Admins[0] != 42 {
		t.Errorf("admins = %v", cfg.Admins)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("poll_interval = %s", cfg.PollInterval)
	}
	if cfg.KeepPerLink != 100 {
		t.Errorf("keep_per_link default = %d, want 100", cfg.KeepPerLink)
	}
	if cfg.Port != "8086" {
		t.Errorf("port default = %q", cfg.Port)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseAdminIDs(t *testing.T) {
	// WHAT: Malformed entries are skipped, valid ones kept in order.
	ids := parseAdminIDs("42, abc, 99,,7")
	if len(ids) != 3 || ids[0] != 42 || ids[1] != 99 || ids[2] != 7 {
		t.Errorf("ids = %v", ids)
	}
}
