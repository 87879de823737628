package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	logger := zerolog.Nop()

	cfg, resolved, err := Load(&logger, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.RoomCapacity != 5 || cfg.PingInterval != 30*time.Second || cfg.Addr != ":8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config was not written: %v", err)
	}
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "addr: \":9090\"\nroom_capacity: 8\nping_interval: 10s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WIRECHAT_ROOM_CAPACITY", "3")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("file value ignored: addr=%q", cfg.Addr)
	}
	if cfg.PingInterval != 10*time.Second {
		t.Fatalf("file duration ignored: %s", cfg.PingInterval)
	}
	if cfg.RoomCapacity != 3 {
		t.Fatalf("env should win over file: room_capacity=%d", cfg.RoomCapacity)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("room_capacity: 0\nlog_format: xml\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, err := Load(nil, path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"room_capacity", "log_format"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
}

func TestUpdateFromOverridesOnlySetFields(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":7000", LogLevel: "debug"})

	if cfg.Addr != ":7000" || cfg.LogLevel != "debug" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.RoomCapacity != 5 || cfg.SendBuffer != 32 {
		t.Fatalf("unset fields must keep their values: %+v", cfg)
	}
}
