package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("TICK_RATE", "")
	t.Setenv("LOG_SINKS", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
	if cfg.TickRate != 30 {
		t.Fatalf("expected default tick rate, got %d", cfg.TickRate)
	}
	if !reflect.DeepEqual(cfg.LogSinks, []string{"console"}) {
		t.Fatalf("expected default sinks, got %v", cfg.LogSinks)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("TICK_RATE", "60")
	t.Setenv("LOG_SINKS", "console, memory")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Fatalf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.TickRate != 60 {
		t.Fatalf("expected tick rate 60, got %d", cfg.TickRate)
	}
	if !reflect.DeepEqual(cfg.LogSinks, []string{"console", "memory"}) {
		t.Fatalf("expected parsed sink list, got %v", cfg.LogSinks)
	}
}

func TestLoadRejectsBadTickRate(t *testing.T) {
	t.Setenv("TICK_RATE", "banana")
	if cfg := Load(); cfg.TickRate != 30 {
		t.Fatalf("garbage tick rate should fall back to 30, got %d", cfg.TickRate)
	}
	t.Setenv("TICK_RATE", "-5")
	if cfg := Load(); cfg.TickRate != 30 {
		t.Fatalf("negative tick rate should fall back to 30, got %d", cfg.TickRate)
	}
}
