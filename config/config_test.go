package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBType != "json" || cfg.TickRate != 60 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.TickInterval() != time.Second/60 {
		t.Fatalf("unexpected tick interval %v", cfg.TickInterval())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("TICK_RATE", "30")
	t.Setenv("RESUME_MATCHES", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBType != "sqlite" || cfg.TickRate != 30 || !cfg.ResumeMatches {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("TICK_RATE", "fast")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"DB_TYPE":     "mongo",
		"TICK_RATE":   "0",
		"MAX_PLAYERS": "5",
		"BOMB_RANGE":  "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected %s=%s to be rejected", key, value)
			}
		})
	}
}
