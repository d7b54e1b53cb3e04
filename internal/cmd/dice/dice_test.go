package dice

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("dice", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8090 {
		t.Fatalf("expected default port 8090, got %d", cfg.Port)
	}
	if cfg.Store != "none" {
		t.Fatalf("expected default store none, got %q", cfg.Store)
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("ROLL_DICE_PORT", "9000")
	t.Setenv("ROLL_HISTORY_STORE", "redis")
	fs := flag.NewFlagSet("dice", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-store", "sqlite", "-max-dice", "50", "-http-addr", ""})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9000 {
		t.Fatalf("expected env port 9000, got %d", cfg.Port)
	}
	if cfg.Store != "sqlite" || cfg.Dice.MaxCount != 50 || cfg.HTTPAddr != "" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestParseConfigRejectsBadEnv(t *testing.T) {
	t.Setenv("ROLL_DICE_PORT", "nope")
	fs := flag.NewFlagSet("dice", flag.ContinueOnError)
	if _, err := ParseConfig(fs, nil); err == nil {
		t.Fatal("expected env parse error")
	}
}
