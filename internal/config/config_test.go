package config

import "testing"

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HashMB != 64 {
		t.Errorf("expected default hash 64, got %d", cfg.HashMB)
	}
	if cfg.Variant != "crazyhouse" {
		t.Errorf("expected default variant crazyhouse, got %s", cfg.Variant)
	}
	if cfg.LearnDir == "" {
		t.Error("expected a non-empty learn dir by default")
	}
}

func TestParseRejectsBadVariant(t *testing.T) {
	if _, err := Parse([]string{"-variant", "xiangqi"}); err == nil {
		t.Error("expected an error for an unknown variant")
	}
}

func TestParseRejectsNonPositiveHash(t *testing.T) {
	if _, err := Parse([]string{"-hash", "0"}); err == nil {
		t.Error("expected an error for a non-positive hash size")
	}
}

func TestParseNoLearnDisablesLearnDir(t *testing.T) {
	cfg, err := Parse([]string{"-no-learn"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.LearnDir != "" {
		t.Errorf("expected -no-learn to leave LearnDir empty, got %q", cfg.LearnDir)
	}
}

func TestParseExplicitLearnDir(t *testing.T) {
	cfg, err := Parse([]string{"-learn-dir", "/tmp/somewhere"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.LearnDir != "/tmp/somewhere" {
		t.Errorf("expected explicit learn dir to be honored, got %q", cfg.LearnDir)
	}
}
