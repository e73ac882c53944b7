package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestParamsForFallsBackToDefault(t *testing.T) {
	cfg := Default()
	cfg.BKTBySkill["recursion"] = BKTParams{Learn: 0.3, Slip: 0.05, Guess: 0.25}

	if got := cfg.ParamsFor("recursion"); got.Learn != 0.3 {
		t.Fatalf("per-skill learn = %v, want 0.3", got.Learn)
	}
	if got := cfg.ParamsFor("anything_else"); got != cfg.BKT {
		t.Fatalf("fallback params = %+v, want default %+v", got, cfg.BKT)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg := Load("/nonexistent/engine.yaml", nil)
	if cfg.BKT != Default().BKT {
		t.Fatalf("missing file should yield defaults, got %+v", cfg.BKT)
	}
}

func TestLoadPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	body := []byte("bkt:\n  learn: 0.25\nprofile_window_days: 14\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write tuning file: %v", err)
	}

	cfg := Load(path, nil)
	if cfg.BKT.Learn != 0.25 {
		t.Fatalf("learn = %v, want override 0.25", cfg.BKT.Learn)
	}
	if cfg.BKT.Slip != Default().BKT.Slip {
		t.Fatalf("slip = %v, want default preserved", cfg.BKT.Slip)
	}
	if cfg.ProfileWindowDays != 14 {
		t.Fatalf("profile_window_days = %d, want 14", cfg.ProfileWindowDays)
	}
}

func TestLoadInvalidRatesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	body := []byte("bkt:\n  slip: 0.9\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write tuning file: %v", err)
	}

	cfg := Load(path, nil)
	if cfg.BKT.Slip != Default().BKT.Slip {
		t.Fatalf("invalid tuning must fall back to defaults, got slip %v", cfg.BKT.Slip)
	}
}
