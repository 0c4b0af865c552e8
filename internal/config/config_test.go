package config_test

import (
	"testing"

	"github.com/calvinalkan/caf/internal/config"
)

func TestLoadRequiresStore(t *testing.T) {
	t.Parallel()
	_, err := config.Load(nil, config.Overrides{})
	if err != config.ErrStoreEmpty {
		t.Fatalf("err = %v, want ErrStoreEmpty", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := config.Load([]string{"CAF_STORE=/tmp/catalog.json"}, config.Overrides{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorePath != "/tmp/catalog.json" {
		t.Fatalf("StorePath = %q", cfg.StorePath)
	}
	if cfg.Opts.MaxCalls != 16 || cfg.Opts.MaxDepth != 4 {
		t.Fatalf("defaults not applied: %+v", cfg.Opts)
	}
}

func TestLoadParsesOverridesFromEnv(t *testing.T) {
	t.Parallel()
	env := []string{
		"CAF_STORE=/tmp/catalog.json",
		"CAF_SEED=42",
		"CAF_MAX_CALLS=3",
		"CAF_MAX_DEPTH=2",
		"CAF_MAX_STRING_LEN=8",
		"CAF_MAX_ARRAY_LEN=1",
	}
	cfg, err := config.Load(env, config.Overrides{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != 42 {
		t.Fatalf("Seed = %d, want 42", cfg.Seed)
	}
	if cfg.Opts.MaxCalls != 3 || cfg.Opts.MaxDepth != 2 || cfg.Opts.MaxStringLen != 8 || cfg.Opts.MaxArrayLen != 1 {
		t.Fatalf("options not parsed from env: %+v", cfg.Opts)
	}
}

func TestLoadRejectsBadSeed(t *testing.T) {
	t.Parallel()
	_, err := config.Load([]string{"CAF_STORE=/x", "CAF_SEED=not-a-number"}, config.Overrides{})
	if err != config.ErrBadSeed {
		t.Fatalf("err = %v, want ErrBadSeed", err)
	}
}

func TestExplicitOverrideWinsOverEnv(t *testing.T) {
	t.Parallel()
	store := "/override/catalog.json"
	var seed uint32 = 99
	cfg, err := config.Load([]string{"CAF_STORE=/env/catalog.json", "CAF_SEED=1"}, config.Overrides{
		StorePath: &store,
		Seed:      &seed,
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorePath != store || cfg.Seed != seed {
		t.Fatalf("override did not win: %+v", cfg)
	}
}
