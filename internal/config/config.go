// Package config loads the engine's environment-driven settings: the
// required catalog path and the optional generator tuning knobs, following
// a defaults -> environment -> explicit override precedence. Settings come
// from the process environment rather than a config file, since AFL invokes
// the engine with no command line of its own.
package config

import (
	"strconv"

	"github.com/calvinalkan/caf/internal/generator"
)

// Config holds everything custom_init needs to bring up an engine.State.
type Config struct {
	StorePath string
	Seed      uint32
	Opts      generator.Options
}

// Overrides lets a caller (e.g. cmd/caf-mutator's debug mode) supply
// explicit values that win over both defaults and the environment.
type Overrides struct {
	StorePath *string
	Seed      *uint32
}

// Load reads Config from env, applying defaults first and overrides last.
// env is a "KEY=VALUE" slice such as os.Environ(), so callers can test
// Load without mutating real process environment.
func Load(env []string, ov Overrides) (Config, error) {
	lookup := envLookup(env)

	cfg := Config{Opts: generator.DefaultOptions()}

	store, ok := lookup("CAF_STORE")
	if !ok || store == "" {
		if ov.StorePath == nil {
			return Config{}, ErrStoreEmpty
		}
	} else {
		cfg.StorePath = store
	}

	if s, ok := lookup("CAF_SEED"); ok {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return Config{}, ErrBadSeed
		}
		cfg.Seed = uint32(v)
	}

	var err error
	if cfg.Opts.MaxCalls, err = parsePositiveOverride(lookup, "CAF_MAX_CALLS", cfg.Opts.MaxCalls, ErrBadMaxCalls); err != nil {
		return Config{}, err
	}
	if cfg.Opts.MaxDepth, err = parsePositiveOverride(lookup, "CAF_MAX_DEPTH", cfg.Opts.MaxDepth, ErrBadMaxDepth); err != nil {
		return Config{}, err
	}
	if cfg.Opts.MaxStringLen, err = parsePositiveOverride(lookup, "CAF_MAX_STRING_LEN", cfg.Opts.MaxStringLen, ErrBadMaxStr); err != nil {
		return Config{}, err
	}
	if cfg.Opts.MaxArrayLen, err = parsePositiveOverride(lookup, "CAF_MAX_ARRAY_LEN", cfg.Opts.MaxArrayLen, ErrBadMaxArr); err != nil {
		return Config{}, err
	}

	if ov.StorePath != nil {
		cfg.StorePath = *ov.StorePath
	}
	if ov.Seed != nil {
		cfg.Seed = *ov.Seed
	}

	return cfg, nil
}

func parsePositiveOverride(lookup func(string) (string, bool), key string, def int, errBad error) (int, error) {
	s, ok := lookup(key)
	if !ok || s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, errBad
	}
	return v, nil
}

func envLookup(env []string) func(string) (string, bool) {
	m := make(map[string]string, len(env))
	for _, e := range env {
		for i := 0; i < len(e); i++ {
			if e[i] == '=' {
				m[e[:i]] = e[i+1:]
				break
			}
		}
	}
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}
