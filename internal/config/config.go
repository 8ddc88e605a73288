// Package config loads the shell's runtime configuration: spool path and
// threshold, step budgets, job poll cadence, and the module-loader library
// directory (SPEC_FULL.md §4.8). Defaults are overlaid by a YAML file, then
// by environment variables, matching the precedence mna-nenuphar's
// maincmd.Cmd already establishes for its own flags.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the knobs the VM, scheduler, and module loader need at
// startup.
type Config struct {
	SpoolPath      string `yaml:"spool_path"`
	SpoolThreshold int    `yaml:"spool_threshold"`
	MaxSteps       int    `yaml:"max_steps"`
	JobPollSteps   int    `yaml:"job_poll_steps"`
	LibDir         string `yaml:"lib_dir"`
}

// Default returns the built-in defaults, applied before any file or
// environment overlay.
func Default() Config {
	return Config{
		SpoolPath:      "/tmp/push-spool",
		SpoolThreshold: 2048,
		MaxSteps:       0,
		JobPollSteps:   8,
		LibDir:         "lib",
	}
}

// Load reads defaults, overlays path (if non-empty and present) as a YAML
// file, then overlays PUSH_-prefixed environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, err
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays PUSH_SPOOL_PATH, PUSH_SPOOL_THRESHOLD, PUSH_MAX_STEPS,
// PUSH_JOB_POLL_STEPS, and PUSH_LIB_DIR onto cfg when set, mirroring the
// PUSH_ prefix internal/maincmd.Cmd uses for its own mainer.Parser overlay.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PUSH_SPOOL_PATH"); v != "" {
		cfg.SpoolPath = v
	}
	if v := os.Getenv("PUSH_SPOOL_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SpoolThreshold = n
		}
	}
	if v := os.Getenv("PUSH_MAX_STEPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxSteps = n
		}
	}
	if v := os.Getenv("PUSH_JOB_POLL_STEPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.JobPollSteps = n
		}
	}
	if v := os.Getenv("PUSH_LIB_DIR"); v != "" {
		cfg.LibDir = v
	}
}
