package maincmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mna/mainer"

	"github.com/elahtrebor/push/internal/builtin"
	"github.com/elahtrebor/push/internal/config"
	"github.com/elahtrebor/push/lang/machine"
	"github.com/elahtrebor/push/lang/repl"
)

// Repl starts the interactive read-eval-print loop (SPEC_FULL.md §4.7).
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	cfg := c.resolveConfig()

	reg := builtin.Registry(cfg.LibDir)
	vm := machine.NewVM(reg)
	vm.Stdout = stdio.Stdout
	vm.SpoolPath = cfg.SpoolPath
	vm.SpoolThreshold = cfg.SpoolThreshold
	vm.MaxSteps = cfg.MaxSteps

	sched := machine.NewScheduler(stdio.Stdout)
	vm.Scheduler = sched

	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".push_history")
	}

	d, err := repl.New(vm, sched, "push> ", historyFile, cfg.JobPollSteps)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Run(ctx)
}

// resolveConfig applies the Cmd's own flag overrides (spool path/threshold,
// lib dir) on top of config.Load's file+env defaults, so an explicit flag
// always wins.
func (c *Cmd) resolveConfig() config.Config {
	cfg, _ := config.Load(os.Getenv("PUSH_CONFIG"))
	if c.SpoolPath != "" {
		cfg.SpoolPath = c.SpoolPath
	}
	if c.SpoolThreshold != 0 {
		cfg.SpoolThreshold = c.SpoolThreshold
	}
	if c.LibDir != "" {
		cfg.LibDir = c.LibDir
	}
	return cfg
}
