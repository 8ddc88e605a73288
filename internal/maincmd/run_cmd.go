package maincmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mna/mainer"

	"github.com/elahtrebor/push/internal/builtin"
	"github.com/elahtrebor/push/lang/compiler"
	"github.com/elahtrebor/push/lang/lexer"
	"github.com/elahtrebor/push/lang/machine"
)

// Run compiles and executes every non-comment line of args[0], in order,
// against a single VM; each line's EXEC output is printed as the VM steps
// through it (SPEC_FULL.md §2).
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	cfg := c.resolveConfig()
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	vm := machine.NewVM(builtin.Registry(cfg.LibDir))
	vm.Stdout = stdio.Stdout
	vm.SpoolPath = cfg.SpoolPath
	vm.SpoolThreshold = cfg.SpoolThreshold
	vm.MaxSteps = cfg.MaxSteps
	vm.Scheduler = machine.NewScheduler(stdio.Stdout)

	for _, line := range strings.Split(string(src), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		toks, _ := lexer.StripBackground(lexer.Lex(line))
		if len(toks) == 0 {
			continue
		}
		prog, err := compiler.Compile(toks)
		if err != nil {
			return fmt.Errorf("%s: %w", line, err)
		}
		vm.Load(prog)
		// VM.Run already prints each EXEC's non-empty result as it steps
		// (spec §4.3); printing the returned output again here would
		// duplicate it.
		if _, err := vm.Run(ctx, vm.Scheduler); err != nil {
			return fmt.Errorf("%s: %w", line, err)
		}
	}
	return nil
}
