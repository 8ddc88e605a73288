package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/elahtrebor/push/lang/compiler"
	"github.com/elahtrebor/push/lang/lexer"
	"github.com/elahtrebor/push/lang/machine"
)

// cmdRun returns a Handler for the `run <module> [args...]` command: it
// compiles and executes "<lib>/<module>.push" on a child of vm, with args bound
// to $1, $2, ... ($argv as the whole list) before running — the Go-native
// analogue of cmd_run's __import__("<module>").main(argv), since Go has no
// runtime module-import equivalent to call into.
func cmdRun(lib string) machine.Handler {
	return func(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
		if len(args) == 0 {
			return "run: usage run <module> [args...]\n", nil
		}
		modname := strings.TrimSuffix(args[0], ".push")
		argv := args[1:]

		path := filepath.Join(lib, modname+".push")
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Sprintf("run: couldn't load %s (%v)\n", modname, err), nil
		}
		out, err := runSource(vm, string(src), argv)
		if err != nil {
			return fmt.Sprintf("run: error running %s: %v\n", modname, err), nil
		}
		return out, nil
	}
}

// runSource compiles and runs every line of src against a child VM that
// shares vm's Registry and spool configuration and starts with a copy of
// vm's variables, with argv's positional parameters added to that copy.
func runSource(vm *machine.VM, src string, argv []string) (string, error) {
	child := vm.CloneForJob()
	child.SetVar("argv", machine.List(argv))
	for i, a := range argv {
		child.SetVar(fmt.Sprintf("%d", i+1), machine.Text(a))
	}

	var last string
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		toks, _ := lexer.StripBackground(lexer.Lex(line))
		prog, err := compiler.Compile(toks)
		if err != nil {
			return "", err
		}
		child.Load(prog)
		out, err := child.Run(context.Background(), nil)
		if err != nil {
			return "", err
		}
		last = out
	}
	return last, nil
}

// moduleLoader implements machine.ModuleLoader by looking for
// "<dir>/<name>.push" source files, the Go-native analogue of
// cmd_run's os.stat probe against "/lib/<cmd>.py" before falling back to
// run (spec §6 "Module loader").
type moduleLoader struct {
	dir string
}

// NewModuleLoader returns a machine.ModuleLoader that resolves a command
// name to "<dir>/<name>.push" when that file exists.
func NewModuleLoader(dir string) machine.ModuleLoader {
	return &moduleLoader{dir: dir}
}

func (l *moduleLoader) Load(name string) (machine.Loadable, bool) {
	path := filepath.Join(l.dir, name+".push")
	if _, err := os.Stat(path); err != nil {
		return nil, false
	}
	return loadableFile(path), true
}

type loadableFile string

func (f loadableFile) Run(vm *machine.VM, argv []string) (string, error) {
	src, err := os.ReadFile(string(f))
	if err != nil {
		return "", err
	}
	return runSource(vm, string(src), argv)
}
