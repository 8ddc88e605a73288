// Package maincmd implements the `push` CLI: argument parsing and
// subcommand dispatch, grounded on mna-nenuphar/internal/maincmd/maincmd.go
// (mainer.Cmd struct, reflection-dispatched subcommands, env-var flag
// overlay via github.com/mna/mainer) re-purposed for this shell's
// subcommands instead of nenuphar's parse/resolve/tokenize.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "push"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<path>...]
       %[1]s -h|--help
       %[1]s -v|--version

A bytecode-compiled interactive shell.

The <command> can be one of:
       repl                      Start an interactive read-eval-print loop
                                 (the default when no command is given).
       run <file>                Compile and execute every line of a
                                 script file.
       tokenize <file>           Print the token stream for each line of a
                                 script file.
       compile <file>            Print the disassembled bytecode for each
                                 line of a script file.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

More information on the %[1]s repository:
       https://github.com/elahtrebor/push
`, binName)
)

// Cmd is the top-level CLI command, following mna-nenuphar's Cmd shape:
// SetArgs/SetFlags/Validate/Main plus reflection-dispatched subcommand
// methods.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	SpoolPath      string `flag:"spool-path"`
	SpoolThreshold int    `flag:"spool-threshold"`
	LibDir         string `flag:"lib-dir"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) SetFlags(flags map[string]bool) { c.flags = flags }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	cmdName := "repl"
	if len(c.args) > 0 {
		cmdName = c.args[0]
	}

	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	if (cmdName == "run" || cmdName == "tokenize" || cmdName == "compile") && len(c.args) < 2 {
		return errors.New(cmdName + ": a file argument is required")
	}
	return nil
}

// Main parses args, resolves env-var overlays via mainer's EnvVars/
// EnvPrefix support (SPEC_FULL.md §4.8), and dispatches to the resolved
// subcommand.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   true,
		EnvPrefix: strings.ToUpper(binName) + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	cmdArgs := c.args
	if len(cmdArgs) == 0 {
		cmdArgs = []string{"repl"}
	}
	if err := c.cmdFn(ctx, stdio, cmdArgs[1:]); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", cmdArgs[0], err)
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds mirrors mna-nenuphar/internal/maincmd/maincmd.go's reflection
// dispatch: any method of v taking (context.Context, mainer.Stdio,
// []string) and returning error becomes a subcommand named after the
// method, lowercased.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
