// Package repl implements the readline-backed interactive driver named as a
// collaborator in spec.md §6 ("line source") and detailed in SPEC_FULL.md
// §4.7: read a line, poll background jobs while waiting for one, then
// compile and run it on the foreground VM (or hand it to the scheduler if
// it ends in "&"). Grounded on github.com/chzyer/readline usage observed in
// the agentic-shell example (NewEx/Readline/ErrInterrupt) and on
// original_source/pushvm/pushvm.py's REPL loop ("poll jobs before and
// during input waits").
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/elahtrebor/push/lang/compiler"
	"github.com/elahtrebor/push/lang/lexer"
	"github.com/elahtrebor/push/lang/machine"
)

// pollInterval is how often the driver polls the scheduler while idle at
// the prompt, per spec.md §5's "poll jobs before and during input waits".
const pollInterval = 150 * time.Millisecond

// Driver owns the foreground VM and the background-job scheduler and runs
// the read-compile-run loop until the user exits.
type Driver struct {
	VM        *machine.VM
	Scheduler *machine.Scheduler
	Prompt    string
	Out       io.Writer

	// JobPollSteps is how many instructions each idle-prompt poll advances
	// a background job by (config.Config.JobPollSteps). VM.MaxSteps is a
	// per-program cancellation budget, not this — using it here would poll
	// with 0 steps by default and never advance a job. A value <= 0 falls
	// back to 8.
	JobPollSteps int

	rl *readline.Instance
}

// New returns a Driver over vm/sched, reading from a readline.Instance
// configured with the given prompt and history file (historyFile may be
// empty to disable history persistence).
func New(vm *machine.VM, sched *machine.Scheduler, prompt, historyFile string, jobPollSteps int) (*Driver, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	if jobPollSteps <= 0 {
		jobPollSteps = 8
	}
	return &Driver{VM: vm, Scheduler: sched, Prompt: prompt, Out: vm.Stdout, JobPollSteps: jobPollSteps, rl: rl}, nil
}

// Close releases the underlying readline instance.
func (d *Driver) Close() error { return d.rl.Close() }

// Run executes the read-eval-print loop until the user types "exit", sends
// Ctrl-D, or ctx is canceled.
func (d *Driver) Run(ctx context.Context) error {
	for {
		line, err := d.readLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" {
			return nil
		}

		d.evalLine(ctx, line)
	}
}

// readLine reads one line from the terminal, polling the scheduler on a
// ticker in a background goroutine confined to the driver — the VM and
// scheduler themselves stay single-threaded, per spec.md §5.
func (d *Driver) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	lineCh := make(chan result, 1)
	go func() {
		line, err := d.rl.Readline()
		lineCh <- result{line, err}
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case r := <-lineCh:
			return r.line, r.err
		case <-ticker.C:
			if d.Scheduler != nil {
				d.Scheduler.Poll(d.JobPollSteps)
			}
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// evalLine compiles and runs line, routing a trailing "&" to the scheduler
// (spec.md §4.5) instead of running it on the foreground VM, and reporting
// CompileError/RuntimeError as single lines (SPEC_FULL.md §4.7).
func (d *Driver) evalLine(ctx context.Context, line string) {
	toks, background := lexer.StripBackground(lexer.Lex(line))
	prog, err := compiler.Compile(toks)
	if err != nil {
		var ce *compiler.CompileError
		if errors.As(err, &ce) {
			fmt.Fprintf(d.Out, "%s\n", ce.Error())
			return
		}
		fmt.Fprintf(d.Out, "Error: %v\n", err)
		return
	}

	if background && d.Scheduler != nil {
		id := d.Scheduler.StartJob(d.VM, prog, line)
		fmt.Fprintf(d.Out, "[%d] started\n", id)
		return
	}

	d.VM.Load(prog)
	// VM.Run already prints each EXEC's non-empty result as it steps
	// (spec §4.3); the returned output is the final statement's result for
	// error reporting below, not something to print again here.
	_, err = d.VM.Run(ctx, d.Scheduler)
	if err != nil {
		var re *machine.RuntimeError
		if errors.As(err, &re) {
			fmt.Fprintf(d.Out, "Error: %s\n", re.Error())
			return
		}
		fmt.Fprintf(d.Out, "Error: %v\n", err)
		return
	}
}
