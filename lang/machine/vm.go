// Package machine implements the PUSH virtual machine: the stack-and-
// variable-table interpreter that executes a compiler.Program one opcode at
// a time (spec §3, §4.3). Field naming (Name, Stdout, MaxSteps) follows
// mna-nenuphar/lang/machine/thread.go's Thread; the opcode dispatch itself
// is grounded on original_source/pushvm/pushvm.py's VM.run/run_generator,
// unified here into a single Step method both the foreground Run loop and a
// background Job call repeatedly — Go has no generator construct to mirror
// run_generator's "yield None" directly, so cooperative yielding becomes
// "the caller decides when to call Step again".
package machine

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/elahtrebor/push/lang/compiler"
)

// RuntimeError reports a failure raised by a misbehaving Handler or by the
// VM itself (spec §7.2), distinct from the soft "Error: ..." output prose a
// well-behaved command uses to report ordinary failure (spec §7.3).
type RuntimeError struct {
	Op  compiler.Opcode
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at %s: %v", e.Op, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// token is one entry of the VM's token stack (spec §3): a command slot, an
// argument, or a pipe marker, consumed by EXEC/EXECQ to assemble a
// pipeline.
type token struct {
	kind tokKind
	val  string
}

type tokKind uint8

const (
	tokCmd tokKind = iota
	tokArg
	tokPipe
)

// foreachFrame is one entry of the VM's foreach iterator stack (spec §3).
type foreachFrame struct {
	varName string
	items   List
	next    int
}

// VM is one execution context: its own stacks, variable table, and
// scheduler state (spec §3). A foreground VM and each background Job's VM
// are independent instances that share a Registry and a SpoolPath/
// SpoolThreshold configuration, the same sharing shape as
// original_source/pushvm/pushvm.py's VM.clone_for_job.
type VM struct {
	// Name optionally labels the VM for job-listing/debugging purposes.
	Name string

	// Stdout is where EXEC's printed output (never EXECQ's) is written. If
	// nil, os.Stdout is used.
	Stdout io.Writer

	Registry *Registry

	// Scheduler is the background job scheduler this VM's `jobs`/`kill`/
	// `fg`/`run &` handlers operate against. Only the foreground VM a REPL
	// or script runs on needs one; a background job's own cloned VM leaves
	// it nil, since original_source/pushvm/pushvm.py never lets a job spawn
	// its own sub-jobs either.
	Scheduler *Scheduler

	SpoolPath      string
	SpoolThreshold int

	// MaxSteps bounds the number of instructions Step executes after each
	// Load before aborting, mirroring Thread.MaxSteps's cancellation guard.
	// CloneForJob copies it, so background jobs are bounded the same way. A
	// value <= 0 means no limit.
	MaxSteps int

	prog *Program
	pc   int

	tokenStack []token
	valueStack []string
	vars       *varTable

	lastOutput string
	lastTruth  bool

	foreach []foreachFrame

	sleepUntil time.Time
	sleeping   bool

	halted bool
	steps  int
}

// Program is an alias for compiler.Program, kept local to this package's
// exported surface so callers of machine need not import compiler directly
// for the common case of running a Program they obtained from
// compiler.Compile.
type Program = compiler.Program

// NewVM constructs a VM ready to run programs against reg.
func NewVM(reg *Registry) *VM {
	return &VM{
		Registry:       reg,
		SpoolThreshold: 2048,
		SpoolPath:      "/tmp/push-spool",
		vars:           newVarTable(),
	}
}

// CloneForJob returns a new VM sharing vm's Registry, spool configuration,
// and a snapshot of its current variables — the Go-native
// clone_for_job: a background job runs in its own VM so its token/value
// stacks and pc never interact with the VM that started it.
func (vm *VM) CloneForJob() *VM {
	return &VM{
		Name:           vm.Name,
		Stdout:         vm.Stdout,
		Registry:       vm.Registry,
		SpoolPath:      vm.SpoolPath,
		SpoolThreshold: vm.SpoolThreshold,
		MaxSteps:       vm.MaxSteps,
		vars:           vm.vars.Clone(),
	}
}

// LastOutput returns the most recent pipeline's output text.
func (vm *VM) LastOutput() string { return vm.lastOutput }

// LastTruth returns the truthiness of the most recent pipeline's output.
func (vm *VM) LastTruth() bool { return vm.lastTruth }

// GetVar returns the value bound to name, or empty Text if unbound (spec
// §3: unset variables read as empty).
func (vm *VM) GetVar(name string) Value {
	if v, ok := vm.vars.Get(name); ok {
		return v
	}
	return Text("")
}

// SetVar binds name to v.
func (vm *VM) SetVar(name string, v Value) { vm.vars.Set(name, v) }

// Sleep puts the VM to sleep until d from now (the `sleep` command's
// effect): the foreground Run loop blocks while still polling a Scheduler,
// and a background Job's Step simply returns without advancing while
// asleep — see Scheduler.Poll.
func (vm *VM) Sleep(d time.Duration) {
	vm.sleepUntil = time.Now().Add(d)
	vm.sleeping = true
}

func (vm *VM) stdout() io.Writer {
	if vm.Stdout != nil {
		return vm.Stdout
	}
	return os.Stdout
}

// Load installs prog as the code this VM executes from pc 0.
func (vm *VM) Load(prog *Program) {
	vm.prog = prog
	vm.pc = 0
	vm.halted = false
	vm.steps = 0
}

// Done reports whether the loaded program has run to completion (END
// reached, or pc past the end of Code).
func (vm *VM) Done() bool {
	return vm.halted || vm.prog == nil || vm.pc >= len(vm.prog.Code)
}

// Sleeping reports whether the VM is currently in a sleep-until state,
// used by a Job's cooperative stepping to skip real work without advancing
// pc (spec §5 "a sleeping background job... must not advance pc").
func (vm *VM) Sleeping() bool {
	if !vm.sleeping {
		return false
	}
	if !time.Now().Before(vm.sleepUntil) {
		vm.sleeping = false
		return false
	}
	return true
}

// Run executes the loaded program to completion on the foreground, printing
// EXEC (not EXECQ) output as it occurs — spec §4.3's synchronous form.
// sched, if non-nil, is polled while the VM is asleep so background jobs
// keep advancing during a foreground sleep (spec §5).
func (vm *VM) Run(ctx context.Context, sched *Scheduler) (string, error) {
	for !vm.Done() {
		if err := ctx.Err(); err != nil {
			return vm.lastOutput, err
		}
		if vm.Sleeping() {
			if sched != nil {
				sched.Poll(80)
			}
			time.Sleep(20 * time.Millisecond)
			continue
		}
		if err := vm.Step(true); err != nil {
			return vm.lastOutput, err
		}
	}
	return vm.lastOutput, nil
}

// Step executes a single instruction. print controls whether a plain EXEC's
// non-empty output is written to Stdout — true for the foreground Run loop,
// false for a background Job's cooperative stepping, preserving
// run/run_generator's original (and deliberate) asymmetry: a background
// job's EXEC output is captured in LastOutput but never printed; the job's
// only printed trace is its eventual "[n] name (done)" scheduler line.
func (vm *VM) Step(print bool) error {
	if vm.Done() {
		return nil
	}
	inst := vm.prog.Code[vm.pc]
	vm.pc++
	vm.steps++
	if vm.MaxSteps > 0 && vm.steps > vm.MaxSteps {
		vm.halted = true
		return &RuntimeError{Op: inst.Op, Err: fmt.Errorf("step budget exceeded")}
	}

	switch inst.Op {
	case compiler.NOP:
		// no-op

	case compiler.LOAD:
		vm.tokenStack = append(vm.tokenStack, token{kind: tokCmd, val: vm.prog.Names[inst.A]})

	case compiler.ARG:
		arg := vm.prog.Consts[inst.A]
		vm.tokenStack = append(vm.tokenStack, token{kind: tokArg, val: arg})
		vm.valueStack = append(vm.valueStack, arg)

	case compiler.PIPE:
		vm.tokenStack = append(vm.tokenStack, token{kind: tokPipe})

	case compiler.SET:
		val := vm.popValue()
		vm.vars.Set(vm.prog.Names[inst.A], Text(val))

	case compiler.GET:
		val := vm.GetVar(vm.prog.Names[inst.A]).String()
		vm.tokenStack = append(vm.tokenStack, token{kind: tokArg, val: val})
		vm.valueStack = append(vm.valueStack, val)

	case compiler.EXEC, compiler.EXECQ:
		out, err := vm.execPipeline()
		if err != nil {
			return &RuntimeError{Op: inst.Op, Err: err}
		}
		vm.lastOutput = out
		vm.lastTruth = Truth(Text(out))
		if inst.Op == compiler.EXEC && print && out != "" {
			fmt.Fprintln(vm.stdout(), out)
		}
		vm.valueStack = nil

	case compiler.JMP:
		vm.pc = int(inst.A)

	case compiler.JZ:
		if !vm.lastTruth {
			vm.pc = int(inst.A)
		}

	case compiler.SETLIST:
		items := vm.prog.Lists[inst.B]
		cp := make(List, len(items))
		copy(cp, items)
		vm.vars.Set(vm.prog.Names[inst.A], cp)

	case compiler.SPLITL:
		vm.vars.Set(vm.prog.Names[inst.A], splitLines(vm.lastOutput))

	case compiler.FOREINIT:
		varName := vm.prog.Names[inst.A]
		listName := vm.prog.Names[inst.B]
		items := AsList(vm.GetVar(listName))
		vm.foreach = append(vm.foreach, foreachFrame{varName: varName, items: items})

	case compiler.FORENEXT:
		if len(vm.foreach) == 0 {
			vm.pc = int(inst.A)
			break
		}
		top := &vm.foreach[len(vm.foreach)-1]
		if top.next >= len(top.items) {
			vm.foreach = vm.foreach[:len(vm.foreach)-1]
			vm.pc = int(inst.A)
			break
		}
		vm.vars.Set(top.varName, Text(top.items[top.next]))
		top.next++

	case compiler.END:
		vm.halted = true

	default:
		return &RuntimeError{Op: inst.Op, Err: fmt.Errorf("unknown opcode")}
	}
	return nil
}

func (vm *VM) popValue() string {
	if len(vm.valueStack) == 0 {
		return ""
	}
	v := vm.valueStack[len(vm.valueStack)-1]
	vm.valueStack = vm.valueStack[:len(vm.valueStack)-1]
	return v
}

func splitLines(s string) List {
	if s == "" {
		return nil
	}
	var out List
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
