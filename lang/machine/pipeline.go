package machine

import "fmt"

// stage is one resolved pipeline stage: a command name with its arguments,
// grounded on original_source/pushvm/pushvm.py's exec_pipeline flush()
// helper that groups token_stack entries into (cmd, args) pairs.
type stage struct {
	cmd  string
	args []string
}

// execPipeline drains the token stack, groups it into pipeline stages
// separated by pipe markers, and runs each stage's handler in turn, piping
// one stage's (possibly spooled) output into the next's input.
func (vm *VM) execPipeline() (string, error) {
	items := vm.tokenStack
	vm.tokenStack = nil

	var stages []stage
	var cur *stage
	flush := func() {
		if cur != nil {
			stages = append(stages, *cur)
			cur = nil
		}
	}
	for _, tk := range items {
		switch tk.kind {
		case tokPipe:
			flush()
		case tokCmd:
			flush()
			cur = &stage{cmd: tk.val}
		case tokArg:
			if cur != nil {
				cur.args = append(cur.args, tk.val)
			}
		}
	}
	flush()

	in := NewTextPipeData("")
	for _, st := range stages {
		raw, err := vm.runCommand(st.cmd, st.args, in)
		if err != nil {
			return "", err
		}
		spooled, err := Spool(raw, vm.SpoolPath, vm.SpoolThreshold)
		if err != nil {
			return "", err
		}
		in = spooled
	}
	return in.AsText()
}

// runCommand resolves cmd against the Registry (including any module
// loader fallback) and invokes its handler. An unresolved command name
// produces spec §7.4's soft "Error: command not found" output rather than
// a RuntimeError — the VM itself never malfunctions just because the line
// named a command that doesn't exist.
func (vm *VM) runCommand(cmd string, args []string, in PipeData) (string, error) {
	if vm.Registry == nil {
		return fmt.Sprintf("Error: command not found: %s", cmd), nil
	}
	h, ok := vm.Registry.Lookup(cmd)
	if !ok {
		return fmt.Sprintf("Error: command not found: %s", cmd), nil
	}
	return h(vm, args, in)
}
