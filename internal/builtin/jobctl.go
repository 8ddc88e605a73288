package builtin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/elahtrebor/push/lang/machine"
)

// cmdJobs lists running background jobs. Grounded on cmd_jobs.
func cmdJobs(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	if vm.Scheduler == nil {
		return "(no jobs)\n", nil
	}
	ids := vm.Scheduler.Jobs()
	if len(ids) == 0 {
		return "(no jobs)\n", nil
	}
	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, "[%d] running - %s\n", id, vm.Scheduler.JobName(id))
	}
	return b.String(), nil
}

// cmdKill terminates a background job without running it to completion.
// Grounded on cmd_kill.
func cmdKill(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	if len(args) == 0 {
		return "kill: usage kill <jobid>\n", nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return "kill: bad jobid\n", nil
	}
	if vm.Scheduler == nil || !vm.Scheduler.Kill(id) {
		return "kill: no such job\n", nil
	}
	return "", nil
}

// cmdFg steps a background job's own VM to completion before returning.
// Grounded on cmd_fg.
func cmdFg(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	if len(args) == 0 {
		return "fg: usage fg <jobid>\n", nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return "fg: bad jobid\n", nil
	}
	if vm.Scheduler == nil {
		return "fg: no such job\n", nil
	}
	jobErr, found := vm.Scheduler.RunToCompletion(id)
	if !found {
		return "fg: no such job\n", nil
	}
	if jobErr != nil {
		return fmt.Sprintf("fg: job error: %v\n", jobErr), nil
	}
	return "", nil
}
