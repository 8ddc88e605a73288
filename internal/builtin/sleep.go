package builtin

import (
	"strconv"
	"strings"
	"time"

	"github.com/elahtrebor/push/lang/machine"
)

// cmdSleep puts vm to sleep for the given number of (fractional) seconds.
// Grounded on original_source/pushvm/pushvm.py's cmd_sleep — but rewritten
// to use vm.Sleep directly on the VM passed in, in place of the original's
// "global _CURRENT_VM" indirection the Design Notes call out for
// replacement (SPEC_FULL.md §4.6).
func cmdSleep(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
	if err != nil || secs <= 0 {
		return "", nil
	}
	vm.Sleep(time.Duration(secs * float64(time.Second)))
	return "", nil
}
