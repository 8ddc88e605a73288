package builtin

import (
	"strings"

	"github.com/elahtrebor/push/lang/machine"
)

// cmdEcho joins its arguments with spaces. Grounded on cmd_echo.
func cmdEcho(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	return strings.Join(args, " "), nil
}

// cmdUpper uppercases the pipeline input. Grounded on cmd_upper.
func cmdUpper(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	text, err := in.AsText()
	if err != nil {
		return "Couldn't read input\n", nil
	}
	return strings.ToUpper(text), nil
}
