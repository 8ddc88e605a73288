package builtin

import (
	"strconv"
	"strings"

	"github.com/elahtrebor/push/lang/machine"
)

// cmdTest implements the comparators `if`/`while`/`for` compile against.
// Grounded on cmd_test, including its "[ ... ]" trailing-bracket
// tolerance so `test $x = y ]` (the `[` alias's usual closing bracket)
// works the same as `test $x = y`.
func cmdTest(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	if len(args) > 0 && args[len(args)-1] == "]" {
		args = args[:len(args)-1]
	}
	if len(args) == 0 {
		return "", nil
	}

	if len(args) == 2 {
		switch args[0] {
		case "-f":
			if fileExists(args[1]) {
				return "1", nil
			}
			return "", nil
		case "-d":
			if dirExists(args[1]) {
				return "1", nil
			}
			return "", nil
		case "-z":
			if args[1] == "" {
				return "1", nil
			}
			return "", nil
		case "-n":
			if args[1] != "" {
				return "1", nil
			}
			return "", nil
		}
	}

	if len(args) >= 3 {
		a, op, b := args[0], args[1], args[2]
		switch op {
		case "=":
			return boolStr(a == b), nil
		case "!=":
			return boolStr(a != b), nil
		case "-eq", "-ne", "-lt", "-le", "-gt", "-ge":
			ai, errA := strconv.Atoi(strings.TrimSpace(a))
			bi, errB := strconv.Atoi(strings.TrimSpace(b))
			if errA != nil || errB != nil {
				return "", nil
			}
			switch op {
			case "-eq":
				return boolStr(ai == bi), nil
			case "-ne":
				return boolStr(ai != bi), nil
			case "-lt":
				return boolStr(ai < bi), nil
			case "-le":
				return boolStr(ai <= bi), nil
			case "-gt":
				return boolStr(ai > bi), nil
			case "-ge":
				return boolStr(ai >= bi), nil
			}
		}
	}
	return "", nil
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return ""
}

// cmdAddv increments vars[args[0]] by the integer args[1], quietly
// (never returning a non-empty string). Grounded on cmd_addv.
func cmdAddv(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	if len(args) < 2 {
		return "", nil
	}
	name, deltaS := args[0], args[1]
	n, err := strconv.Atoi(strings.TrimSpace(vm.GetVar(name).String()))
	if err != nil {
		n = 0
	}
	d, err := strconv.Atoi(strings.TrimSpace(deltaS))
	if err != nil {
		d = 0
	}
	vm.SetVar(name, machine.Text(strconv.Itoa(n+d)))
	return "", nil
}
