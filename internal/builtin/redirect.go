package builtin

import (
	"os"

	"github.com/elahtrebor/push/lang/machine"
)

// cmdWrite writes the pipeline input to args[0], truncating any existing
// file. Grounded on cmd_write.
func cmdWrite(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	if len(args) == 0 {
		return "write: missing filename\n", nil
	}
	text, err := in.AsText()
	if err != nil {
		return "Couldn't write file\n", nil
	}
	if err := os.WriteFile(args[0], []byte(text), 0o644); err != nil {
		return "Couldn't write file\n", nil
	}
	return "", nil
}

// cmdAppend appends the pipeline input to args[0], creating it if absent.
// Grounded on cmd_append (simplified: os.O_APPEND covers the fallback the
// Python original needed for platforms without native append support).
func cmdAppend(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	if len(args) == 0 {
		return "append: missing filename\n", nil
	}
	text, err := in.AsText()
	if err != nil {
		return "Couldn't append file\n", nil
	}
	f, err := os.OpenFile(args[0], os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "Couldn't append file\n", nil
	}
	defer f.Close()
	if _, err := f.WriteString(text); err != nil {
		return "Couldn't append file\n", nil
	}
	return "", nil
}
