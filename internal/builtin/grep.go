package builtin

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/elahtrebor/push/lang/machine"
)

// cmdGrep filters lines matching args[0] from args[1] (if given) or the
// pipeline input. Grounded on cmd_grep.
func cmdGrep(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	rx, err := regexp.Compile(args[0])
	if err != nil {
		return "Couldn't perform.\n", nil
	}

	var scanner *bufio.Scanner
	if len(args) >= 2 {
		f, err := os.Open(args[1])
		if err != nil {
			return "Couldn't perform.\n", nil
		}
		defer f.Close()
		scanner = bufio.NewScanner(f)
	} else {
		sc, closer, err := in.OpenReader()
		if err != nil {
			return "Couldn't perform.\n", nil
		}
		defer closer.Close()
		scanner = sc
	}

	var out strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if rx.MatchString(line) {
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}
	return out.String(), nil
}
