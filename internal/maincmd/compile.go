package maincmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mna/mainer"

	"github.com/elahtrebor/push/lang/compiler"
	"github.com/elahtrebor/push/lang/lexer"
)

// Compile lexes, compiles, and disassembles each non-comment line of
// args[0], printing the disassembly per line (SPEC_FULL.md §2).
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	for _, line := range strings.Split(string(src), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		toks, _ := lexer.StripBackground(lexer.Lex(trimmed))
		prog, err := compiler.Compile(toks)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", trimmed, err)
			continue
		}
		fmt.Fprintf(stdio.Stdout, "# %s\n%s\n", trimmed, compiler.Disassemble(prog))
	}
	return nil
}
