package maincmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mna/mainer"

	"github.com/elahtrebor/push/lang/lexer"
)

// Tokenize prints the token stream lexer.Lex produces for each non-comment
// line of args[0], one line per input line — the replacement for
// mna-nenuphar's scanner.ScanFiles-backed Tokenize, adapted to this shell's
// per-line lexer instead of a whole-file token scanner.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	for _, line := range strings.Split(string(src), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		toks := lexer.Lex(trimmed)
		fmt.Fprintf(stdio.Stdout, "%s\n", strings.Join(toks, " | "))
	}
	return nil
}
