// Package grammar holds push.ebnf, a formal EBNF description of the shell
// grammar lang/compiler implements, checked for well-formedness the same
// way mna-nenuphar/lang/grammar validates its own .ebnf files: parse it and
// verify every production is defined and reachable from the start symbol.
package grammar

import (
	"os"
	"testing"

	"golang.org/x/exp/ebnf"
)

func TestPushGrammarIsWellFormed(t *testing.T) {
	const filename = "push.ebnf"
	f, err := os.Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	g, err := ebnf.Parse(filename, f)
	if err != nil {
		t.Fatal(err)
	}
	if err := ebnf.Verify(g, "Line"); err != nil {
		t.Fatal(err)
	}
}
