package compiler

import (
	"fmt"
	"strings"
)

// Disassemble renders a Program as human-readable text, one instruction per
// line, following mna-nenuphar/lang/compiler/asm.go's section-based
// disassembly idiom (names/constants tables up front, then a code listing)
// scaled down to this package's flat, single-function Program shape. Used by
// the `push compile` subcommand (internal/maincmd) and by compiler tests
// that want to assert on the shape of emitted code without hand-counting
// instruction indices.
func Disassemble(p *Program) string {
	var b strings.Builder

	if len(p.Names) > 0 {
		fmt.Fprintln(&b, "names:")
		for i, n := range p.Names {
			fmt.Fprintf(&b, "\t%d %s\n", i, n)
		}
	}
	if len(p.Consts) > 0 {
		fmt.Fprintln(&b, "constants:")
		for i, c := range p.Consts {
			fmt.Fprintf(&b, "\t%d %q\n", i, c)
		}
	}
	if len(p.Lists) > 0 {
		fmt.Fprintln(&b, "lists:")
		for i, l := range p.Lists {
			fmt.Fprintf(&b, "\t%d %v\n", i, l)
		}
	}

	fmt.Fprintln(&b, "code:")
	for pc, inst := range p.Code {
		fmt.Fprintf(&b, "\t%4d %s\n", pc, formatInst(p, inst))
	}
	return b.String()
}

func formatInst(p *Program, inst Inst) string {
	switch inst.Op {
	case NOP, PIPE, EXEC, EXECQ, END:
		return inst.Op.String()
	case LOAD, SET, GET, SPLITL:
		return fmt.Sprintf("%s %s", inst.Op, nameAt(p, inst.A))
	case ARG:
		return fmt.Sprintf("%s %q", inst.Op, constAt(p, inst.A))
	case JMP, JZ, FORENEXT:
		return fmt.Sprintf("%s %d", inst.Op, inst.A)
	case SETLIST:
		return fmt.Sprintf("%s %s %v", inst.Op, nameAt(p, inst.A), listAt(p, inst.B))
	case FOREINIT:
		return fmt.Sprintf("%s %s %s", inst.Op, nameAt(p, inst.A), nameAt(p, inst.B))
	default:
		return inst.Op.String()
	}
}

func nameAt(p *Program, i uint32) string {
	if int(i) < len(p.Names) {
		return p.Names[i]
	}
	return "?"
}

func constAt(p *Program, i uint32) string {
	if int(i) < len(p.Consts) {
		return p.Consts[i]
	}
	return "?"
}

func listAt(p *Program, i uint32) []string {
	if int(i) < len(p.Lists) {
		return p.Lists[i]
	}
	return nil
}
