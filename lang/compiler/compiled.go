package compiler

// Inst is one instruction in a Program's linear opcode stream (spec §3
// "Opcode... operand(s)"). A and B are pool indices into the owning
// Program's Names/Consts/Lists, or — for jump opcodes — absolute program
// counters. Not every opcode uses both operands; unused operands are zero.
type Inst struct {
	Op Opcode
	A  uint32
	B  uint32
}

// Program is the compiled form of one entered line (spec §4.2). Names and
// Consts intern repeated strings (command/variable names, argument
// literals) so the instruction stream addresses them by index instead of
// repeating them inline — mna-nenuphar/lang/compiler/compiled.go's
// Names/Constants pooling idiom, carried over verbatim because it solves
// the same problem here: a short pipeline re-mentions the same few names.
type Program struct {
	Code  []Inst
	Names []string   // command and variable names
	Consts []string  // argument/literal string values
	Lists [][]string // literal list operands, for SETLIST

	// Background reports whether the source line ended in a trailing '&'.
	// Compile does not set it: it never looks for that token, and callers
	// get the flag from lexer.StripBackground instead.
	Background bool
}

// internName returns the index of name in p.Names, appending it if not
// already present.
func (p *Program) internName(name string) uint32 {
	for i, n := range p.Names {
		if n == name {
			return uint32(i)
		}
	}
	p.Names = append(p.Names, name)
	return uint32(len(p.Names) - 1)
}

// internConst returns the index of s in p.Consts, appending it if not
// already present.
func (p *Program) internConst(s string) uint32 {
	for i, c := range p.Consts {
		if c == s {
			return uint32(i)
		}
	}
	p.Consts = append(p.Consts, s)
	return uint32(len(p.Consts) - 1)
}

// internList appends list to p.Lists and returns its index; list literals
// are not deduplicated since foreach/for loops rarely repeat one verbatim.
func (p *Program) internList(list []string) uint32 {
	p.Lists = append(p.Lists, list)
	return uint32(len(p.Lists) - 1)
}

// emit appends inst to the code stream and returns its address, used by the
// compiler to remember patch sites for forward jumps.
func (p *Program) emit(inst Inst) int {
	p.Code = append(p.Code, inst)
	return len(p.Code) - 1
}

// patchA rewrites the A operand (always a jump target) of the instruction
// at addr, resolving a forward reference recorded during compileIf,
// compileWhile, compileFor, compileForeach, compileChain's &&/|| jumps, or
// a break.
func (p *Program) patchA(addr int, target uint32) {
	p.Code[addr].A = target
}
