package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/elahtrebor/push/lang/token"
)

// CompileError reports a malformed line: an unexpected or missing token.
// Mirrors original_source/pushvm/pushvm.py's CompileError, as a typed Go
// error instead of a bare string so callers can distinguish it from a
// RuntimeError (spec §7.1).
type CompileError struct {
	Msg string
}

func (e *CompileError) Error() string { return e.Msg }

func errf(format string, args ...any) *CompileError {
	return &CompileError{Msg: fmt.Sprintf(format, args...)}
}

// loopCtx tracks the jump targets a break/continue inside a loop body needs
// to resolve, mirroring the Python compiler's loop_stack entries.
type loopCtx struct {
	start     int
	breakJmps []int
}

// Compiler performs a single forward pass over a token slice, emitting
// Program.Code directly and patching forward jump targets once their
// destination address is known — the same patch-as-you-go style as
// original_source/pushvm/pushvm.py's Compiler class (spec §4.2: "forward-
// patch fixups"), rather than mna-nenuphar's build-a-CFG-then-linearize
// compiler. Naming/pooling machinery (Program, Names/Consts, Opcode table)
// still follows the teacher.
type Compiler struct {
	toks []string
	i    int
	tmps int

	prog  *Program
	loops []loopCtx
}

// Compile lowers the tokens produced by lang/lexer.Lex into a Program. The
// caller is expected to have already stripped a trailing background marker
// via lexer.StripBackground; Compile does not look for one.
func Compile(toks []string) (*Program, error) {
	c := &Compiler{toks: toks, prog: &Program{}}
	if err := c.compileStmts(nil); err != nil {
		return nil, err
	}
	c.emit(END, 0, 0)
	return c.prog, nil
}

func (c *Compiler) peek() (string, bool) {
	if c.i < len(c.toks) {
		return c.toks[c.i], true
	}
	return "", false
}

func (c *Compiler) pop() (string, bool) {
	t, ok := c.peek()
	if ok {
		c.i++
	}
	return t, ok
}

func (c *Compiler) expect(want string) error {
	got, ok := c.pop()
	if !ok || got != want {
		return errf("expected %q but got %q", want, got)
	}
	return nil
}

func (c *Compiler) newTmp(prefix string) string {
	c.tmps++
	return fmt.Sprintf("%s%d", prefix, c.tmps)
}

func (c *Compiler) emit(op Opcode, a, b uint32) int { return c.prog.emit(Inst{Op: op, A: a, B: b}) }

func (c *Compiler) emitName(op Opcode, name string) int {
	return c.emit(op, c.prog.internName(name), 0)
}

func (c *Compiler) emitConst(op Opcode, s string) int {
	return c.emit(op, c.prog.internConst(s), 0)
}

func (c *Compiler) here() uint32 { return uint32(len(c.prog.Code)) }

func isTermSet(terms map[string]bool, t string) bool {
	return terms != nil && terms[t]
}

func withTerms(base map[string]bool, extra ...string) map[string]bool {
	m := make(map[string]bool, len(base)+len(extra))
	for k := range base {
		m[k] = true
	}
	for _, e := range extra {
		m[e] = true
	}
	return m
}

// compileStmts compiles statements up to (not including) any token in
// terminators, or end of input.
func (c *Compiler) compileStmts(terminators map[string]bool) error {
	for {
		t, ok := c.peek()
		if !ok || isTermSet(terminators, t) {
			return nil
		}

		if t == token.Semi {
			c.pop()
			continue
		}

		var err error
		switch t {
		case token.KwIf:
			err = c.compileIf()
		case token.KwWhile:
			err = c.compileWhile()
		case token.KwFor:
			err = c.compileFor()
		case token.KwForeach:
			err = c.compileForeach()
		case token.KwBreak:
			err = c.compileBreak()
			if err == nil {
				c.emit(EXECQ, 0, 0)
			}
		case token.KwContinue:
			err = c.compileContinue()
			if err == nil {
				c.emit(EXECQ, 0, 0)
			}
		default:
			err = c.compileChain(terminators)
		}
		if err != nil {
			return err
		}

		if t, ok := c.peek(); ok && t == token.Semi {
			c.pop()
		}
	}
}

func (c *Compiler) compileIf() error {
	if err := c.expect(token.KwIf); err != nil {
		return err
	}
	if err := c.compilePipeline(map[string]bool{token.KwThen: true}); err != nil {
		return err
	}
	c.emit(EXECQ, 0, 0)
	jz := c.emit(JZ, 0, 0)

	if err := c.expect(token.KwThen); err != nil {
		return err
	}
	if err := c.compileStmts(map[string]bool{token.KwElse: true, token.KwFi: true}); err != nil {
		return err
	}

	if t, ok := c.peek(); ok && t == token.KwElse {
		jmpEnd := c.emit(JMP, 0, 0)
		c.pop()
		c.prog.patchA(jz, c.here())
		if err := c.compileStmts(map[string]bool{token.KwFi: true}); err != nil {
			return err
		}
		if err := c.expect(token.KwFi); err != nil {
			return err
		}
		c.prog.patchA(jmpEnd, c.here())
		return nil
	}

	if err := c.expect(token.KwFi); err != nil {
		return err
	}
	c.prog.patchA(jz, c.here())
	return nil
}

func (c *Compiler) compileWhile() error {
	if err := c.expect(token.KwWhile); err != nil {
		return err
	}
	loopStart := c.here()

	if err := c.compilePipeline(map[string]bool{token.KwDo: true}); err != nil {
		return err
	}
	c.emit(EXECQ, 0, 0)
	jzExit := c.emit(JZ, 0, 0)

	if err := c.expect(token.KwDo); err != nil {
		return err
	}
	c.loops = append(c.loops, loopCtx{start: int(loopStart)})

	if err := c.compileStmts(map[string]bool{token.KwDone: true}); err != nil {
		return err
	}
	if err := c.expect(token.KwDone); err != nil {
		return err
	}
	c.emit(JMP, loopStart, 0)

	exit := c.here()
	c.prog.patchA(jzExit, exit)
	c.resolveLoopExit(exit)
	return nil
}

func (c *Compiler) compileFor() error {
	if err := c.expect(token.KwFor); err != nil {
		return err
	}
	varName, ok := c.pop()
	if !ok || varName == "" {
		return errf("for: missing variable name")
	}
	start, ok1 := c.pop()
	end, ok2 := c.pop()
	if !ok1 || !ok2 {
		return errf("for: needs start and end")
	}

	var step string
	hasStep := false
	if t, ok := c.peek(); !ok || t != token.KwDo {
		step, hasStep = c.pop()
	}
	if t, ok := c.peek(); !ok || t != token.KwDo {
		return errf("for: expected 'do'")
	}

	c.emitConst(ARG, start)
	c.emitName(SET, varName)

	loopStart := c.here()

	cmpOp := "-le"
	if hasStep {
		if n, err := strconv.Atoi(strings.TrimSpace(step)); err == nil && n < 0 {
			cmpOp = "-ge"
		}
	}

	c.emitName(LOAD, "test")
	c.emitName(GET, varName)
	c.emitConst(ARG, cmpOp)
	c.emitConst(ARG, end)
	c.emit(EXECQ, 0, 0)
	jzExit := c.emit(JZ, 0, 0)

	if err := c.expect(token.KwDo); err != nil {
		return err
	}
	c.loops = append(c.loops, loopCtx{start: int(loopStart)})

	if err := c.compileStmts(map[string]bool{token.KwDone: true}); err != nil {
		return err
	}
	if err := c.expect(token.KwDone); err != nil {
		return err
	}

	if !hasStep {
		step = "1"
	}
	c.emitName(LOAD, "addv")
	c.emitConst(ARG, varName)
	c.emitConst(ARG, step)
	c.emit(EXECQ, 0, 0)

	c.emit(JMP, loopStart, 0)

	exit := c.here()
	c.prog.patchA(jzExit, exit)
	c.resolveLoopExit(exit)
	return nil
}

func (c *Compiler) compileForeach() error {
	if err := c.expect(token.KwForeach); err != nil {
		return err
	}
	varName, ok := c.pop()
	if !ok || varName == "" {
		return errf("foreach: missing variable name")
	}
	if err := c.expect(token.KwIn); err != nil {
		return err
	}

	listVar := c.newTmp("__foreach_list_")

	var collected []string
	hasPipe := false
	for {
		t, ok := c.peek()
		if !ok {
			return errf("foreach: missing 'do'")
		}
		if t == token.KwDo {
			break
		}
		c.pop()
		if t == token.Pipe {
			hasPipe = true
		}
		collected = append(collected, t)
	}

	if hasPipe {
		sub := &Compiler{toks: collected, prog: c.prog}
		if err := sub.compilePipeline(nil); err != nil {
			return err
		}
		c.emit(EXECQ, 0, 0)
		c.emitName(SPLITL, listVar)
	} else {
		c.emitName(SETLIST, listVar)
		c.prog.Code[len(c.prog.Code)-1].B = c.prog.internList(collected)
	}

	if err := c.expect(token.KwDo); err != nil {
		return err
	}

	c.emit(FOREINIT, c.prog.internName(varName), c.prog.internName(listVar))
	loopStart := c.here()
	foreNext := c.emit(FORENEXT, 0, 0)

	c.loops = append(c.loops, loopCtx{start: int(loopStart)})

	if err := c.compileStmts(map[string]bool{token.KwDone: true}); err != nil {
		return err
	}
	if err := c.expect(token.KwDone); err != nil {
		return err
	}
	c.emit(JMP, loopStart, 0)

	exit := c.here()
	c.prog.patchA(foreNext, exit)
	c.resolveLoopExit(exit)
	return nil
}

func (c *Compiler) compileBreak() error {
	if err := c.expect(token.KwBreak); err != nil {
		return err
	}
	if len(c.loops) == 0 {
		return errf("break used outside of a loop")
	}
	j := c.emit(JMP, 0, 0)
	top := &c.loops[len(c.loops)-1]
	top.breakJmps = append(top.breakJmps, j)
	return nil
}

func (c *Compiler) compileContinue() error {
	if err := c.expect(token.KwContinue); err != nil {
		return err
	}
	if len(c.loops) == 0 {
		return errf("continue used outside of a loop")
	}
	c.emit(JMP, uint32(c.loops[len(c.loops)-1].start), 0)
	return nil
}

// resolveLoopExit patches every pending break jump in the innermost loop to
// target exit, then pops that loop's context.
func (c *Compiler) resolveLoopExit(exit uint32) {
	top := c.loops[len(c.loops)-1]
	for _, j := range top.breakJmps {
		c.prog.patchA(j, exit)
	}
	c.loops = c.loops[:len(c.loops)-1]
}

// isAssignment reports whether t is a `name=value` assignment token: it
// contains '=', does not start with the variable sigil, and is not the pipe
// operator (spec §4.1 grammar note: bare '=' inside a quoted value does not
// confuse this, since the lexer only ever hands back whole tokens).
func isAssignment(t string) bool {
	return strings.Contains(t, "=") && !strings.HasPrefix(t, token.VarSigil) && t != token.Pipe
}

// compileChain compiles one `pipeline [&& pipeline | || pipeline]...` chain,
// or a bare assignment, stopping before any token in stopTokens.
func (c *Compiler) compileChain(stopTokens map[string]bool) error {
	t, ok := c.peek()
	if ok && isAssignment(t) {
		name, val, _ := strings.Cut(t, "=")
		c.pop()
		c.emitConst(ARG, val)
		c.emitName(SET, name)
		c.emitName(LOAD, "echo")
		c.emitName(GET, name)
		c.emit(EXECQ, 0, 0)
	} else {
		terms := withTerms(stopTokens, token.AndAnd, token.OrOr, token.Gt, token.Append)
		if err := c.compilePipeline(terms); err != nil {
			return err
		}
		if err := c.compileRedirectionIfPresent(); err != nil {
			return err
		}
		c.emit(EXEC, 0, 0)
	}

	for {
		op, ok := c.peek()
		if !ok || (op != token.AndAnd && op != token.OrOr) {
			return nil
		}
		c.pop()

		terms := withTerms(stopTokens, token.AndAnd, token.OrOr, token.Gt, token.Append)
		if op == token.AndAnd {
			skip := c.emit(JZ, 0, 0)
			if err := c.compilePipeline(terms); err != nil {
				return err
			}
			if err := c.compileRedirectionIfPresent(); err != nil {
				return err
			}
			c.emit(EXEC, 0, 0)
			c.prog.patchA(skip, c.here())
		} else {
			runRHS := c.emit(JZ, 0, 0)
			skip := c.emit(JMP, 0, 0)
			c.prog.patchA(runRHS, c.here())
			if err := c.compilePipeline(terms); err != nil {
				return err
			}
			if err := c.compileRedirectionIfPresent(); err != nil {
				return err
			}
			c.emit(EXEC, 0, 0)
			c.prog.patchA(skip, c.here())
		}
	}
}

func (c *Compiler) compileRedirectionIfPresent() error {
	t, ok := c.peek()
	if !ok || (t != token.Gt && t != token.Append) {
		return nil
	}
	c.pop()
	fname, ok := c.pop()
	if !ok {
		return errf("redirection missing filename")
	}
	c.emit(PIPE, 0, 0)
	if t == token.Append {
		c.emitName(LOAD, "append")
	} else {
		c.emitName(LOAD, "write")
	}
	c.emitConst(ARG, fname)
	return nil
}

// compilePipeline compiles a `cmd arg... [| cmd arg...]...` sequence up to
// (not including) any token in stopTokens, ';', or end of input.
func (c *Compiler) compilePipeline(stopTokens map[string]bool) error {
	expectingCmd := true
	for {
		t, ok := c.peek()
		if !ok || isTermSet(stopTokens, t) || t == token.Semi {
			return nil
		}

		if t == token.Pipe {
			c.pop()
			c.emit(PIPE, 0, 0)
			expectingCmd = true
			continue
		}

		c.pop()

		if strings.HasPrefix(t, token.VarSigil) && len(t) > 1 {
			c.emitName(GET, t[1:])
			expectingCmd = false
			continue
		}

		if expectingCmd {
			c.emitName(LOAD, t)
			expectingCmd = false
		} else {
			c.emitConst(ARG, t)
		}
	}
}
