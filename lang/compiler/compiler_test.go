package compiler_test

import (
	"testing"

	"github.com/elahtrebor/push/lang/compiler"
	"github.com/elahtrebor/push/lang/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, line string) *compiler.Program {
	t.Helper()
	prog, err := compiler.Compile(lexer.Lex(line))
	require.NoError(t, err)
	return prog
}

func opsOf(prog *compiler.Program) []compiler.Opcode {
	ops := make([]compiler.Opcode, len(prog.Code))
	for i, inst := range prog.Code {
		ops[i] = inst.Op
	}
	return ops
}

func TestCompileSimplePipeline(t *testing.T) {
	prog := mustCompile(t, "echo hi | upper")
	assert.Equal(t, []compiler.Opcode{
		compiler.LOAD, compiler.ARG, compiler.PIPE, compiler.LOAD, compiler.EXEC, compiler.END,
	}, opsOf(prog))
	assert.Equal(t, []string{"echo", "upper"}, prog.Names)
	assert.Equal(t, []string{"hi"}, prog.Consts)
}

func TestCompileRedirection(t *testing.T) {
	prog := mustCompile(t, "echo hi > out.txt")
	assert.Equal(t, []compiler.Opcode{
		compiler.LOAD, compiler.ARG, compiler.PIPE, compiler.LOAD, compiler.ARG, compiler.EXEC, compiler.END,
	}, opsOf(prog))
	assert.Contains(t, prog.Names, "write")
}

func TestCompileAppendRedirection(t *testing.T) {
	prog := mustCompile(t, "echo hi >> out.txt")
	assert.Contains(t, prog.Names, "append")
}

func TestCompileAssignment(t *testing.T) {
	prog := mustCompile(t, "x=5")
	assert.Equal(t, []compiler.Opcode{
		compiler.ARG, compiler.SET, compiler.LOAD, compiler.GET, compiler.EXECQ, compiler.END,
	}, opsOf(prog))
	assert.Equal(t, []string{"x", "echo"}, prog.Names)
	assert.Equal(t, []string{"5"}, prog.Consts)
}

func TestCompileAndAndShortCircuit(t *testing.T) {
	prog := mustCompile(t, "true && echo yes")
	ops := opsOf(prog)
	// LOAD true / EXEC / JZ skip / LOAD echo / ARG yes / EXEC / END
	require.Len(t, ops, 7)
	assert.Equal(t, compiler.JZ, ops[2])
	jzTarget := prog.Code[2].A
	assert.Equal(t, uint32(len(prog.Code)-1), jzTarget, "&& should skip straight to END on falsy LHS")
}

func TestCompileOrOrShortCircuit(t *testing.T) {
	prog := mustCompile(t, "false || echo fallback")
	ops := opsOf(prog)
	require.Len(t, ops, 8)
	// LOAD false / EXEC / JZ run_rhs / JMP skip / LOAD echo / ARG fallback / EXEC / END
	assert.Equal(t, compiler.JZ, ops[2])
	assert.Equal(t, compiler.JMP, ops[3])
	assert.Equal(t, uint32(4), prog.Code[2].A, "|| runs RHS only when LHS is falsy")
	assert.Equal(t, uint32(len(prog.Code)-1), prog.Code[3].A, "|| skips RHS when LHS is truthy")
}

func TestCompileIfElse(t *testing.T) {
	prog := mustCompile(t, "if true then echo yes else echo no fi")
	ops := opsOf(prog)
	// sanity: every jump target lands inside the code range, and the
	// if/else shape always terminates in END.
	assert.Equal(t, compiler.END, ops[len(ops)-1])
	for _, inst := range prog.Code {
		switch inst.Op {
		case compiler.JMP, compiler.JZ:
			assert.Less(t, inst.A, uint32(len(prog.Code)))
		}
	}
}

func TestCompileIfNoElse(t *testing.T) {
	prog := mustCompile(t, "if true then echo yes fi")
	found := false
	for _, inst := range prog.Code {
		if inst.Op == compiler.JZ {
			found = true
			assert.LessOrEqual(t, inst.A, uint32(len(prog.Code)))
		}
	}
	assert.True(t, found)
}

func TestCompileWhileLoopBack(t *testing.T) {
	prog := mustCompile(t, "while true do echo hi done")
	var sawBackJump bool
	for _, inst := range prog.Code {
		if inst.Op == compiler.JMP && inst.A == 0 {
			sawBackJump = true
		}
	}
	assert.True(t, sawBackJump, "while loop body must jump back to pc 0")
}

func TestCompileForLoop(t *testing.T) {
	prog := mustCompile(t, "for i 1 3 do echo $i done")
	assert.Contains(t, prog.Names, "test")
	assert.Contains(t, prog.Names, "addv")
	assert.Contains(t, prog.Consts, "-le")
}

func TestCompileForNegativeStepUsesGE(t *testing.T) {
	prog := mustCompile(t, "for i 3 1 -1 do echo $i done")
	assert.Contains(t, prog.Consts, "-ge")
}

func TestCompileForeachLiteralList(t *testing.T) {
	prog := mustCompile(t, "foreach x in a b c do echo $x done")
	require.Len(t, prog.Lists, 1)
	assert.Equal(t, []string{"a", "b", "c"}, prog.Lists[0])

	var sawForeInit, sawForeNext bool
	for _, inst := range prog.Code {
		switch inst.Op {
		case compiler.FOREINIT:
			sawForeInit = true
		case compiler.FORENEXT:
			sawForeNext = true
		}
	}
	assert.True(t, sawForeInit)
	assert.True(t, sawForeNext)
}

func TestCompileForeachPipeline(t *testing.T) {
	prog := mustCompile(t, "foreach line in cat f.txt | grep x do echo $line done")
	var sawSplitl bool
	for _, inst := range prog.Code {
		if inst.Op == compiler.SPLITL {
			sawSplitl = true
		}
	}
	assert.True(t, sawSplitl, "foreach over a pipeline must split last_output into lines")
}

func TestCompileBreakOutsideLoopFails(t *testing.T) {
	_, err := compiler.Compile(lexer.Lex("break"))
	require.Error(t, err)
	var cerr *compiler.CompileError
	assert.ErrorAs(t, err, &cerr)
}

func TestCompileContinueOutsideLoopFails(t *testing.T) {
	_, err := compiler.Compile(lexer.Lex("continue"))
	require.Error(t, err)
}

func TestCompileBreakInsideWhile(t *testing.T) {
	prog := mustCompile(t, "while true do break done")
	// pc2 is the loop's exit JZ; the break at pc3 must patch to the same
	// exit address once the loop body finishes compiling.
	require.Equal(t, compiler.JZ, prog.Code[2].Op)
	require.Equal(t, compiler.JMP, prog.Code[3].Op)
	assert.Equal(t, prog.Code[2].A, prog.Code[3].A)
}

func TestCompileMalformedIfMissingFi(t *testing.T) {
	_, err := compiler.Compile(lexer.Lex("if true then echo yes"))
	require.Error(t, err)
}

func TestCompileForMissingBounds(t *testing.T) {
	_, err := compiler.Compile(lexer.Lex("for i 1"))
	require.Error(t, err)
}
