package machine_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/elahtrebor/push/lang/compiler"
	"github.com/elahtrebor/push/lang/lexer"
	"github.com/elahtrebor/push/lang/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoRegistry returns a Registry with just enough builtins to exercise the
// VM's opcode dispatch: echo joins its args, upper uppercases its input,
// test implements the handful of comparators `for` compiles against, and
// addv increments a variable, mirroring the reserved commands' semantics
// from original_source/pushvm/pushvm.py without depending on internal/builtin.
func echoRegistry() *machine.Registry {
	reg := machine.NewRegistry()
	reg.Register("echo", func(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
		out := ""
		for i, a := range args {
			if i > 0 {
				out += " "
			}
			out += a
		}
		return out, nil
	})
	reg.Register("upper", func(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
		text, err := in.AsText()
		if err != nil {
			return "", err
		}
		out := make([]byte, len(text))
		for i := 0; i < len(text); i++ {
			c := text[i]
			if c >= 'a' && c <= 'z' {
				c -= 'a' - 'A'
			}
			out[i] = c
		}
		return string(out), nil
	})
	reg.Register("true", func(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
		return "1", nil
	})
	reg.Register("false", func(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
		return "0", nil
	})
	reg.Register("test", func(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
		if len(args) != 3 {
			return "", nil
		}
		lhs, op, rhs := args[0], args[1], args[2]
		ok := false
		switch op {
		case "=":
			ok = lhs == rhs
		case "-le", "-ge":
			var l, r int
			fmtSscan(lhs, &l)
			fmtSscan(rhs, &r)
			if op == "-le" {
				ok = l <= r
			} else {
				ok = l >= r
			}
		}
		if ok {
			return "1", nil
		}
		return "", nil
	})
	reg.Register("addv", func(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
		if len(args) != 2 {
			return "", nil
		}
		var cur, delta int
		fmtSscan(vm.GetVar(args[0]).String(), &cur)
		fmtSscan(args[1], &delta)
		vm.SetVar(args[0], machine.Text(itoa(cur+delta)))
		return "", nil
	})
	return reg
}

func fmtSscan(s string, out *int) {
	n := 0
	neg := false
	for i := 0; i < len(s); i++ {
		if s[i] == '-' && i == 0 {
			neg = true
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			continue
		}
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		n = -n
	}
	*out = n
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func run(t *testing.T, vm *machine.VM, line string) string {
	t.Helper()
	prog, err := compiler.Compile(lexer.Lex(line))
	require.NoError(t, err)
	vm.Load(prog)
	out, err := vm.Run(context.Background(), nil)
	require.NoError(t, err)
	return out
}

func TestVMEchoAndPipe(t *testing.T) {
	vm := machine.NewVM(echoRegistry())
	out := run(t, vm, "echo hello world | upper")
	assert.Equal(t, "HELLO WORLD", out)
}

func TestVMAssignmentAndGet(t *testing.T) {
	vm := machine.NewVM(echoRegistry())
	run(t, vm, "x=5")
	assert.Equal(t, machine.Text("5"), vm.GetVar("x"))
	out := run(t, vm, "echo $x")
	assert.Equal(t, "5", out)
}

func TestVMAndAndShortCircuits(t *testing.T) {
	vm := machine.NewVM(echoRegistry())
	out := run(t, vm, "false && echo nope")
	assert.Equal(t, "0", out)
}

func TestVMOrOrRunsOnFalse(t *testing.T) {
	vm := machine.NewVM(echoRegistry())
	out := run(t, vm, "false || echo yep")
	assert.Equal(t, "yep", out)
}

func TestVMIfElse(t *testing.T) {
	vm := machine.NewVM(echoRegistry())
	out := run(t, vm, "if true then echo yes else echo no fi")
	assert.Equal(t, "yes", out)

	out = run(t, vm, "if false then echo yes else echo no fi")
	assert.Equal(t, "no", out)
}

func TestVMWhileLoop(t *testing.T) {
	vm := machine.NewVM(echoRegistry())
	vm.SetVar("i", machine.Text("0"))
	prog, err := compiler.Compile(lexer.Lex("while test $i -le 2 do addv i 1; done"))
	require.NoError(t, err)
	vm.Load(prog)
	_, err = vm.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, machine.Text("3"), vm.GetVar("i"))
}

func TestVMForLoop(t *testing.T) {
	vm := machine.NewVM(echoRegistry())
	var buf bytes.Buffer
	vm.Stdout = &buf
	prog, err := compiler.Compile(lexer.Lex("for i 1 3 do echo $i done"))
	require.NoError(t, err)
	vm.Load(prog)
	_, err = vm.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", buf.String())
}

func TestVMForeachLiteralList(t *testing.T) {
	vm := machine.NewVM(echoRegistry())
	var buf bytes.Buffer
	vm.Stdout = &buf
	prog, err := compiler.Compile(lexer.Lex("foreach x in a b c do echo $x done"))
	require.NoError(t, err)
	vm.Load(prog)
	_, err = vm.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", buf.String())
}

func TestVMBreak(t *testing.T) {
	vm := machine.NewVM(echoRegistry())
	var buf bytes.Buffer
	vm.Stdout = &buf
	prog, err := compiler.Compile(lexer.Lex("foreach x in a b c do if test $x = b then break fi; echo $x done"))
	require.NoError(t, err)
	vm.Load(prog)
	_, err = vm.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "a\n", buf.String())
}

func TestVMRedirection(t *testing.T) {
	vm := machine.NewVM(echoRegistry())
	reg := vm.Registry
	var written string
	reg.Register("write", func(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
		text, _ := in.AsText()
		written = text
		return "", nil
	})
	run(t, vm, "echo hi > out.txt")
	assert.Equal(t, "hi", written)
}

func TestVMUnknownCommandIsSoftError(t *testing.T) {
	vm := machine.NewVM(echoRegistry())
	out := run(t, vm, "bogus")
	assert.Equal(t, "Error: command not found: bogus", out)
	assert.True(t, vm.LastTruth())
}
