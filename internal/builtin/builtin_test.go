package builtin_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/elahtrebor/push/internal/builtin"
	"github.com/elahtrebor/push/lang/compiler"
	"github.com/elahtrebor/push/lang/lexer"
	"github.com/elahtrebor/push/lang/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, vm *machine.VM, line string) string {
	t.Helper()
	prog, err := compiler.Compile(lexer.Lex(line))
	require.NoError(t, err)
	vm.Load(prog)
	out, err := vm.Run(context.Background(), nil)
	require.NoError(t, err)
	return out
}

func TestEchoAndUpperPipeline(t *testing.T) {
	vm := machine.NewVM(builtin.Registry(""))
	assert.Equal(t, "HELLO", run(t, vm, "echo hello | upper"))
}

func TestWriteAndCatRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	vm := machine.NewVM(builtin.Registry(""))
	run(t, vm, "echo hi > "+path)
	assert.Equal(t, "hi", run(t, vm, "cat "+path))
}

func TestAppendAccumulates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	vm := machine.NewVM(builtin.Registry(""))
	run(t, vm, "echo a > "+path)
	run(t, vm, "echo b >> "+path)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(got))
}

func TestTestComparators(t *testing.T) {
	vm := machine.NewVM(builtin.Registry(""))
	assert.Equal(t, "1", run(t, vm, "test 1 -le 2"))
	assert.Equal(t, "", run(t, vm, "test 2 -le 1"))
	assert.Equal(t, "1", run(t, vm, "test abc = abc"))
	assert.Equal(t, "", run(t, vm, "test abc = xyz"))
}

func TestAddvIncrements(t *testing.T) {
	vm := machine.NewVM(builtin.Registry(""))
	vm.SetVar("n", machine.Text("10"))
	run(t, vm, "addv n 5")
	assert.Equal(t, machine.Text("15"), vm.GetVar("n"))
}

func TestMkdirRmdirRoundTrip(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sub")
	vm := machine.NewVM(builtin.Registry(""))
	run(t, vm, "mkdir "+target)
	_, err := os.Stat(target)
	require.NoError(t, err)
	run(t, vm, "rmdir "+target)
	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestWcCountsLines(t *testing.T) {
	vm := machine.NewVM(builtin.Registry(""))
	dir := t.TempDir()
	path := filepath.Join(dir, "lines.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\nc\n"), 0o644))
	assert.Equal(t, "3\n", run(t, vm, "wc "+path))
}

func TestGrepFiltersLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("foo\nbar\nfoobar\n"), 0o644))
	vm := machine.NewVM(builtin.Registry(""))
	assert.Equal(t, "foo\nfoobar\n", run(t, vm, "grep foo "+path))
}

func TestUnknownCommandWithoutLoaderIsSoftError(t *testing.T) {
	vm := machine.NewVM(builtin.Registry(""))
	assert.Equal(t, "Error: command not found: nope", run(t, vm, "nope"))
}

func TestModuleLoaderRunsPushScript(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greet.push"), []byte("echo hi\n"), 0o644))
	vm := machine.NewVM(builtin.Registry(dir))
	assert.Equal(t, "hi", run(t, vm, "greet"))
}
