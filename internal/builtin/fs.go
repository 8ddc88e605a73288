package builtin

import (
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/elahtrebor/push/lang/machine"
)

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// cmdLs lists a directory's entries, one per line. Grounded on cmd_ls.
func cmdLs(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return "Syntax Error\n", nil
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return strings.Join(names, "\n"), nil
}

// cmdPwd reports the current working directory. Grounded on cmd_pwd.
func cmdPwd(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "Error. Couldn't get working directory\n", nil
	}
	return wd, nil
}

// cmdCd changes the process's working directory. Grounded on cmd_cd.
//
// Like the original, this changes one process-wide directory for every VM,
// not a per-VM notion of cwd — os.Chdir is inherently global in Go just as
// os.chdir is in the Python original.
func cmdCd(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	if err := os.Chdir(path); err != nil {
		return "Error. Couldn't cd\n", nil
	}
	return path, nil
}

// cmdCat returns a file's contents, or the pipeline input if no filename is
// given. Grounded on cmd_cat.
func cmdCat(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	if len(args) > 0 {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return "Couldn't open file\n", nil
		}
		return string(b), nil
	}
	text, err := in.AsText()
	if err != nil {
		return "Couldn't open file\n", nil
	}
	return text, nil
}

// cmdCp copies args[0] to args[1]. Grounded on cmd_cp.
func cmdCp(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	if len(args) < 2 {
		return "Couldn't copy.\n", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "Couldn't copy.\n", nil
	}
	if err := os.WriteFile(args[1], data, 0o644); err != nil {
		return "Couldn't copy.\n", nil
	}
	return "File " + args[0] + " copied.", nil
}

// cmdRename renames args[0] to args[1]. Grounded on cmd_rename.
func cmdRename(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	if len(args) < 2 {
		return "Couldn't rename\n", nil
	}
	if err := os.Rename(args[0], args[1]); err != nil {
		return "Couldn't rename\n", nil
	}
	return args[0] + " renamed..", nil
}

// cmdMkdir creates a directory. Grounded on cmd_mkdir.
func cmdMkdir(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	if err := os.Mkdir(name, 0o755); err != nil {
		return "Couldn't make directory\n", nil
	}
	return "Directory " + name + " created.\n", nil
}

// cmdRmdir removes an empty directory. Grounded on cmd_rmdir.
func cmdRmdir(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	if err := os.Remove(name); err != nil {
		return "Couldn't remove dir.\n", nil
	}
	return "Removed " + name + ".\n", nil
}

// cmdRm removes a file. Grounded on cmd_rm.
func cmdRm(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	if err := os.Remove(name); err != nil {
		return "Couldn't remove file\n", nil
	}
	return "Removed file " + name + "\n", nil
}

// cmdWc counts lines in a file or the pipeline input. Grounded on cmd_wc.
func cmdWc(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	var text string
	if len(args) > 0 {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return "Couldn't open file\n", nil
		}
		text = string(b)
	} else {
		t, err := in.AsText()
		if err != nil {
			return "Couldn't open file\n", nil
		}
		text = t
	}
	return itoa(countLines(text)) + "\n", nil
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
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

// cmdUname reports the host OS/arch, the Go-native analogue of cmd_uname's
// os.uname() (which has no portable Go equivalent): runtime.GOOS/GOARCH.
func cmdUname(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	return runtime.GOOS + "\n" + runtime.GOARCH, nil
}

// cmdDate reports the current local time. Grounded on cmd_date.
func cmdDate(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	return time.Now().Format("1/2/2006 15:04:05"), nil
}
