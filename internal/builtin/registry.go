// Package builtin is the concrete command registry collaborator (spec §6,
// SPEC_FULL.md §4.6): the reserved commands the core depends on, plus a
// practical filesystem/text command set, each grounded line-for-line on
// original_source/pushvm/pushvm.py's cmd_* functions.
package builtin

import "github.com/elahtrebor/push/lang/machine"

// Registry builds a *machine.Registry wired with every handler this
// package implements. lib, if non-empty, is passed to NewModuleLoader so
// unregistered command names can resolve to "<lib>/<name>.push" scripts
// (spec §6 "Module loader").
func Registry(lib string) *machine.Registry {
	reg := machine.NewRegistry()

	reg.Register("echo", cmdEcho)
	reg.Register("upper", cmdUpper)
	reg.Register("write", cmdWrite)
	reg.Register("append", cmdAppend)
	reg.Register("test", cmdTest)
	reg.Register("[", cmdTest)
	reg.Register("addv", cmdAddv)
	reg.Register("sleep", cmdSleep)
	reg.Register("run", cmdRun(lib))
	reg.Register("jobs", cmdJobs)
	reg.Register("kill", cmdKill)
	reg.Register("fg", cmdFg)

	reg.Register("help", cmdHelp)
	reg.Register("ls", cmdLs)
	reg.Register("pwd", cmdPwd)
	reg.Register("cd", cmdCd)
	reg.Register("cat", cmdCat)
	reg.Register("cp", cmdCp)
	reg.Register("rm", cmdRm)
	reg.Register("mkdir", cmdMkdir)
	reg.Register("rmdir", cmdRmdir)
	reg.Register("rename", cmdRename)
	reg.Register("wc", cmdWc)
	reg.Register("grep", cmdGrep)
	reg.Register("uname", cmdUname)
	reg.Register("date", cmdDate)

	if lib != "" {
		reg.SetModuleLoader(NewModuleLoader(lib))
	}
	return reg
}
