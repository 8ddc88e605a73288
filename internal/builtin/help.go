package builtin

import "github.com/elahtrebor/push/lang/machine"

// cmdHelp summarizes the registered commands and control-flow grammar.
// Grounded on cmd_help, trimmed of the ESP32/Wi-Fi-specific entries that
// this port doesn't carry (scanwifi, connect, ifconfig, edit).
func cmdHelp(vm *machine.VM, args []string, in machine.PipeData) (string, error) {
	return "" +
		"push shell\n\n" +
		"commands: exit, ls, uname, pwd, cat, cp, cd, mkdir, rmdir, rm,\n" +
		"grep, rename, date, help\n" +
		"extras: echo, upper, wc, test, write (>), append (>>), sleep\n" +
		"flow: if/while/for/foreach, break/continue, &&/||, vars x=val $x, jobs &\n" +
		"jobctl: jobs, kill <id>, fg <id>\n", nil
}
