package machine

import "github.com/dolthub/swiss"

// Handler implements one command (spec §4.3, §6). It receives the VM
// executing it explicitly — per the Design Notes' own recommendation, this
// replaces a mutable "current VM" package global with a typed parameter —
// the arguments already substituted from variables, and the pipeline's
// input so far. Its string return is the command's output, interpreted by
// spec §7.3's soft error-prose protocol: returning an error aborts the
// pipeline stage (spec §7.2 RuntimeError), while a textual "Error: ..."
// return is just ordinary output, truthy like any other non-empty text.
type Handler func(vm *VM, args []string, in PipeData) (string, error)

// ModuleLoader resolves a command name that is not in the Registry to a
// loadable program, the Go-native analogue of
// original_source/pushvm/pushvm.py's run_command auto-resolving "/lib/<cmd>.py"
// through __import__ (spec §6 "Module loader"). Load returns false if name
// is not a loadable module.
type ModuleLoader interface {
	Load(name string) (prog Loadable, ok bool)
}

// Loadable is the minimal surface the VM needs to run a loaded module: a
// compiled program, run with the caller's argv bound to $1.. (see
// internal/builtin's module loader for the concrete implementation, which
// compiles a ".push" file's source on demand).
type Loadable interface {
	Run(vm *VM, argv []string) (string, error)
}

// Registry is the command dispatch table (spec §6 "Command registry"):
// maps a command name to the Handler that implements it. Backed by
// swiss.Map for the same reason mna-nenuphar/lang/machine/map.go uses it for
// its own Map value: open-addressing lookup for a small, frequently-probed
// table.
type Registry struct {
	m      *swiss.Map[string, Handler]
	loader ModuleLoader
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{m: swiss.NewMap[string, Handler](32)}
}

// Register adds or replaces the handler for name.
func (r *Registry) Register(name string, h Handler) {
	r.m.Put(name, h)
}

// SetModuleLoader installs the loader consulted when a command name is not
// found directly in the registry.
func (r *Registry) SetModuleLoader(l ModuleLoader) {
	r.loader = l
}

// Lookup returns the handler for name, or (nil, false) if name is neither a
// registered command nor a loadable module.
func (r *Registry) Lookup(name string) (Handler, bool) {
	if h, ok := r.m.Get(name); ok {
		return h, true
	}
	if r.loader == nil {
		return nil, false
	}
	prog, ok := r.loader.Load(name)
	if !ok {
		return nil, false
	}
	return func(vm *VM, args []string, _ PipeData) (string, error) {
		return prog.Run(vm, args)
	}, true
}
