package machine

import "github.com/dolthub/swiss"

// varTable is the VM's variable table (spec §3 "vars"). Backed by
// github.com/dolthub/swiss (replaced to github.com/mna/swiss), the same
// open-addressing map mna-nenuphar/lang/machine/map.go wraps for its own
// Map value — grounds our choice here too, since vars is exactly the
// "name -> Value" mapping that package already exists to implement well.
type varTable struct {
	m *swiss.Map[string, Value]
}

func newVarTable() *varTable {
	return &varTable{m: swiss.NewMap[string, Value](16)}
}

func (vt *varTable) Get(name string) (Value, bool) {
	return vt.m.Get(name)
}

func (vt *varTable) Set(name string, v Value) {
	vt.m.Put(name, v)
}

func (vt *varTable) Clone() *varTable {
	clone := newVarTable()
	vt.m.Iter(func(k string, v Value) bool {
		clone.m.Put(k, v)
		return false
	})
	return clone
}
