package machine

import "strings"

// Value is the interface implemented by every value the machine's stacks and
// variable table hold (spec §3 "Value"). Kept to the closed two-case shape
// spec.md describes (Text, List) rather than mna-nenuphar's open set of
// capability interfaces (Callable/Ordered/Iterable/...): this machine has no
// user-defined types, so there is nothing for those interfaces to abstract
// over.
type Value interface {
	// Kind returns a short string naming the value's kind ("text" or "list"),
	// following mna-nenuphar/lang/machine/value.go's Type() convention.
	Kind() string

	// String returns the value's textual form: itself for Text, and its
	// lines joined by "\n" for List — this is what GET and command argument
	// substitution observe (spec §3, §4.3).
	String() string
}

// Text is a bare string value: the result of ARG, GET on a scalar variable,
// or a command's textual output.
type Text string

func (Text) Kind() string     { return "text" }
func (t Text) String() string { return string(t) }

// List is an ordered sequence of strings: the result of SETLIST, SPLITL, or
// GET on a variable a foreach/SETLIST bound to a list.
type List []string

func (List) Kind() string     { return "list" }
func (l List) String() string { return strings.Join(l, "\n") }

// Truth reports whether v is truthy per spec §3's "Truthiness" rule: empty
// text, and the case-insensitive literals "0"/"false"/"no"/"nil", are
// falsy; everything else (including a non-empty list) is truthy.
func Truth(v Value) bool {
	if v == nil {
		return false
	}
	switch t := v.(type) {
	case Text:
		return textTruth(string(t))
	case List:
		return len(t) > 0
	default:
		return textTruth(v.String())
	}
}

func textTruth(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	switch strings.ToLower(s) {
	case "0", "false", "no", "nil":
		return false
	}
	return true
}

// AsList coerces v to a List: a List is returned as-is, and Text is split on
// the variable's own lines (used when a scalar variable name is iterated by
// foreach, matching the Python original's lenient treatment of coercions
// between its str/list variable values).
func AsList(v Value) List {
	switch t := v.(type) {
	case List:
		return t
	case Text:
		if t == "" {
			return nil
		}
		return List(strings.Split(string(t), "\n"))
	default:
		return nil
	}
}
