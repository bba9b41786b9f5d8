package lumber

import "strings"

// Scope is the canonical, fully-resolved module path a Handle lives in.
// Resolving a source-level scoped name (aliases, glob imports) to a
// Scope is the name resolver's job, out of scope per spec.md §1; the
// engine only ever sees the resolved form.
type Scope string

// ArityKind distinguishes the two shapes a Handle's arity entries take.
type ArityKind uint8

const (
	// ArityLen is n consecutive positional fields.
	ArityLen ArityKind = iota
	// ArityName is a named field group followed by a positional run.
	ArityName
)

// Arity is one entry of a Handle's arity vector: either Len(n) or
// Name(atom), per spec.md §3.
type Arity struct {
	Kind ArityKind
	Len  int
	Name Atom
}

// LenArity builds an ArityLen entry.
func LenArity(n int) Arity { return Arity{Kind: ArityLen, Len: n} }

// NameArity builds an ArityName entry.
func NameArity(a Atom) Arity { return Arity{Kind: ArityName, Name: a} }

// compatible reports whether two arity entries match in kind and, within
// that kind, in the field count (ArityLen) or the named atom (ArityName)
// — the two vectors still need to be compared position-by-position by
// the caller.
func (a Arity) compatible(b Arity) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == ArityName {
		return a.Name.Equal(b.Name)
	}
	return a.Len == b.Len
}

// Handle is (Scope, [Arity]): a fully-resolved predicate identity.
type Handle struct {
	Scope Scope
	Arity []Arity
}

// NewHandle builds a Handle.
func NewHandle(scope Scope, arity ...Arity) Handle {
	return Handle{Scope: scope, Arity: arity}
}

// Compatible reports whether h and o have arity vectors of the same
// length whose entries match position-by-position (see Arity.compatible).
func (h Handle) Compatible(o Handle) bool {
	if len(h.Arity) != len(o.Arity) {
		return false
	}
	for i := range h.Arity {
		if !h.Arity[i].compatible(o.Arity[i]) {
			return false
		}
	}
	return true
}

// TotalLen returns the total number of argument positions a query
// against this handle must supply.
func (h Handle) TotalLen() int {
	n := 0
	for _, a := range h.Arity {
		if a.Kind == ArityLen {
			n += a.Len
		} else {
			n++
		}
	}
	return n
}

// String renders the handle for debugging/logging and as its map key,
// e.g. "scope::pred/_,_,." for a single LenArity(2) entry; an ArityName
// entry renders as "name:".
func (h Handle) String() string {
	var b strings.Builder
	b.WriteString(string(h.Scope))
	b.WriteByte('/')
	for i, a := range h.Arity {
		if i > 0 {
			b.WriteByte(',')
		}
		if a.Kind == ArityName {
			b.WriteString(a.Name.String())
			b.WriteByte(':')
		} else {
			b.WriteString(strings.Repeat("_,", a.Len))
			b.WriteByte('.')
		}
	}
	return b.String()
}

// key is the byte-string key this handle occupies in the Database's
// iradix-backed map.
func (h Handle) key() []byte {
	return []byte(h.String())
}
