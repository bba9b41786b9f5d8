package lumber

import "fmt"

// Generation is a non-negative per-activation tag distinguishing
// same-named clause variables across recursive calls (spec.md §3, §4.2).
type Generation = int

// NoGeneration marks a "generationless" Variable: one that resolves to
// the binding environment's current top-of-stack generation at the
// moment of use, rather than carrying a fixed generation of its own.
// This is how parsed clause templates are reused across activations
// without structural copying (spec.md §4.2).
const NoGeneration Generation = -1

// Variable is (Identifier, Option<Generation>). A resolver upstream of
// the engine (out of scope per spec.md §1) is responsible for giving
// every syntactic occurrence of the wildcard identifier "_" a distinct
// synthetic Identifier.Name, so that ordinary (name, generation)
// equality below already implements "wildcard occurrences never compare
// equal" without the engine needing to track occurrence identity itself.
type Variable struct {
	id  Identifier
	gen Generation
}

// NewVariable builds a generationless Variable.
func NewVariable(id Identifier) Variable {
	return Variable{id: id, gen: NoGeneration}
}

// Identifier returns the variable's identifier.
func (v Variable) Identifier() Identifier { return v.id }

// Name returns the variable's textual name.
func (v Variable) Name() string { return v.id.Name() }

// IsWildcard reports whether this variable's identifier is "_".
func (v Variable) IsWildcard() bool { return v.id.IsWildcard() }

// HasGeneration reports whether v carries an explicit generation.
func (v Variable) HasGeneration() bool { return v.gen != NoGeneration }

// Generation returns v's own generation, or current if v is
// generationless — this is the resolution described in spec.md §4.2.
func (v Variable) Generation(current Generation) Generation {
	if v.gen == NoGeneration {
		return current
	}
	return v.gen
}

// WithGeneration returns a copy of v pinned to the given generation.
func (v Variable) WithGeneration(g Generation) Variable {
	return Variable{id: v.id, gen: g}
}

// Equal compares two variables by identifier name and resolved
// generation. Two distinct wildcard occurrences are equal under this
// definition only if the upstream resolver gave them the same synthetic
// name, which by contract it never does (see the Variable doc comment).
func (v Variable) Equal(o Variable) bool {
	return v.id.name == o.id.name && v.gen == o.gen
}

// Less gives variables a total order so the unifier can pick a canonical
// binding deterministically (spec.md §4.3 case 3: "pick the
// lexicographically smaller Variable").
func (v Variable) Less(o Variable) bool {
	if v.id.name != o.id.name {
		return v.id.name < o.id.name
	}
	return v.gen < o.gen
}

// Min returns the lexicographically smaller of two variables.
func Min(a, b Variable) Variable {
	if a.Less(b) {
		return a
	}
	return b
}

// Max returns the lexicographically larger of two variables.
func Max(a, b Variable) Variable {
	if a.Less(b) {
		return b
	}
	return a
}

// String renders the variable for debugging.
func (v Variable) String() string {
	if v.gen == NoGeneration {
		return v.id.name
	}
	return fmt.Sprintf("%s#%d", v.id.name, v.gen)
}

// key returns the byte-string key this variable occupies in a Binding's
// iradix-backed variable map: the generation must be resolved by the
// caller (Binding tracks "current generation" itself, not Variable).
func (v Variable) key(resolvedGen Generation) []byte {
	return []byte(fmt.Sprintf("%s\x00%d", v.id.name, resolvedGen))
}
