package lumber

import (
	"fmt"

	iradix "github.com/hashicorp/go-immutable-radix/v2"
)

// Binding is the generational substitution environment of spec.md §3/§4.2.
// It is a persistent value: every "mutating" operation returns a new
// Binding sharing structure with the old one via the underlying iradix
// tree, so branching search (Disjunction, clause retry) can clone a
// Binding at O(1) cost — exactly the requirement spec.md §9 places on
// the hot path. The tree is keyed on the byte encoding of
// (identifier name, resolved generation) and holds *Pattern values.
type Binding struct {
	vars        *iradix.Tree[*Pattern]
	generations []Generation
	next        Generation
}

// NewBinding builds the initial Binding for a Body: every syntactic
// variable of the body is inserted at generation 0 as a self-binding
// (spec.md §4.2 "new").
func NewBinding(bodyVars []Variable) *Binding {
	tree := iradix.New[*Pattern]()
	txn := tree.Txn()
	for _, v := range bodyVars {
		v0 := v.WithGeneration(0)
		txn.Insert(v0.key(0), VariablePattern(v0))
	}
	return &Binding{vars: txn.Commit(), generations: []Generation{0}, next: 1}
}

// Generation returns the current (top-of-stack) generation.
func (b *Binding) Generation() Generation {
	return b.generations[len(b.generations)-1]
}

// PrevGeneration returns the generation one below the top of stack.
func (b *Binding) PrevGeneration() Generation {
	return b.generations[len(b.generations)-2]
}

// clone returns a shallow copy of b with an independent generations
// slice (the tree pointer is shared — persistent by construction).
func (b *Binding) clone() *Binding {
	gens := make([]Generation, len(b.generations))
	copy(gens, b.generations)
	return &Binding{vars: b.vars, generations: gens, next: b.next}
}

// FreshVariable yields a variable with a unique internally generated
// name in the current generation (spec.md §4.2).
func (b *Binding) FreshVariable() (Variable, *Binding) {
	name := fmt.Sprintf("$%d", b.vars.Len())
	gen := b.Generation()
	v := NewVariable(NewIdentifier(name)).WithGeneration(gen)
	nb := b.clone()
	txn := nb.vars.Txn()
	txn.Insert(v.key(gen), VariablePattern(v))
	nb.vars = txn.Commit()
	return v, nb
}

// Get dereferences the variable chain once per step, following
// Variable→Variable hops until a non-variable or self-binding
// (spec.md §4.2). var must already carry a resolved generation.
func (b *Binding) Get(v Variable) (*Pattern, bool) {
	cur := v.WithGeneration(v.Generation(b.Generation()))
	pat, ok := b.vars.Get(cur.key(cur.gen))
	if !ok {
		return nil, false
	}
	for pat.Kind == PatternVariable {
		next := pat.Variable.WithGeneration(pat.Variable.Generation(b.Generation()))
		if next.Equal(cur) {
			break
		}
		nextPat, found := b.vars.Get(next.key(next.gen))
		if !found {
			break
		}
		cur, pat = next, nextPat
	}
	return pat, true
}

// set inserts var ↦ pat, resolving var's generation against b's current
// generation. The caller must guarantee occurs-check has already been
// done (spec.md §4.2).
func (b *Binding) set(v Variable, pat *Pattern) *Binding {
	gen := v.Generation(b.Generation())
	nb := b.clone()
	txn := nb.vars.Txn()
	txn.Insert(v.WithGeneration(gen).key(gen), pat)
	nb.vars = txn.Commit()
	return nb
}

// Bind is the external set-by-name used only by Question to pre-bind
// inputs (spec.md §4.2).
func (b *Binding) Bind(name string, value *Value) (*Binding, error) {
	gen := b.Generation()
	v := NewVariable(NewIdentifier(name)).WithGeneration(gen)
	if _, ok := b.Get(v); !ok {
		return nil, NewError(KindBinding, "no such top-level variable %q", name)
	}
	return b.set(v, valueToPattern(value)), nil
}

// StartGeneration pushes a new generation, materializes variables
// appearing in destination (and, optionally, body) in that generation,
// then unifies source[i] (in the previous generation) with
// destination[i] (in the new generation), pairwise (spec.md §4.2). This
// is how a caller passes arguments into a rule. Returns the extended
// binding, or ok=false if any pair fails to unify.
func (b *Binding) StartGeneration(body *Body, source, destination []*Pattern) (*Binding, bool) {
	gen := b.next
	nb := b.clone()
	nb.generations = append(nb.generations, gen)
	nb.next++

	txn := nb.vars.Txn()
	materialize := func(p *Pattern) {
		for _, v := range p.Variables(gen) {
			key := v.key(gen)
			if _, ok := txn.Get(key); !ok {
				txn.Insert(key, VariablePattern(v))
			}
		}
	}
	for _, p := range destination {
		materialize(p)
	}
	if body != nil {
		for _, v := range body.Variables(gen) {
			key := v.key(gen)
			if _, ok := txn.Get(key); !ok {
				txn.Insert(key, VariablePattern(v))
			}
		}
	}
	nb.vars = txn.Commit()

	extended, success := unifyPairwise(source, destination, nb.PrevGeneration(), gen, nb)
	if !success {
		return nil, false
	}
	return extended, true
}

// EndGeneration pops the current generation. Variables of the popped
// generation remain reachable (their values may be needed to
// reconstruct the caller's view), but new references to them are not
// created after this call (spec.md §4.2).
func (b *Binding) EndGeneration() *Binding {
	nb := b.clone()
	nb.generations = nb.generations[:len(nb.generations)-1]
	return nb
}

// Apply fully dereferences p under b, recursively, flattening list/record
// tails when they resolve to list/record patterns and preserving unbound
// variables as such (spec.md §4.1). Apply is idempotent.
func (b *Binding) Apply(p *Pattern) (*Pattern, error) {
	if p == nil {
		return nil, nil
	}
	switch p.Kind {
	case PatternVariable:
		gen := p.Variable.Generation(b.Generation())
		v := p.Variable.WithGeneration(gen)
		pat, ok := b.Get(v)
		if !ok {
			return nil, NewError(KindBinding, "variable %s is not relevant to this binding", v)
		}
		if pat.Kind == PatternVariable && pat.Variable.Equal(v) {
			return VariablePattern(v), nil
		}
		return b.Apply(pat)
	case PatternList:
		elems := make([]*Pattern, 0, len(p.ListElems))
		for _, e := range p.ListElems {
			ae, err := b.Apply(e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, ae)
		}
		var tail *Pattern
		if p.ListTail != nil {
			at, err := b.Apply(p.ListTail)
			if err != nil {
				return nil, err
			}
			switch {
			case at.Kind == PatternList:
				elems = append(elems, at.ListElems...)
				tail = at.ListTail
			case at.Kind == PatternVariable:
				tail = at
			default:
				return nil, NewError(KindBinding, "a list tail resolved to a non-list, non-variable pattern")
			}
		}
		return ListPattern(elems, tail), nil
	case PatternRecord:
		order := make([]Atom, 0, len(p.RecordFields.Order))
		values := make(map[Atom]*Pattern, len(p.RecordFields.ByKey))
		for _, k := range p.RecordFields.Order {
			av, err := b.Apply(p.RecordFields.ByKey[k])
			if err != nil {
				return nil, err
			}
			order = append(order, k)
			values[k] = av
		}
		var tail *Pattern
		if p.RecordTail != nil {
			at, err := b.Apply(p.RecordTail)
			if err != nil {
				return nil, err
			}
			switch {
			case at.Kind == PatternRecord:
				for _, k := range at.RecordFields.Order {
					order = append(order, k)
					values[k] = at.RecordFields.ByKey[k]
				}
				tail = at.RecordTail
			case at.Kind == PatternVariable:
				tail = at
			default:
				return nil, NewError(KindBinding, "a record tail resolved to a non-record, non-variable pattern")
			}
		}
		return RecordPattern(NewFields(order, values), tail), nil
	case PatternStruct:
		var contents *Pattern
		if p.Struct.Contents != nil {
			ac, err := b.Apply(p.Struct.Contents)
			if err != nil {
				return nil, err
			}
			contents = ac
		}
		return StructPattern(p.Struct.Name, contents), nil
	case PatternAll:
		children := make([]*Pattern, 0, len(p.AllChildren))
		for _, c := range p.AllChildren {
			ac, err := b.Apply(c)
			if err != nil {
				return nil, err
			}
			children = append(children, ac)
		}
		return AllPattern(children), nil
	default: // Literal, Any, Bound, Unbound are self-contained
		return p, nil
	}
}

// Extract applies p then coerces the result to an external Value,
// returning (nil, nil) when the pattern is still unbound at a required
// position (spec.md §4.1).
func (b *Binding) Extract(p *Pattern) (*Value, error) {
	applied, err := b.Apply(p)
	if err != nil {
		return nil, err
	}
	return patternToValue(applied), nil
}

// Answer projects b onto the question's visible (non-wildcard) variable
// names, per spec.md §6 "Question::answer".
func (b *Binding) Answer(names []string) (map[string]*Value, error) {
	out := make(map[string]*Value, len(names))
	for _, name := range names {
		id := NewIdentifier(name)
		if id.IsWildcard() {
			continue
		}
		v := NewVariable(id).WithGeneration(0)
		pat, ok := b.Get(v)
		if !ok {
			return nil, NewError(KindBinding, "answer variable %q is not part of this binding", name)
		}
		val, err := b.Extract(pat)
		if err != nil {
			return nil, err
		}
		out[name] = val
	}
	return out, nil
}
