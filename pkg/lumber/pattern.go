package lumber

// PatternKind discriminates the union of pattern constructors in
// spec.md §3.
type PatternKind uint8

const (
	PatternVariable PatternKind = iota
	PatternLiteral
	PatternStruct
	PatternList
	PatternRecord
	PatternAny
	PatternBound
	PatternUnbound
	PatternAll
)

// Struct is the zero-or-one-content named container of spec.md §3; an
// atom is the zero-content case (Contents == nil).
type Struct struct {
	Name     Atom
	Contents *Pattern
}

// Fields is an ordered map<Atom,Pattern> for Record patterns. Order is
// preserved because it determines display order; unification never
// depends on field order, only on the key set.
type Fields struct {
	Order []Atom
	ByKey map[Atom]*Pattern
}

// NewFields builds a Fields from parallel key/value slices.
func NewFields(order []Atom, values map[Atom]*Pattern) Fields {
	return Fields{Order: order, ByKey: values}
}

// Pattern is the persistent, immutable algebraic value/pattern tree of
// spec.md §3. The zero value is not meaningful; construct with the
// New*Pattern helpers.
type Pattern struct {
	Kind PatternKind

	Variable Variable // PatternVariable
	Literal  Literal  // PatternLiteral
	Struct   Struct   // PatternStruct

	ListElems []*Pattern // PatternList
	ListTail  *Pattern   // PatternList, nil => closed

	RecordFields Fields   // PatternRecord
	RecordTail   *Pattern // PatternRecord, nil => closed

	Any Any // PatternAny

	AllChildren []*Pattern // PatternAll
}

func VariablePattern(v Variable) *Pattern { return &Pattern{Kind: PatternVariable, Variable: v} }
func LiteralPattern(l Literal) *Pattern   { return &Pattern{Kind: PatternLiteral, Literal: l} }
func StructPattern(name Atom, contents *Pattern) *Pattern {
	return &Pattern{Kind: PatternStruct, Struct: Struct{Name: name, Contents: contents}}
}
func AtomPattern(name Atom) *Pattern { return StructPattern(name, nil) }
func ListPattern(elems []*Pattern, tail *Pattern) *Pattern {
	return &Pattern{Kind: PatternList, ListElems: elems, ListTail: tail}
}
func RecordPattern(fields Fields, tail *Pattern) *Pattern {
	return &Pattern{Kind: PatternRecord, RecordFields: fields, RecordTail: tail}
}
func AnyPattern(a Any) *Pattern { return &Pattern{Kind: PatternAny, Any: a} }

// BoundPattern matches any already-bound term (spec.md §3).
func BoundPattern() *Pattern { return &Pattern{Kind: PatternBound} }

// UnboundPattern matches only an unbound variable (spec.md §3).
func UnboundPattern() *Pattern { return &Pattern{Kind: PatternUnbound} }

// AllPattern is the conjunction-of-patterns leaf: all children must
// unify at the same position (spec.md §3).
func AllPattern(children []*Pattern) *Pattern {
	return &Pattern{Kind: PatternAll, AllChildren: children}
}

// Equal is structural equality, except for PatternAny which is
// identity-based (spec.md §3).
func (p *Pattern) Equal(o *Pattern) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.Kind != o.Kind {
		return false
	}
	switch p.Kind {
	case PatternVariable:
		return p.Variable.Equal(o.Variable)
	case PatternLiteral:
		return p.Literal.Equal(o.Literal)
	case PatternStruct:
		if !p.Struct.Name.Equal(o.Struct.Name) {
			return false
		}
		return p.Struct.Contents.Equal(o.Struct.Contents)
	case PatternList:
		if len(p.ListElems) != len(o.ListElems) {
			return false
		}
		for i := range p.ListElems {
			if !p.ListElems[i].Equal(o.ListElems[i]) {
				return false
			}
		}
		return p.ListTail.Equal(o.ListTail)
	case PatternRecord:
		if len(p.RecordFields.Order) != len(o.RecordFields.Order) {
			return false
		}
		for k, v := range p.RecordFields.ByKey {
			ov, ok := o.RecordFields.ByKey[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return p.RecordTail.Equal(o.RecordTail)
	case PatternAny:
		return p.Any.Equal(o.Any)
	case PatternBound, PatternUnbound:
		return true
	case PatternAll:
		if len(p.AllChildren) != len(o.AllChildren) {
			return false
		}
		for i := range p.AllChildren {
			if !p.AllChildren[i].Equal(o.AllChildren[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Variables returns every variable occurrence in p, each resolved to
// generation g unless it already carries one (spec.md §4.1).
func (p *Pattern) Variables(g Generation) []Variable {
	var out []Variable
	p.collectVariables(g, &out)
	return out
}

func (p *Pattern) collectVariables(g Generation, out *[]Variable) {
	if p == nil {
		return
	}
	switch p.Kind {
	case PatternVariable:
		*out = append(*out, p.Variable.WithGeneration(p.Variable.Generation(g)))
	case PatternStruct:
		p.Struct.Contents.collectVariables(g, out)
	case PatternList:
		for _, e := range p.ListElems {
			e.collectVariables(g, out)
		}
		p.ListTail.collectVariables(g, out)
	case PatternRecord:
		for _, k := range p.RecordFields.Order {
			p.RecordFields.ByKey[k].collectVariables(g, out)
		}
		p.RecordTail.collectVariables(g, out)
	case PatternAll:
		for _, c := range p.AllChildren {
			c.collectVariables(g, out)
		}
	}
}

// String renders the pattern for debugging.
func (p *Pattern) String() string {
	if p == nil {
		return "<nil pattern>"
	}
	switch p.Kind {
	case PatternVariable:
		return p.Variable.String()
	case PatternLiteral:
		return p.Literal.String()
	case PatternStruct:
		if p.Struct.Contents == nil {
			return p.Struct.Name.String()
		}
		return p.Struct.Name.String() + "(" + p.Struct.Contents.String() + ")"
	case PatternList:
		s := "["
		for i, e := range p.ListElems {
			if i > 0 {
				s += ", "
			}
			s += e.String()
		}
		if p.ListTail != nil {
			s += " | " + p.ListTail.String()
		}
		return s + "]"
	case PatternRecord:
		s := "{"
		for i, k := range p.RecordFields.Order {
			if i > 0 {
				s += ", "
			}
			s += k.String() + ": " + p.RecordFields.ByKey[k].String()
		}
		if p.RecordTail != nil {
			s += ", .." + p.RecordTail.String()
		}
		return s + "}"
	case PatternAny:
		return "<any>"
	case PatternBound:
		return "<bound>"
	case PatternUnbound:
		return "<unbound>"
	case PatternAll:
		s := "("
		for i, c := range p.AllChildren {
			if i > 0 {
				s += " & "
			}
			s += c.String()
		}
		return s + ")"
	}
	return "<invalid pattern>"
}
