package lumber

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// Literal is one of the three primitive scalar kinds of spec.md §3:
// arbitrary-precision integer, arbitrary-precision rational, or string.
// math/big is the standard library's arbitrary-precision facility; no
// third-party library in the example corpus provides arbitrary-precision
// rationals (see DESIGN.md), so Literal is grounded on math/big rather
// than on a pack dependency.
type Literal struct {
	kind literalKind
	i    *big.Int
	r    *big.Rat
	s    string
}

type literalKind uint8

const (
	literalInt literalKind = iota
	literalRat
	literalStr
)

// LiteralKind identifies which of the three scalar kinds a Literal holds.
type LiteralKind = literalKind

// Exported aliases of the scalar kinds, for callers outside this package
// (e.g. internal/natfn) that need to branch on Literal.Kind().
const (
	LiteralKindInt = literalInt
	LiteralKindRat = literalRat
	LiteralKindStr = literalStr
)

// Kind reports which scalar kind l holds.
func (l Literal) Kind() LiteralKind { return l.kind }

// Int returns l's integer value; only meaningful when Kind() == LiteralKindInt.
func (l Literal) Int() *big.Int { return l.i }

// Rat returns l's rational value; only meaningful when Kind() == LiteralKindRat.
func (l Literal) Rat() *big.Rat { return l.r }

// Str returns l's string value; only meaningful when Kind() == LiteralKindStr.
func (l Literal) Str() string { return l.s }

// IntLiteral builds an integer Literal.
func IntLiteral(i *big.Int) Literal { return Literal{kind: literalInt, i: i} }

// RatLiteral builds a rational Literal, canonicalized to lowest terms by
// big.Rat itself (mirroring the original's Literal::Rational invariant).
func RatLiteral(r *big.Rat) Literal { return Literal{kind: literalRat, r: r} }

// StrLiteral builds a string Literal.
func StrLiteral(s string) Literal { return Literal{kind: literalStr, s: s} }

// Equal compares two literals of possibly-different kinds. An integer and
// a rational with the same value do NOT compare equal — unification case
// 8 requires literals to match exactly, and the data model treats the two
// kinds as distinct.
func (l Literal) Equal(o Literal) bool {
	if l.kind != o.kind {
		return false
	}
	switch l.kind {
	case literalInt:
		return l.i.Cmp(o.i) == 0
	case literalRat:
		return l.r.Cmp(o.r) == 0
	case literalStr:
		return l.s == o.s
	}
	return false
}

// String renders the literal for display/hashing purposes.
func (l Literal) String() string {
	switch l.kind {
	case literalInt:
		return l.i.String()
	case literalRat:
		return l.r.RatString()
	case literalStr:
		return fmt.Sprintf("%q", l.s)
	}
	return "<invalid literal>"
}

// Any wraps an opaque host value. Equality and hashing are identity-based
// (spec.md §3); the UUID exists purely for diagnostics/log correlation
// (SPEC_FULL.md §2), never for unification.
type Any struct {
	id    uuid.UUID
	value interface{}
}

// NewAny wraps a host value as an opaque pattern leaf.
func NewAny(value interface{}) Any {
	return Any{id: uuid.New(), value: value}
}

// Value returns the wrapped host value.
func (a Any) Value() interface{} { return a.value }

// Equal is identity-based: two Any wrappers are equal iff they are the
// same wrapper (same UUID), never by comparing the wrapped values.
func (a Any) Equal(o Any) bool { return a.id == o.id }

// Value is the host-interchange surface named in spec.md §6: integers,
// rationals, strings, atoms, lists of optional values, records with
// string keys to optional values, structs, and opaque Any references.
type Value struct {
	kind valueKind
	lit  Literal
	atom Atom
	list []*Value // nil elements represent unbound positions
	rec  map[string]*Value
	recOrder []string
	structName Atom
	structVal  *Value
	any        Any
}

type valueKind uint8

const (
	valueLiteral valueKind = iota
	valueAtom
	valueList
	valueRecord
	valueStruct
	valueAny
)

// NewLiteralValue wraps a Literal as a Value.
func NewLiteralValue(l Literal) *Value { return &Value{kind: valueLiteral, lit: l} }

// NewAtomValue wraps an Atom as a Value.
func NewAtomValue(a Atom) *Value { return &Value{kind: valueAtom, atom: a} }

// NewListValue builds a list Value; a nil element denotes an unbound
// slot, per spec.md §6 "lists of optional values".
func NewListValue(elems []*Value) *Value { return &Value{kind: valueList, list: elems} }

// NewRecordValue builds a record Value from an ordered set of fields.
func NewRecordValue(order []string, fields map[string]*Value) *Value {
	return &Value{kind: valueRecord, rec: fields, recOrder: order}
}

// NewStructValue builds a struct Value; val may be nil for the
// zero-content (atom-like) case.
func NewStructValue(name Atom, val *Value) *Value {
	return &Value{kind: valueStruct, structName: name, structVal: val}
}

// NewAnyValue wraps an opaque host reference as a Value.
func NewAnyValue(a Any) *Value { return &Value{kind: valueAny, any: a} }

// IsAtom reports whether v is an atom value, and returns it.
func (v *Value) IsAtom() (Atom, bool) {
	if v != nil && v.kind == valueAtom {
		return v.atom, true
	}
	return Atom{}, false
}

// IsLiteral reports whether v is a literal value, and returns it.
func (v *Value) IsLiteral() (Literal, bool) {
	if v != nil && v.kind == valueLiteral {
		return v.lit, true
	}
	return Literal{}, false
}

// IsList reports whether v is a list value, and returns its elements.
func (v *Value) IsList() ([]*Value, bool) {
	if v != nil && v.kind == valueList {
		return v.list, true
	}
	return nil, false
}

// IsRecord reports whether v is a record value, returning its field
// order and map.
func (v *Value) IsRecord() ([]string, map[string]*Value, bool) {
	if v != nil && v.kind == valueRecord {
		return v.recOrder, v.rec, true
	}
	return nil, nil, false
}

// IsStruct reports whether v is a struct value, returning its name and
// (possibly nil) content.
func (v *Value) IsStruct() (Atom, *Value, bool) {
	if v != nil && v.kind == valueStruct {
		return v.structName, v.structVal, true
	}
	return Atom{}, nil, false
}

// IsAny reports whether v wraps an opaque host reference.
func (v *Value) IsAny() (Any, bool) {
	if v != nil && v.kind == valueAny {
		return v.any, true
	}
	return Any{}, false
}

// ValuesEqual reports whether two ground Values are structurally equal.
// It mirrors Pattern.Equal's case structure but operates on the
// host-interchange Value surface, for natives (eq/2, neq/2) that compare
// already-extracted values rather than live patterns.
func ValuesEqual(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case valueLiteral:
		return a.lit.Equal(b.lit)
	case valueAtom:
		return a.atom.Equal(b.atom)
	case valueList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !ValuesEqual(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case valueRecord:
		if len(a.recOrder) != len(b.recOrder) {
			return false
		}
		for _, k := range a.recOrder {
			bv, ok := b.rec[k]
			if !ok || !ValuesEqual(a.rec[k], bv) {
				return false
			}
		}
		return true
	case valueStruct:
		return a.structName.Equal(b.structName) && ValuesEqual(a.structVal, b.structVal)
	case valueAny:
		return a.any.Equal(b.any)
	}
	return false
}

// String renders the value for display/debugging.
func (v *Value) String() string {
	if v == nil {
		return "_"
	}
	switch v.kind {
	case valueLiteral:
		return v.lit.String()
	case valueAtom:
		return v.atom.String()
	case valueList:
		s := "["
		for i, e := range v.list {
			if i > 0 {
				s += ", "
			}
			s += e.String()
		}
		return s + "]"
	case valueRecord:
		s := "{"
		for i, k := range v.recOrder {
			if i > 0 {
				s += ", "
			}
			s += k + ": " + v.rec[k].String()
		}
		return s + "}"
	case valueStruct:
		if v.structVal == nil {
			return v.structName.String()
		}
		return v.structName.String() + "(" + v.structVal.String() + ")"
	case valueAny:
		return fmt.Sprintf("<any %v>", v.any.value)
	}
	return "<invalid value>"
}
