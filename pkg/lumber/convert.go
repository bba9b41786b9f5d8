package lumber

// valueToPattern lifts a host Value into a ground Pattern, used when
// pre-binding a Question's inputs and when re-unifying a native
// predicate's returned tuples against their argument patterns.
func valueToPattern(v *Value) *Pattern {
	if v == nil {
		return UnboundPattern()
	}
	switch v.kind {
	case valueLiteral:
		return LiteralPattern(v.lit)
	case valueAtom:
		return AtomPattern(v.atom)
	case valueList:
		elems := make([]*Pattern, len(v.list))
		for i, e := range v.list {
			elems[i] = valueToPattern(e)
		}
		return ListPattern(elems, nil)
	case valueRecord:
		values := make(map[Atom]*Pattern, len(v.rec))
		order := make([]Atom, 0, len(v.recOrder))
		for _, k := range v.recOrder {
			a := Intern(k)
			order = append(order, a)
			values[a] = valueToPattern(v.rec[k])
		}
		return RecordPattern(NewFields(order, values), nil)
	case valueStruct:
		var contents *Pattern
		if v.structVal != nil {
			contents = valueToPattern(v.structVal)
		}
		return StructPattern(v.structName, contents)
	case valueAny:
		return AnyPattern(v.any)
	}
	return UnboundPattern()
}

// patternToValue coerces a fully-applied Pattern to the external Value
// surface, returning nil when the pattern is still an unbound variable
// (spec.md §4.1's "extract... returns None when the pattern is still
// unbound at a required position").
func patternToValue(p *Pattern) *Value {
	if p == nil {
		return nil
	}
	switch p.Kind {
	case PatternVariable, PatternUnbound, PatternBound, PatternAll:
		return nil
	case PatternLiteral:
		return NewLiteralValue(p.Literal)
	case PatternStruct:
		if p.Struct.Contents == nil {
			return NewAtomValue(p.Struct.Name)
		}
		return NewStructValue(p.Struct.Name, patternToValue(p.Struct.Contents))
	case PatternList:
		if p.ListTail != nil {
			// Apply already flattens a tail that resolved to a list, so a
			// non-nil tail here is an unresolved variable: the list isn't
			// fully ground, so the position as a whole is unbound.
			return nil
		}
		elems := make([]*Value, len(p.ListElems))
		for i, e := range p.ListElems {
			elems[i] = patternToValue(e)
		}
		return NewListValue(elems)
	case PatternRecord:
		if p.RecordTail != nil {
			return nil
		}
		order := make([]string, 0, len(p.RecordFields.Order))
		values := make(map[string]*Value, len(p.RecordFields.Order))
		for _, k := range p.RecordFields.Order {
			order = append(order, k.String())
			values[k.String()] = patternToValue(p.RecordFields.ByKey[k])
		}
		return NewRecordValue(order, values)
	case PatternAny:
		return NewAnyValue(p.Any)
	}
	return nil
}
