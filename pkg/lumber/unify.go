package lumber

// unify implements the sixteen-case unification algorithm of spec.md
// §4.3. lhs is evaluated at generation lg, rhs at generation rg, against
// input binding b; it returns an extended binding, or ok=false on
// failure. A mismatch never raises: every "no match" path returns
// ok=false, which the search driver turns into "no further solutions
// for this alternative" (spec.md §4.3 "Error mode").
func unify(lhs, rhs *Pattern, lg, rg Generation, b *Binding) (*Binding, bool) {
	_, nb, ok := unifyInner(lhs, rhs, lg, rg, b)
	return nb, ok
}

// unifyInner additionally returns the unified result pattern, needed by
// callers that recurse structurally (Struct contents, list/record
// elements, All) and must reassemble a result.
func unifyInner(lhs, rhs *Pattern, lg, rg Generation, b *Binding) (*Pattern, *Binding, bool) {
	// Case 1: All on either side.
	if rhs.Kind == PatternAll && lhs.Kind != PatternAll {
		return unifyInner(rhs, lhs, rg, lg, b)
	}
	if lhs.Kind == PatternAll {
		cur := rhs
		curGen := rg
		curB := b
		for _, child := range lhs.AllChildren {
			res, nb, ok := unifyInner(child, cur, lg, curGen, curB)
			if !ok {
				return nil, nil, false
			}
			cur, curB = res, nb
			curGen = lg // the accumulated result now lives conceptually at lg's frame
		}
		return cur, curB, true
	}

	// Variable handling (cases 2-6, plus Bound/Unbound vs variable in 4-5).
	if lhs.Kind == PatternVariable && rhs.Kind == PatternVariable {
		return unifyVarVar(lhs.Variable, rhs.Variable, lg, rg, b)
	}
	if rhs.Kind == PatternVariable && lhs.Kind != PatternVariable {
		return unifyVarOther(rhs.Variable, rg, lhs, lg, b)
	}
	if lhs.Kind == PatternVariable {
		return unifyVarOther(lhs.Variable, lg, rhs, rg, b)
	}

	switch {
	// Case 7: Any vs Any.
	case lhs.Kind == PatternAny && rhs.Kind == PatternAny:
		if lhs.Any.Equal(rhs.Any) {
			return lhs, b, true
		}
		return nil, nil, false

	// Case 15: Unbound vs Unbound.
	case lhs.Kind == PatternUnbound && rhs.Kind == PatternUnbound:
		return lhs, b, true

	// Case 14: Bound vs non-variable (either side).
	case rhs.Kind == PatternBound:
		return lhs, b, true
	case lhs.Kind == PatternBound:
		return rhs, b, true

	// Case 8: Literal vs Literal.
	case lhs.Kind == PatternLiteral && rhs.Kind == PatternLiteral:
		if lhs.Literal.Equal(rhs.Literal) {
			return lhs, b, true
		}
		return nil, nil, false

	// Case 9: Struct vs Struct.
	case lhs.Kind == PatternStruct && rhs.Kind == PatternStruct:
		return unifyStruct(lhs, rhs, lg, rg, b)

	// Cases 10-12: List vs List.
	case lhs.Kind == PatternList && rhs.Kind == PatternList:
		return unifyList(lhs, rhs, lg, rg, b)

	// Case 13: Record vs Record.
	case lhs.Kind == PatternRecord && rhs.Kind == PatternRecord:
		return unifyRecord(lhs, rhs, lg, rg, b)

	default:
		// Case 16: any other combination fails. This also covers Unbound
		// vs a bound-kind pattern (Literal/Struct/List/Record/Any), which
		// is correctly a failure since Unbound only matches unbound
		// variables and was already routed through unifyVarOther when
		// paired with a Variable.
		return nil, nil, false
	}
}

// unifyPairwise unifies each lhs[i] against rhs[i] in turn, threading the
// binding, failing fast. Used to pass arguments into a clause activation
// and to project a clause's result back onto the caller (spec.md §4.2,
// §4.5).
func unifyPairwise(lhs, rhs []*Pattern, lg, rg Generation, b *Binding) (*Binding, bool) {
	cur := b
	for i := range lhs {
		nb, ok := unify(lhs[i], rhs[i], lg, rg, cur)
		if !ok {
			return nil, false
		}
		cur = nb
	}
	return cur, true
}

// unifyVarVar implements cases 2 and 3.
func unifyVarVar(lv, rv Variable, lg, rg Generation, b *Binding) (*Pattern, *Binding, bool) {
	lv = lv.WithGeneration(lv.Generation(lg))
	rv = rv.WithGeneration(rv.Generation(rg))

	// Case 2: same resolved variable.
	if lv.Equal(rv) {
		return VariablePattern(lv), b, true
	}

	// Case 3: distinct variables.
	lPat, _ := b.Get(lv)
	rPat, _ := b.Get(rv)

	var result *Pattern
	nb := b
	if lPat.Kind == PatternVariable && rPat.Kind == PatternVariable {
		result = VariablePattern(Min(lPat.Variable, rPat.Variable))
	} else {
		res, bb, ok := unifyInner(lPat, rPat, lg, rg, b)
		if !ok {
			return nil, nil, false
		}
		result, nb = res, bb
	}

	min, max := Min(lv, rv), Max(lv, rv)
	nb = nb.set(min, result)
	nb = nb.set(max, VariablePattern(min))
	return result, nb, true
}

// unifyVarOther implements cases 4, 5, 6 (variable paired with a
// non-variable pattern, including Bound and Unbound on the "other"
// side).
func unifyVarOther(v Variable, vg Generation, other *Pattern, og Generation, b *Binding) (*Pattern, *Binding, bool) {
	v = v.WithGeneration(v.Generation(vg))
	deref, _ := b.Get(v)

	switch other.Kind {
	case PatternBound:
		// Case 4: succeed iff the variable dereferences to a non-variable.
		if deref.Kind == PatternVariable {
			return nil, nil, false
		}
		return deref, b, true
	case PatternUnbound:
		// Case 5: succeed iff the variable is still unbound.
		if deref.Kind == PatternVariable && deref.Variable.Equal(v) {
			return deref, b, true
		}
		return nil, nil, false
	}

	// Case 6: variable vs a concrete pattern.
	if deref.Kind == PatternVariable && deref.Variable.Equal(v) {
		for _, occurred := range other.Variables(og) {
			if v.Equal(occurred) {
				return nil, nil, false // occurs check
			}
		}
		nb := b.set(v, other)
		return other, nb, true
	}
	return unifyInner(deref, other, vg, og, b)
}

func unifyStruct(lhs, rhs *Pattern, lg, rg Generation, b *Binding) (*Pattern, *Binding, bool) {
	if !lhs.Struct.Name.Equal(rhs.Struct.Name) {
		return nil, nil, false
	}
	if lhs.Struct.Contents == nil && rhs.Struct.Contents == nil {
		return lhs, b, true
	}
	if lhs.Struct.Contents == nil || rhs.Struct.Contents == nil {
		return nil, nil, false
	}
	contents, nb, ok := unifyInner(lhs.Struct.Contents, rhs.Struct.Contents, lg, rg, b)
	if !ok {
		return nil, nil, false
	}
	return StructPattern(lhs.Struct.Name, contents), nb, true
}

// unifySequence pairwise-unifies two pattern slices of equal length,
// failing fast (and failing outright if the lengths differ); list
// unification calls it on the common prefix it has already sliced out.
func unifySequence(lhs, rhs []*Pattern, lg, rg Generation, b *Binding) ([]*Pattern, *Binding, bool) {
	if len(lhs) != len(rhs) {
		return nil, nil, false
	}
	out := make([]*Pattern, len(lhs))
	cur := b
	for i := range lhs {
		res, nb, ok := unifyInner(lhs[i], rhs[i], lg, rg, cur)
		if !ok {
			return nil, nil, false
		}
		out[i] = res
		cur = nb
	}
	return out, cur, true
}

func unifyList(lhs, rhs *Pattern, lg, rg Generation, b *Binding) (*Pattern, *Binding, bool) {
	// Case 10: both closed.
	if lhs.ListTail == nil && rhs.ListTail == nil {
		fields, nb, ok := unifySequence(lhs.ListElems, rhs.ListElems, lg, rg, b)
		if !ok {
			return nil, nil, false
		}
		return ListPattern(fields, nil), nb, true
	}
	// Case 11: exactly one side open — normalize to lhs open.
	if lhs.ListTail == nil {
		return unifyList(rhs, lhs, rg, lg, b)
	}
	if rhs.ListTail == nil {
		k := len(lhs.ListElems)
		if k > len(rhs.ListElems) {
			return nil, nil, false
		}
		prefix, nb, ok := unifySequence(lhs.ListElems, rhs.ListElems[:k], lg, rg, b)
		if !ok {
			return nil, nil, false
		}
		remainder := ListPattern(append([]*Pattern{}, rhs.ListElems[k:]...), nil)
		tailResult, nb2, ok := unifyInner(lhs.ListTail, remainder, lg, rg, nb)
		if !ok {
			return nil, nil, false
		}
		full := append(append([]*Pattern{}, prefix...), rhs.ListElems[k:]...)
		_ = tailResult
		return ListPattern(full, nil), nb2, true
	}
	// Case 12: both open.
	k := len(lhs.ListElems)
	if len(rhs.ListElems) < k {
		k = len(rhs.ListElems)
	}
	prefix, nb, ok := unifySequence(lhs.ListElems[:k], rhs.ListElems[:k], lg, rg, b)
	if !ok {
		return nil, nil, false
	}
	var longerRest []*Pattern
	var longerTail *Pattern
	var shorterTail *Pattern
	if len(lhs.ListElems) >= len(rhs.ListElems) {
		longerRest, longerTail, shorterTail = lhs.ListElems[k:], lhs.ListTail, rhs.ListTail
	} else {
		longerRest, longerTail, shorterTail = rhs.ListElems[k:], rhs.ListTail, lhs.ListTail
	}
	remainder := ListPattern(append([]*Pattern{}, longerRest...), longerTail)
	tailResult, nb2, ok := unifyInner(shorterTail, remainder, lg, rg, nb)
	if !ok {
		return nil, nil, false
	}
	full := append(append([]*Pattern{}, prefix...), longerRest...)
	return ListPattern(full, tailResult), nb2, true
}

func unifyRecord(lhs, rhs *Pattern, lg, rg Generation, b *Binding) (*Pattern, *Binding, bool) {
	// Both closed: require equal key sets.
	if lhs.RecordTail == nil && rhs.RecordTail == nil {
		if len(lhs.RecordFields.Order) != len(rhs.RecordFields.Order) {
			return nil, nil, false
		}
		order := make([]Atom, 0, len(lhs.RecordFields.Order))
		values := make(map[Atom]*Pattern, len(lhs.RecordFields.Order))
		cur := b
		for _, k := range lhs.RecordFields.Order {
			rv, ok := rhs.RecordFields.ByKey[k]
			if !ok {
				return nil, nil, false
			}
			res, nb, ok := unifyInner(lhs.RecordFields.ByKey[k], rv, lg, rg, cur)
			if !ok {
				return nil, nil, false
			}
			order = append(order, k)
			values[k] = res
			cur = nb
		}
		return RecordPattern(NewFields(order, values), nil), cur, true
	}
	// Exactly one open — the open side's keys must be a subset of the closed side's.
	if lhs.RecordTail == nil {
		return unifyRecord(rhs, lhs, rg, lg, b)
	}
	if rhs.RecordTail == nil {
		order := make([]Atom, 0, len(rhs.RecordFields.Order))
		values := make(map[Atom]*Pattern, len(rhs.RecordFields.Order))
		cur := b
		for _, k := range lhs.RecordFields.Order {
			rv, ok := rhs.RecordFields.ByKey[k]
			if !ok {
				return nil, nil, false
			}
			res, nb, ok := unifyInner(lhs.RecordFields.ByKey[k], rv, lg, rg, cur)
			if !ok {
				return nil, nil, false
			}
			order = append(order, k)
			values[k] = res
			cur = nb
		}
		exclusive := make([]Atom, 0)
		exclusiveVals := make(map[Atom]*Pattern)
		for _, k := range rhs.RecordFields.Order {
			if _, used := values[k]; !used {
				exclusive = append(exclusive, k)
				exclusiveVals[k] = rhs.RecordFields.ByKey[k]
			}
		}
		remainder := RecordPattern(NewFields(exclusive, exclusiveVals), nil)
		_, nb2, ok := unifyInner(lhs.RecordTail, remainder, lg, rg, cur)
		if !ok {
			return nil, nil, false
		}
		for _, k := range exclusive {
			order = append(order, k)
			values[k] = exclusiveVals[k]
		}
		return RecordPattern(NewFields(order, values), nil), nb2, true
	}
	// Both open: key-wise intersection unifies; each side's tail unifies
	// with an open record formed from the other side's exclusive keys
	// plus a fresh shared tail variable.
	order := make([]Atom, 0)
	values := make(map[Atom]*Pattern)
	cur := b
	lhsExclusive := make([]Atom, 0)
	for _, k := range lhs.RecordFields.Order {
		if rv, ok := rhs.RecordFields.ByKey[k]; ok {
			res, nb, ok := unifyInner(lhs.RecordFields.ByKey[k], rv, lg, rg, cur)
			if !ok {
				return nil, nil, false
			}
			order = append(order, k)
			values[k] = res
			cur = nb
		} else {
			lhsExclusive = append(lhsExclusive, k)
		}
	}
	rhsExclusive := make([]Atom, 0)
	for _, k := range rhs.RecordFields.Order {
		if _, ok := lhs.RecordFields.ByKey[k]; !ok {
			rhsExclusive = append(rhsExclusive, k)
		}
	}

	sharedTail, nb := cur.FreshVariable()
	sharedTailPat := VariablePattern(sharedTail)

	lhsExclusiveVals := make(map[Atom]*Pattern)
	for _, k := range lhsExclusive {
		lhsExclusiveVals[k] = lhs.RecordFields.ByKey[k]
	}
	rhsRemainder := RecordPattern(NewFields(lhsExclusive, lhsExclusiveVals), sharedTailPat)
	_, nb, ok := unifyInner(rhs.RecordTail, rhsRemainder, rg, lg, nb)
	if !ok {
		return nil, nil, false
	}

	rhsExclusiveVals := make(map[Atom]*Pattern)
	for _, k := range rhsExclusive {
		rhsExclusiveVals[k] = rhs.RecordFields.ByKey[k]
	}
	lhsRemainder := RecordPattern(NewFields(rhsExclusive, rhsExclusiveVals), sharedTailPat)
	_, nb, ok = unifyInner(lhs.RecordTail, lhsRemainder, lg, rg, nb)
	if !ok {
		return nil, nil, false
	}

	for _, k := range lhsExclusive {
		order = append(order, k)
		values[k] = lhsExclusiveVals[k]
	}
	for _, k := range rhsExclusive {
		order = append(order, k)
		values[k] = rhsExclusiveVals[k]
	}
	return RecordPattern(NewFields(order, values), sharedTailPat), nb, true
}
