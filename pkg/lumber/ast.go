package lumber

// This file defines the rule-body grammar of spec.md §4.5:
//
//	Body = Disjunction
//	Disjunction = [Case]  where Case = Conjunction | (Conjunction ->> Conjunction)
//	Conjunction = [Procession]
//	Procession = [Step]
//	Step = Query | Unification | SubBody | Never

// Body wraps a Disjunction — the thing a Question poses and a clause's
// rule attaches.
type Body struct {
	Disjunction Disjunction
}

// Variables returns every variable occurring anywhere in the body,
// resolved to generation g unless already generation-pinned.
func (b *Body) Variables(g Generation) []Variable {
	var out []Variable
	for _, c := range b.Disjunction.Cases {
		out = append(out, c.Head.Variables(g)...)
		if c.Tail != nil {
			out = append(out, c.Tail.Variables(g)...)
		}
	}
	return out
}

// Case is one entry of a Disjunction: a plain Conjunction, or — when Tail
// is non-nil — a committed implication "Head ->> Tail" (spec.md §4.5).
type Case struct {
	Head Conjunction
	Tail *Conjunction
}

// Disjunction is the ordered list of cases tried left to right.
type Disjunction struct {
	Cases []Case
}

// Conjunction is a list of Processions folded left to right; a term's
// bindings feed the next, yielding the Cartesian product of the terms'
// solution streams in depth-first order (spec.md §4.5).
type Conjunction struct {
	Processions []Procession
}

// Variables returns every variable in the conjunction.
func (c Conjunction) Variables(g Generation) []Variable {
	var out []Variable
	for _, p := range c.Processions {
		out = append(out, p.Variables(g)...)
	}
	return out
}

// Procession is a Conjunction variant with cut between successive
// steps: it takes the first solution of its first step, runs the next
// step on it, and so on; backtracking into an earlier step is disabled
// once that step has first succeeded (spec.md §4.5).
type Procession struct {
	Steps []Step
}

// Variables returns every variable in the procession.
func (p Procession) Variables(g Generation) []Variable {
	var out []Variable
	for _, s := range p.Steps {
		out = append(out, s.Variables(g)...)
	}
	return out
}

// StepKind discriminates the Step union.
type StepKind uint8

const (
	StepQuery StepKind = iota
	StepUnification
	StepSubBody
	StepNever
)

// Step is one leaf of a rule body (spec.md §4.5).
type Step struct {
	Kind StepKind

	Query *Query // StepQuery

	UnifyLHS *Expression // StepUnification
	UnifyRHS *Expression // StepUnification

	SubBody *Body // StepSubBody
}

// Variables returns every variable in the step.
func (s Step) Variables(g Generation) []Variable {
	switch s.Kind {
	case StepQuery:
		return s.Query.Variables(g)
	case StepUnification:
		out := s.UnifyLHS.Variables(g)
		return append(out, s.UnifyRHS.Variables(g)...)
	case StepSubBody:
		return s.SubBody.Variables(g)
	default:
		return nil
	}
}

// QueryStep builds a Query step.
func QueryStep(q *Query) Step { return Step{Kind: StepQuery, Query: q} }

// UnificationStep builds a Unification step.
func UnificationStep(lhs, rhs *Expression) Step {
	return Step{Kind: StepUnification, UnifyLHS: lhs, UnifyRHS: rhs}
}

// SubBodyStep builds a SubBody step.
func SubBodyStep(b *Body) Step { return Step{Kind: StepSubBody, SubBody: b} }

// NeverStep builds the `!` sentinel / dead-branch marker step: immediate
// failure (spec.md §4.5).
func NeverStep() Step { return Step{Kind: StepNever} }

// Query is a predicate invocation: a Handle plus argument expressions
// (spec.md §4.5).
type Query struct {
	Handle Handle
	Args   []*Expression
}

// Variables returns every variable in the query's arguments.
func (q *Query) Variables(g Generation) []Variable {
	var out []Variable
	for _, a := range q.Args {
		out = append(out, a.Variables(g)...)
	}
	return out
}

// RuleKind distinguishes a Multi clause (yields every solution) from an
// Once clause (yields at most one, per spec.md §3/§8).
type RuleKind uint8

const (
	Multi RuleKind = iota
	Once
)

// Head is a clause's Handle plus parameter patterns.
type Head struct {
	Handle Handle
	Params []*Pattern
}

// Clause is one (Head, RuleKind, Option<Body>) entry of a Definition. A
// clause with a nil Body is a fact.
type Clause struct {
	Head Head
	Kind RuleKind
	Body *Body
}
