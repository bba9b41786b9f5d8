package lumber

import "context"

// ExpressionKind discriminates the Expression union of spec.md §4.4.
type ExpressionKind uint8

const (
	// ExprTerm is a raw value term: the pattern is returned directly.
	ExprTerm ExpressionKind = iota
	// ExprOperator is an operator application, resolved at compile time
	// to a Handle; evaluating it emits a synthetic query.
	ExprOperator
	// ExprAggregateList collects all solutions of a sub-body into a
	// list, projecting each one through a pattern (spec.md §4.4).
	ExprAggregateList
	// ExprAggregateSet is the set-like aggregation of spec.md §9's Open
	// Questions; duplicates are removed and the result is sorted into a canonical
	// order over Pattern.String() so that equal sets produce identical
	// lists regardless of solution order.
	ExprAggregateSet
)

// Expression is a sequence of operator atoms and terms, pre-resolved by
// the (out-of-scope) operator-precedence climber into the tree shape
// spec.md §4.4 and §9 settle on as the single interpretation.
type Expression struct {
	Kind ExpressionKind

	Term *Pattern // ExprTerm

	OpHandle Handle        // ExprOperator
	OpArgs   []*Expression // ExprOperator

	AggPattern *Pattern // ExprAggregateList / ExprAggregateSet
	AggBody    *Body    // ExprAggregateList / ExprAggregateSet
}

// TermExpr wraps a raw pattern as an Expression.
func TermExpr(p *Pattern) *Expression { return &Expression{Kind: ExprTerm, Term: p} }

// OperatorExpr builds an operator-application Expression.
func OperatorExpr(handle Handle, args ...*Expression) *Expression {
	return &Expression{Kind: ExprOperator, OpHandle: handle, OpArgs: args}
}

// AggregateListExpr builds a list-aggregation Expression: "[pattern : body]".
func AggregateListExpr(pattern *Pattern, body *Body) *Expression {
	return &Expression{Kind: ExprAggregateList, AggPattern: pattern, AggBody: body}
}

// AggregateSetExpr builds a set-aggregation Expression: "{pattern : body}".
func AggregateSetExpr(pattern *Pattern, body *Body) *Expression {
	return &Expression{Kind: ExprAggregateSet, AggPattern: pattern, AggBody: body}
}

// Variables returns every variable occurring in the expression.
func (e *Expression) Variables(g Generation) []Variable {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ExprTerm:
		return e.Term.Variables(g)
	case ExprOperator:
		var out []Variable
		for _, a := range e.OpArgs {
			out = append(out, a.Variables(g)...)
		}
		return out
	case ExprAggregateList, ExprAggregateSet:
		out := e.AggPattern.Variables(g)
		return append(out, e.AggBody.Variables(g)...)
	}
	return nil
}

// Evaluate converts e to a Pattern against binding b (spec.md §4.4).
// Evaluation order within an expression is left to right; operator
// arguments are evaluated before the synthetic query that combines
// them, so dependency order follows the expression tree's shape.
//
// Evaluating an operator application or an aggregation may itself
// invoke the search driver (d), which is how the full resolution
// machinery — including native predicates and recursion — becomes
// available to expression evaluation (spec.md §4.4).
func (e *Expression) Evaluate(ctx context.Context, d *Driver, b *Binding) (*Pattern, *Binding, error) {
	switch e.Kind {
	case ExprTerm:
		return e.Term, b, nil

	case ExprOperator:
		argPatterns := make([]*Pattern, 0, len(e.OpArgs)+1)
		cur := b
		for _, a := range e.OpArgs {
			p, nb, err := a.Evaluate(ctx, d, cur)
			if err != nil {
				return nil, nil, err
			}
			argPatterns = append(argPatterns, p)
			cur = nb
		}
		result, cur := cur.FreshVariable()
		resultPat := VariablePattern(result)
		argPatterns = append(argPatterns, resultPat)

		q := &Query{Handle: e.OpHandle, Args: wrapTerms(argPatterns)}
		sols := d.solveQuery(ctx, q, cur)
		sol, more := sols.Next(ctx)
		sols.Close()
		if !more {
			return nil, nil, NewError(KindRuntime, "operator %s produced no result", e.OpHandle)
		}
		if sol.failed() {
			return nil, nil, sol.Err
		}
		return resultPat, sol.Binding, nil

	case ExprAggregateList, ExprAggregateSet:
		sols := d.Solve(ctx, e.AggBody, b)
		var results []*Pattern
		for {
			sol, more := sols.Next(ctx)
			if !more {
				break
			}
			if sol.failed() {
				sols.Close()
				return nil, nil, sol.Err
			}
			projected, err := sol.Binding.Apply(e.AggPattern)
			if err != nil {
				sols.Close()
				return nil, nil, err
			}
			results = append(results, projected)
		}
		if e.Kind == ExprAggregateSet {
			results = canonicalizeSet(results)
		}
		return ListPattern(results, nil), b, nil
	}
	return nil, nil, NewError(KindRuntime, "invalid expression kind")
}

func wrapTerms(ps []*Pattern) []*Expression {
	out := make([]*Expression, len(ps))
	for i, p := range ps {
		out[i] = TermExpr(p)
	}
	return out
}

// canonicalizeSet removes duplicates (by structural string form) and
// sorts into a canonical order, per spec.md §9's resolution of the set
// aggregation Open Question: "unify sets modulo duplicates and order
// with a canonical sorted representation".
func canonicalizeSet(in []*Pattern) []*Pattern {
	seen := make(map[string]bool, len(in))
	out := make([]*Pattern, 0, len(in))
	for _, p := range in {
		key := p.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && out[j-1].String() > out[j].String() {
			out[j-1], out[j] = out[j], out[j-1]
			j--
		}
	}
	return out
}
