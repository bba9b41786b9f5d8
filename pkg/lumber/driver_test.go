package lumber

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumber-lang/lumber/internal/stream"
)

func fact(h Handle, params ...*Pattern) Clause {
	return Clause{Head: Head{Handle: h, Params: params}, Kind: Multi}
}

func queryBody(h Handle, args ...*Expression) *Body {
	return &Body{Disjunction: Disjunction{Cases: []Case{
		{Head: Conjunction{Processions: []Procession{
			{Steps: []Step{QueryStep(&Query{Handle: h, Args: args})}},
		}}},
	}}}
}

func termArgs(pats ...*Pattern) []*Expression {
	out := make([]*Expression, len(pats))
	for i, p := range pats {
		out[i] = TermExpr(p)
	}
	return out
}

func atomPat(s string) *Pattern { return AtomPattern(Intern(s)) }

func askAll(t *testing.T, db *Database, q *Question) []Answer {
	t.Helper()
	ctx := context.Background()
	sols := Ask(ctx, db, q)
	defer sols.Close()
	var out []Answer
	for {
		r, more := sols.Next(ctx)
		if !more {
			break
		}
		require.NoError(t, r.Err)
		out = append(out, r.Answer)
	}
	return out
}

// TestFactsAndVariableBinding is spec.md §8 scenario 1: a ground query
// against a fact database binds the query's variables.
func TestFactsAndVariableBinding(t *testing.T) {
	likes := NewHandle("likes", LenArity(2))
	db, err := BuildDatabase([]ModuleEntries{{
		Name: "test",
		Entries: []ModuleEntry{
			{Handle: likes, Entry: &DatabaseEntry{Public: true, Kind: DefStatic, Definition: &Definition{
				Clauses: []Clause{
					fact(likes, atomPat("alice"), atomPat("pizza")),
					fact(likes, atomPat("bob"), atomPat("burgers")),
				},
			}}},
		},
	}})
	require.NoError(t, err)

	body := queryBody(likes, termArgs(atomPat("alice"), var0("Food"))...)
	q := NewQuestion(body, []string{"Food"})
	answers := askAll(t, db, q)
	require.Len(t, answers, 1)
	atom, ok := answers[0]["Food"].IsAtom()
	require.True(t, ok)
	assert.Equal(t, "pizza", atom.String())
}

// TestConjunctionProducesCartesianProduct is spec.md §8 scenario 2.
func TestConjunctionProducesCartesianProduct(t *testing.T) {
	color := NewHandle("color", LenArity(1))
	size := NewHandle("size", LenArity(1))
	db, err := BuildDatabase([]ModuleEntries{{
		Name: "test",
		Entries: []ModuleEntry{
			{Handle: color, Entry: &DatabaseEntry{Public: true, Kind: DefStatic, Definition: &Definition{
				Clauses: []Clause{fact(color, atomPat("red")), fact(color, atomPat("blue"))},
			}}},
			{Handle: size, Entry: &DatabaseEntry{Public: true, Kind: DefStatic, Definition: &Definition{
				Clauses: []Clause{fact(size, atomPat("small")), fact(size, atomPat("large"))},
			}}},
		},
	}})
	require.NoError(t, err)

	body := &Body{Disjunction: Disjunction{Cases: []Case{{Head: Conjunction{Processions: []Procession{
		{Steps: []Step{QueryStep(&Query{Handle: color, Args: termArgs(var0("C"))})}},
		{Steps: []Step{QueryStep(&Query{Handle: size, Args: termArgs(var0("S"))})}},
	}}}}}}
	q := NewQuestion(body, []string{"C", "S"})
	answers := askAll(t, db, q)
	assert.Len(t, answers, 4, "two choices each over two independent predicates must produce 2x2 solutions")
}

// TestCommittedImplicationCommitsToFirstMatchingCase is spec.md §8
// scenario 4: once the head of a "->>"  case succeeds, no other
// disjunction case is tried, even if the tail fails.
func TestCommittedImplicationCommitsToFirstMatchingCase(t *testing.T) {
	flag := NewHandle("flag", LenArity(1))
	db, err := BuildDatabase([]ModuleEntries{{
		Name: "test",
		Entries: []ModuleEntry{
			{Handle: flag, Entry: &DatabaseEntry{Public: true, Kind: DefStatic, Definition: &Definition{
				Clauses: []Clause{fact(flag, atomPat("on"))},
			}}},
		},
	}})
	require.NoError(t, err)

	head := Conjunction{Processions: []Procession{{Steps: []Step{
		QueryStep(&Query{Handle: flag, Args: termArgs(atomPat("on"))}),
	}}}}
	tail := Conjunction{Processions: []Procession{{Steps: []Step{NeverStep()}}}}
	fallback := Conjunction{Processions: []Procession{{Steps: []Step{
		UnificationStep(TermExpr(var0("R")), TermExpr(atomPat("fallback"))),
	}}}}

	body := &Body{Disjunction: Disjunction{Cases: []Case{
		{Head: head, Tail: &tail},
		{Head: fallback},
	}}}
	q := NewQuestion(body, []string{"R"})
	answers := askAll(t, db, q)
	assert.Empty(t, answers, "the committed case's failing tail must not fall through to the next case")
}

// TestOnceClauseYieldsAtMostOneSolution is spec.md §8 scenario covering
// RuleKind Once (the "cut" property).
func TestOnceClauseYieldsAtMostOneSolution(t *testing.T) {
	digit := NewHandle("digit", LenArity(1))
	first := NewHandle("first", LenArity(1))
	db, err := BuildDatabase([]ModuleEntries{{
		Name: "test",
		Entries: []ModuleEntry{
			{Handle: digit, Entry: &DatabaseEntry{Public: true, Kind: DefStatic, Definition: &Definition{
				Clauses: []Clause{fact(digit, intPat(1)), fact(digit, intPat(2)), fact(digit, intPat(3))},
			}}},
			{Handle: first, Entry: &DatabaseEntry{Public: true, Kind: DefStatic, Definition: &Definition{
				Clauses: []Clause{{
					Head: Head{Handle: first, Params: []*Pattern{VariablePattern(NewVariable(NewIdentifier("N")))}},
					Kind: Once,
					Body: queryBody(digit, termArgs(VariablePattern(NewVariable(NewIdentifier("N"))))...),
				}},
			}}},
		},
	}})
	require.NoError(t, err)

	body := queryBody(first, termArgs(var0("N"))...)
	q := NewQuestion(body, []string{"N"})
	answers := askAll(t, db, q)
	require.Len(t, answers, 1, "an Once clause must yield exactly one solution even though its body can backtrack")
	lit, ok := answers[0]["N"].IsLiteral()
	require.True(t, ok)
	assert.Equal(t, int64(1), lit.Int().Int64())
}

// TestListTailDestructuring is spec.md §8 scenario 3.
func TestListTailDestructuring(t *testing.T) {
	db := NewDatabase()
	body := &Body{Disjunction: Disjunction{Cases: []Case{{Head: Conjunction{Processions: []Procession{{Steps: []Step{
		UnificationStep(
			TermExpr(ListPattern([]*Pattern{intPat(1)}, var0("Rest"))),
			TermExpr(ListPattern([]*Pattern{intPat(1), intPat(2), intPat(3)}, nil)),
		),
	}}}}}}}}
	q := NewQuestion(body, []string{"Rest"})
	answers := askAll(t, db, q)
	require.Len(t, answers, 1)
	elems, ok := answers[0]["Rest"].IsList()
	require.True(t, ok)
	require.Len(t, elems, 2)
}

// TestOperatorExpressionDispatchesToNative is spec.md §8 scenario 6: an
// arithmetic operator compiles to a synthetic native query.
func TestOperatorExpressionDispatchesToNative(t *testing.T) {
	addHandle := NewHandle("add", LenArity(3))
	db := NewDatabase().WithNative(addHandle, true, func(ctx context.Context, args []*Value) *stream.Stream[[]*Value] {
		aLit, _ := args[0].IsLiteral()
		bLit, _ := args[1].IsLiteral()
		sum := new(big.Int).Add(aLit.Int(), bLit.Int())
		return stream.Once[[]*Value]([]*Value{args[0], args[1], NewLiteralValue(IntLiteral(sum))})
	})

	sumExpr := OperatorExpr(addHandle, TermExpr(intPat(2)), TermExpr(intPat(3)))
	body := &Body{Disjunction: Disjunction{Cases: []Case{{Head: Conjunction{Processions: []Procession{{Steps: []Step{
		UnificationStep(TermExpr(var0("Sum")), sumExpr),
	}}}}}}}}
	q := NewQuestion(body, []string{"Sum"})
	answers := askAll(t, db, q)
	require.Len(t, answers, 1)
	lit, ok := answers[0]["Sum"].IsLiteral()
	require.True(t, ok)
	assert.Equal(t, int64(5), lit.Int().Int64())
}

// TestAggregateListCollectsAllSolutions exercises [Pattern : Body].
func TestAggregateListCollectsAllSolutions(t *testing.T) {
	digit := NewHandle("digit", LenArity(1))
	db, err := BuildDatabase([]ModuleEntries{{
		Name: "test",
		Entries: []ModuleEntry{
			{Handle: digit, Entry: &DatabaseEntry{Public: true, Kind: DefStatic, Definition: &Definition{
				Clauses: []Clause{fact(digit, intPat(1)), fact(digit, intPat(2)), fact(digit, intPat(3))},
			}}},
		},
	}})
	require.NoError(t, err)

	aggBody := queryBody(digit, termArgs(var0("N"))...)
	aggExpr := AggregateListExpr(var0("N"), aggBody)
	body := &Body{Disjunction: Disjunction{Cases: []Case{{Head: Conjunction{Processions: []Procession{{Steps: []Step{
		UnificationStep(TermExpr(var0("All")), aggExpr),
	}}}}}}}}
	q := NewQuestion(body, []string{"All"})
	answers := askAll(t, db, q)
	require.Len(t, answers, 1)
	elems, ok := answers[0]["All"].IsList()
	require.True(t, ok)
	assert.Len(t, elems, 3)
}
