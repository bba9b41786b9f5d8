package lumber

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBindingSelfBindsEveryBodyVariable(t *testing.T) {
	b := newTestBinding("X", "Y")
	for _, name := range []string{"X", "Y"} {
		pat, ok := b.Get(NewVariable(NewIdentifier(name)).WithGeneration(0))
		require.True(t, ok)
		assert.Equal(t, PatternVariable, pat.Kind)
	}
}

func TestBindSetsATopLevelVariableByName(t *testing.T) {
	b := newTestBinding("X")
	nb, err := b.Bind("X", NewLiteralValue(IntLiteral(big.NewInt(9))))
	require.NoError(t, err)
	v, err := nb.Extract(var0("X"))
	require.NoError(t, err)
	lit, ok := v.IsLiteral()
	require.True(t, ok)
	assert.Equal(t, int64(9), lit.Int().Int64())
}

func TestBindUnknownNameFails(t *testing.T) {
	b := newTestBinding("X")
	_, err := b.Bind("Y", NewAtomValue(Intern("z")))
	assert.Error(t, err)
}

func TestFreshVariableIsDistinctFromExistingOnes(t *testing.T) {
	b := newTestBinding("X")
	fresh, nb := b.FreshVariable()
	assert.NotEqual(t, "X", fresh.Name())
	_, ok := nb.Get(fresh)
	assert.True(t, ok)
}

func TestStartAndEndGenerationRoundTripsArguments(t *testing.T) {
	caller := newTestBinding("Arg")
	caller, err := caller.Bind("Arg", NewLiteralValue(IntLiteral(big.NewInt(4))))
	require.NoError(t, err)

	// A clause head with one parameter variable, generationless so it is
	// re-resolved fresh at every activation.
	param := VariablePattern(NewVariable(NewIdentifier("Param")))
	extended, started := caller.StartGeneration(nil, []*Pattern{var0("Arg")}, []*Pattern{param})
	require.True(t, started)

	inClause, err := extended.Apply(param)
	require.NoError(t, err)
	require.Equal(t, PatternLiteral, inClause.Kind)
	assert.Equal(t, int64(4), inClause.Literal.Int().Int64())

	popped := extended.EndGeneration()
	assert.Equal(t, caller.Generation(), popped.Generation())
}

func TestAnswerProjectsOnlyNamedVisibleVariables(t *testing.T) {
	q := NewQuestion(&Body{}, []string{"X", "_"})
	b := q.Binding
	nb, err := b.Bind("X", NewAtomValue(Intern("ok")))
	require.NoError(t, err)
	ans, err := nb.Answer(q.names)
	require.NoError(t, err)
	assert.Len(t, ans, 1)
	assert.Contains(t, ans, "X")
}

func TestApplyIsIdempotent(t *testing.T) {
	b := newTestBinding("X", "Y")
	nb, ok := unify(var0("X"), var0("Y"), 0, 0, b)
	require.True(t, ok)
	nb, ok = unify(var0("Y"), intPat(11), 0, 0, nb)
	require.True(t, ok)

	once, err := nb.Apply(var0("X"))
	require.NoError(t, err)
	twice, err := nb.Apply(once)
	require.NoError(t, err)
	assert.True(t, once.Equal(twice))
}
