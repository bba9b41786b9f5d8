package lumber

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueToPatternRoundTripsThroughApply(t *testing.T) {
	v := NewRecordValue([]string{"a"}, map[string]*Value{"a": NewLiteralValue(IntLiteral(big.NewInt(3)))})
	p := valueToPattern(v)
	b := NewBinding(nil)
	applied, err := b.Apply(p)
	require.NoError(t, err)
	back := patternToValue(applied)
	order, fields, ok := back.IsRecord()
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, order)
	lit, ok := fields["a"].IsLiteral()
	require.True(t, ok)
	assert.Equal(t, int64(3), lit.Int().Int64())
}

func TestPatternToValueReturnsNilForUnboundVariable(t *testing.T) {
	assert.Nil(t, patternToValue(UnboundPattern()))
	assert.Nil(t, patternToValue(VariablePattern(NewVariable(NewIdentifier("X")))))
}

func TestValueToPatternNilIsUnbound(t *testing.T) {
	p := valueToPattern(nil)
	assert.Equal(t, PatternUnbound, p.Kind)
}

func TestPatternToValueReturnsNilForOpenListTail(t *testing.T) {
	open := ListPattern([]*Pattern{intPat(1), intPat(2)}, var0("Rest"))
	assert.Nil(t, patternToValue(open), "a list with an unresolved tail variable is not fully ground")
}

func TestPatternToValueReturnsNilForOpenRecordTail(t *testing.T) {
	open := RecordPattern(NewFields([]Atom{Intern("a")}, map[Atom]*Pattern{Intern("a"): intPat(1)}), var0("Rest"))
	assert.Nil(t, patternToValue(open), "a record with an unresolved tail variable is not fully ground")
}
