package lumber

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLiteralEqualRequiresSameKind(t *testing.T) {
	i := IntLiteral(big.NewInt(2))
	r := RatLiteral(big.NewRat(2, 1))
	assert.False(t, i.Equal(r), "an int and an equal-valued rational must not compare equal")
}

func TestLiteralEqualWithinKind(t *testing.T) {
	a := IntLiteral(big.NewInt(5))
	b := IntLiteral(big.NewInt(5))
	c := IntLiteral(big.NewInt(6))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestAnyEqualityIsIdentityBased(t *testing.T) {
	a := NewAny("same underlying string")
	b := NewAny("same underlying string")
	assert.False(t, a.Equal(b), "two separately-wrapped Any values must not compare equal")
	assert.True(t, a.Equal(a))
}

func TestValuesEqualStructural(t *testing.T) {
	l1 := NewListValue([]*Value{NewLiteralValue(IntLiteral(big.NewInt(1))), NewLiteralValue(IntLiteral(big.NewInt(2)))})
	l2 := NewListValue([]*Value{NewLiteralValue(IntLiteral(big.NewInt(1))), NewLiteralValue(IntLiteral(big.NewInt(2)))})
	l3 := NewListValue([]*Value{NewLiteralValue(IntLiteral(big.NewInt(1))), NewLiteralValue(IntLiteral(big.NewInt(3)))})
	assert.True(t, ValuesEqual(l1, l2))
	assert.False(t, ValuesEqual(l1, l3))
}

func TestValuesEqualRecordsIgnoreOrder(t *testing.T) {
	r1 := NewRecordValue([]string{"a", "b"}, map[string]*Value{
		"a": NewAtomValue(Intern("x")),
		"b": NewAtomValue(Intern("y")),
	})
	r2 := NewRecordValue([]string{"b", "a"}, map[string]*Value{
		"a": NewAtomValue(Intern("x")),
		"b": NewAtomValue(Intern("y")),
	})
	assert.True(t, ValuesEqual(r1, r2))
}
