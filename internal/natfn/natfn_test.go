package natfn

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumber-lang/lumber/internal/stream"
	"github.com/lumber-lang/lumber/pkg/lumber"
)

func intVal(n int64) *lumber.Value {
	return lumber.NewLiteralValue(lumber.IntLiteral(big.NewInt(n)))
}

func strVal(s string) *lumber.Value {
	return lumber.NewLiteralValue(lumber.StrLiteral(s))
}

func TestAddOverIntegers(t *testing.T) {
	ctx := context.Background()
	entries := Entries("core")
	byName := make(map[string]lumber.NativeFn)
	for _, me := range entries {
		byName[me.Handle.String()] = me.Entry.Native
	}

	add := byName[lumber.NewHandle("core::add", lumber.LenArity(3)).String()]
	require.NotNil(t, add)

	out := add(ctx, []*lumber.Value{intVal(2), intVal(3), nil})
	tuple, ok := stream.First(ctx, out)
	require.True(t, ok)
	require.Len(t, tuple, 3)
	lit, isLit := tuple[2].IsLiteral()
	require.True(t, isLit)
	assert.Equal(t, int64(5), lit.Int().Int64())
}

func TestDivByZeroFails(t *testing.T) {
	ctx := context.Background()
	byName := make(map[string]lumber.NativeFn)
	for _, me := range Entries("core") {
		byName[me.Handle.String()] = me.Entry.Native
	}
	div := byName[lumber.NewHandle("core::div", lumber.LenArity(3)).String()]
	require.NotNil(t, div)

	out := div(ctx, []*lumber.Value{intVal(1), intVal(0), nil})
	_, ok := stream.First(ctx, out)
	assert.False(t, ok)
}

func TestComparisons(t *testing.T) {
	ctx := context.Background()
	byName := make(map[string]lumber.NativeFn)
	for _, me := range Entries("core") {
		byName[me.Handle.String()] = me.Entry.Native
	}
	lt := byName[lumber.NewHandle("core::lt", lumber.LenArity(2)).String()]
	require.NotNil(t, lt)

	_, ok := stream.First(ctx, lt(ctx, []*lumber.Value{intVal(1), intVal(2)}))
	assert.True(t, ok)
	_, ok = stream.First(ctx, lt(ctx, []*lumber.Value{intVal(2), intVal(1)}))
	assert.False(t, ok)
}

func TestConcatAndLength(t *testing.T) {
	ctx := context.Background()
	byName := make(map[string]lumber.NativeFn)
	for _, me := range Entries("core") {
		byName[me.Handle.String()] = me.Entry.Native
	}
	concat := byName[lumber.NewHandle("core::concat", lumber.LenArity(3)).String()]
	length := byName[lumber.NewHandle("core::length", lumber.LenArity(2)).String()]
	require.NotNil(t, concat)
	require.NotNil(t, length)

	tuple, ok := stream.First(ctx, concat(ctx, []*lumber.Value{strVal("foo"), strVal("bar"), nil}))
	require.True(t, ok)
	lit, _ := tuple[2].IsLiteral()
	assert.Equal(t, "foobar", lit.Str())

	tuple, ok = stream.First(ctx, length(ctx, []*lumber.Value{strVal("foobar"), nil}))
	require.True(t, ok)
	lit, _ = tuple[1].IsLiteral()
	assert.Equal(t, int64(6), lit.Int().Int64())
}

func TestMemberEnumeratesEveryElement(t *testing.T) {
	ctx := context.Background()
	byName := make(map[string]lumber.NativeFn)
	for _, me := range Entries("core") {
		byName[me.Handle.String()] = me.Entry.Native
	}
	member := byName[lumber.NewHandle("core::member", lumber.LenArity(2)).String()]
	require.NotNil(t, member)

	list := lumber.NewListValue([]*lumber.Value{intVal(1), intVal(2), intVal(3)})
	out := member(ctx, []*lumber.Value{nil, list})
	tuples := stream.Collect(ctx, out, 0)
	require.Len(t, tuples, 3)
	var got []int64
	for _, tup := range tuples {
		lit, _ := tup[0].IsLiteral()
		got = append(got, lit.Int().Int64())
	}
	assert.Equal(t, []int64{1, 2, 3}, got)
}
