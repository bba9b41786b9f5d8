package lumber

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumber-lang/lumber/internal/stream"
)

func staticEntry(clauses ...Clause) *DatabaseEntry {
	return &DatabaseEntry{Public: true, Kind: DefStatic, Definition: &Definition{Clauses: clauses}}
}

func TestBuildDatabaseMergesDistinctModules(t *testing.T) {
	foo := NewHandle("a::foo", LenArity(1))
	bar := NewHandle("b::bar", LenArity(1))
	db, err := BuildDatabase([]ModuleEntries{
		{Name: "a", Entries: []ModuleEntry{{Handle: foo, Entry: staticEntry(fact(foo, atomPat("x")))}}},
		{Name: "b", Entries: []ModuleEntry{{Handle: bar, Entry: staticEntry(fact(bar, atomPat("y")))}}},
	})
	require.NoError(t, err)
	_, ok := db.Lookup(foo)
	assert.True(t, ok)
	_, ok = db.Lookup(bar)
	assert.True(t, ok)
}

func TestBuildDatabaseRejectsDuplicateExport(t *testing.T) {
	h := NewHandle("a::foo", LenArity(1))
	_, err := BuildDatabase([]ModuleEntries{
		{Name: "a", Entries: []ModuleEntry{{Handle: h, Entry: staticEntry(fact(h, atomPat("x")))}}},
		{Name: "b", Entries: []ModuleEntry{{Handle: h, Entry: staticEntry(fact(h, atomPat("y")))}}},
	})
	require.Error(t, err)
	lerr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindParse, lerr.Kind)
}

func TestBuildDatabaseRejectsNativeNonNativeConflict(t *testing.T) {
	h := NewHandle("a::foo", LenArity(1))
	native := func(ctx context.Context, args []*Value) *stream.Stream[[]*Value] {
		return stream.Empty[[]*Value]()
	}
	_, err := BuildDatabase([]ModuleEntries{
		{Name: "a", Entries: []ModuleEntry{
			{Handle: h, Entry: staticEntry(fact(h, atomPat("x")))},
			{Handle: h, Entry: &DatabaseEntry{Public: false, Kind: DefNative, Native: native}},
		}},
	})
	require.Error(t, err)
}

func TestBuildDatabaseDetectsAliasCycle(t *testing.T) {
	a := NewHandle("m::a", LenArity(1))
	b := NewHandle("m::b", LenArity(1))
	_, err := BuildDatabase([]ModuleEntries{
		{Name: "m", Entries: []ModuleEntry{
			{Handle: a, Entry: &DatabaseEntry{Public: true, Kind: DefAlias, Alias: b}},
			{Handle: b, Entry: &DatabaseEntry{Public: true, Kind: DefAlias, Alias: a}},
		}},
	})
	require.Error(t, err)
	lerr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindParse, lerr.Kind)
}

func TestBuildDatabaseBatchesMultipleModuleFailures(t *testing.T) {
	h := NewHandle("dup::h", LenArity(1))
	cyc1 := NewHandle("cyc::a", LenArity(1))
	cyc2 := NewHandle("cyc::b", LenArity(1))
	_, err := BuildDatabase([]ModuleEntries{
		{Name: "dup1", Entries: []ModuleEntry{{Handle: h, Entry: staticEntry(fact(h, atomPat("x")))}}},
		{Name: "dup2", Entries: []ModuleEntry{{Handle: h, Entry: staticEntry(fact(h, atomPat("y")))}}},
		{Name: "cyc", Entries: []ModuleEntry{
			{Handle: cyc1, Entry: &DatabaseEntry{Public: true, Kind: DefAlias, Alias: cyc2}},
			{Handle: cyc2, Entry: &DatabaseEntry{Public: true, Kind: DefAlias, Alias: cyc1}},
		}},
	})
	require.Error(t, err)
	lerr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindMultiple, lerr.Kind, "more than one failing module must batch into KindMultiple")
}

func TestBuildDatabaseResolvesAliasToTarget(t *testing.T) {
	target := NewHandle("m::real", LenArity(1))
	alias := NewHandle("m::alias", LenArity(1))
	db, err := BuildDatabase([]ModuleEntries{
		{Name: "m", Entries: []ModuleEntry{
			{Handle: target, Entry: staticEntry(fact(target, atomPat("v")))},
			{Handle: alias, Entry: &DatabaseEntry{Public: true, Kind: DefAlias, Alias: target}},
		}},
	})
	require.NoError(t, err)
	entry, resolved, err := db.Resolve(alias)
	require.NoError(t, err)
	assert.Equal(t, target.String(), resolved.String())
	assert.Equal(t, DefStatic, entry.Kind)
}
