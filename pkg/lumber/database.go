package lumber

import (
	"context"

	iradix "github.com/hashicorp/go-immutable-radix/v2"

	"github.com/lumber-lang/lumber/internal/stream"
)

// DefinitionKind discriminates the category a DatabaseEntry's
// definition belongs to (spec.md §3).
type DefinitionKind uint8

const (
	DefStatic DefinitionKind = iota
	DefMutable
	DefAlias
	DefNative
)

// NativeFn is the host-implemented predicate interface of spec.md §6: it
// receives one optional Value per argument position and lazily streams
// tuples of optional values, each re-unified against the query's
// argument patterns by the search driver.
type NativeFn func(ctx context.Context, args []*Value) *stream.Stream[[]*Value]

// Definition is an ordered list of clauses sharing one Handle
// (spec.md §3).
type Definition struct {
	Clauses []Clause
}

// DatabaseEntry is one Handle's compiled definition, per spec.md §3.
type DatabaseEntry struct {
	Public bool
	Kind   DefinitionKind

	Definition *Definition // DefStatic / DefMutable
	Alias      Handle      // DefAlias
	Native     NativeFn    // DefNative
}

// Database is the compiled, read-only (Mutable entries aside) map from
// Handle to DatabaseEntry that the engine queries (spec.md §3/§6). It is
// backed by an iradix tree for the same persistent-structure reasons as
// Binding (SPEC_FULL.md §2): a host can hand the engine a Database once
// and share it, lock-free, across concurrently running queries, since
// query execution never mutates it (spec.md §5).
type Database struct {
	entries *iradix.Tree[*DatabaseEntry]
}

// NewDatabase builds an empty Database.
func NewDatabase() *Database {
	return &Database{entries: iradix.New[*DatabaseEntry]()}
}

// WithStatic returns a Database extended with a Static definition at h.
func (db *Database) WithStatic(h Handle, public bool, def *Definition) *Database {
	return db.with(h, &DatabaseEntry{Public: public, Kind: DefStatic, Definition: def})
}

// WithMutable returns a Database extended with a Mutable definition at
// h. spec.md §1/§9 treats runtime mutation of these as unsound and
// explicitly permits a conforming engine to refuse it; see MutateClause.
func (db *Database) WithMutable(h Handle, public bool, def *Definition) *Database {
	return db.with(h, &DatabaseEntry{Public: public, Kind: DefMutable, Definition: def})
}

// WithAlias returns a Database extended with h aliasing target.
func (db *Database) WithAlias(h Handle, public bool, target Handle) *Database {
	return db.with(h, &DatabaseEntry{Public: public, Kind: DefAlias, Alias: target})
}

// WithNative returns a Database extended with h bound to a host-
// implemented predicate.
func (db *Database) WithNative(h Handle, public bool, fn NativeFn) *Database {
	return db.with(h, &DatabaseEntry{Public: public, Kind: DefNative, Native: fn})
}

func (db *Database) with(h Handle, e *DatabaseEntry) *Database {
	txn := db.entries.Txn()
	txn.Insert(h.key(), e)
	return &Database{entries: txn.Commit()}
}

// Lookup returns the entry registered exactly at h, without chasing
// aliases.
func (db *Database) Lookup(h Handle) (*DatabaseEntry, bool) {
	return db.entries.Get(h.key())
}

// Resolve chases Alias entries starting at h to a terminal Static,
// Mutable, or Native entry, per spec.md §3 "For a query with handle H,
// lookup follows Alias entries to a terminal definition or native."
// Cycles are a compile-time concern (spec.md §3); Resolve defends
// against one slipping through anyway by bounding the chase, recovering
// the original's cycle-rejection discipline (original_source/src/program/alias.rs)
// as a runtime safety net rather than trusting the compiler alone.
func (db *Database) Resolve(h Handle) (*DatabaseEntry, Handle, error) {
	// Handle embeds a slice (Arity) and so cannot be a map key itself;
	// its canonical String form stands in for identity here.
	seen := make(map[string]bool)
	cur := h
	for {
		if seen[cur.String()] {
			return nil, cur, NewError(KindParse, "alias cycle detected at %s", cur)
		}
		seen[cur.String()] = true
		entry, ok := db.entries.Get(cur.key())
		if !ok {
			return nil, cur, NewError(KindParse, "unresolved handle %s", cur)
		}
		if entry.Kind != DefAlias {
			return entry, cur, nil
		}
		if !entry.Alias.Compatible(cur) {
			return nil, cur, NewError(KindParse, "alias %s has incompatible arity with target %s", cur, entry.Alias)
		}
		cur = entry.Alias
	}
}

// MutateClause appends a clause to a Mutable definition, returning a new
// Database. spec.md §1's Non-goals state that "[m]utable predicates are
// a stated capability in the source but are not required to be
// implemented for this specification; a conforming implementation may
// reject queries that would mutate." This implementation accepts the
// restricted, backtracking-safe case — appending a fact between queries,
// never during an in-flight search — and rejects anything else, per the
// Open Question resolution in DESIGN.md.
func (db *Database) MutateClause(h Handle, clause Clause) (*Database, error) {
	entry, ok := db.Lookup(h)
	if !ok || entry.Kind != DefMutable {
		return nil, NewError(KindRuntime, "%s is not a mutable predicate", h)
	}
	if clause.Body != nil {
		return nil, NewError(KindRuntime, "only facts may be added to %s", h)
	}
	newDef := &Definition{Clauses: append(append([]Clause{}, entry.Definition.Clauses...), clause)}
	return db.with(h, &DatabaseEntry{Public: entry.Public, Kind: DefMutable, Definition: newDef}), nil
}
