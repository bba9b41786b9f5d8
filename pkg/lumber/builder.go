package lumber

// ModuleEntry pairs one resolved Handle with its compiled definition.
// Handle embeds a slice (Arity) and so cannot serve as a Go map key;
// ModuleEntries therefore carries its entries as a slice rather than a
// map[Handle]*DatabaseEntry.
type ModuleEntry struct {
	Handle Handle
	Entry  *DatabaseEntry
}

// ModuleEntries is one compiled module's contribution to a Database: the
// set of Handles it defines, each already resolved to a canonical Scope
// by the (out-of-scope) name resolver (spec.md §1). BuildDatabase is the
// seam a module loader calls once all modules have been parsed and
// name-resolved, mirroring the split between the original's
// src/lumber/builder.rs (compiler-facing) and src/program/database.rs
// (engine-facing) (SPEC_FULL.md §6).
type ModuleEntries struct {
	Name    string
	Entries []ModuleEntry
}

// BuildDatabase merges one or more modules' compiled entries into a
// single Database, validating the cross-module invariants spec.md §7
// assigns to "Parse/resolve error": duplicate exports, a native handle
// that is also defined or aliased elsewhere, and alias cycles. Failures
// are collected per module and surfaced as a single KindMultiple Error
// when more than one module fails, per spec.md §7's "Parse/resolve
// errors are collected and surfaced in a single compilation failure".
func BuildDatabase(modules []ModuleEntries) (*Database, error) {
	db := NewDatabase()
	seenPublic := make(map[string]string) // handle string -> module that first exported it
	merr := newMultiError()
	failed := make(map[string]bool) // modules that already reported an error

	for _, mod := range modules {
		var moduleErr error
		for _, me := range mod.Entries {
			h, entry := me.Handle, me.Entry
			if entry.Public {
				key := h.String()
				if owner, dup := seenPublic[key]; dup {
					moduleErr = firstNonNil(moduleErr, NewError(KindParse,
						"duplicate export of %s (already exported by module %q)", h, owner))
					continue
				}
				seenPublic[key] = mod.Name
			}
			if existing, already := db.Lookup(h); already && (existing.Kind == DefNative) != (entry.Kind == DefNative) {
				moduleErr = firstNonNil(moduleErr, NewError(KindParse,
					"%s is both a native and a non-native definition", h))
				continue
			}
			db = db.with(h, entry)
		}
		if moduleErr != nil {
			merr.add(mod.Name, moduleErr)
			failed[mod.Name] = true
		}
	}

	// Alias cycles are rejected at build time, per spec.md §3: "Alias
	// chains must terminate; cycles are a compile-time error."
	for _, mod := range modules {
		if failed[mod.Name] {
			continue
		}
		var moduleErr error
		for _, me := range mod.Entries {
			if me.Entry.Kind != DefAlias {
				continue
			}
			if _, _, err := db.Resolve(me.Handle); err != nil {
				moduleErr = firstNonNil(moduleErr, err)
			}
		}
		if moduleErr != nil {
			merr.add(mod.Name, moduleErr)
		}
	}
	if err := merr.intoError(); err != nil {
		return nil, err
	}

	return db, nil
}

func firstNonNil(existing, next error) error {
	if existing != nil {
		return existing
	}
	return next
}
