// Package natfn is the injectable native-predicate library that ships
// with every Lumber program: arithmetic, comparison, string, and
// list/record helpers. spec.md §9 notes that a reimplementation "should
// instead inject the core library as data into every program value,
// avoiding process-wide singletons" — Entries returns exactly that data,
// for a host to merge into its Database at the scope of its choosing.
package natfn

import (
	"context"
	"math/big"
	"sort"
	"strings"

	"github.com/lumber-lang/lumber/internal/stream"
	"github.com/lumber-lang/lumber/pkg/lumber"
)

// Entries builds the native-function library, one Handle per predicate
// under scope (e.g. "core" yields "core::add", "core::lt", and so on —
// Scope is the full resolved path, so each predicate name becomes its
// own path segment per spec.md §3's Handle/Scope definition).
func Entries(scope lumber.Scope) []lumber.ModuleEntry {
	var out []lumber.ModuleEntry
	reg := func(name string, arity int, fn lumber.NativeFn) {
		h := lumber.NewHandle(lumber.Scope(string(scope)+"::"+name), lumber.LenArity(arity))
		out = append(out, lumber.ModuleEntry{
			Handle: h,
			Entry:  &lumber.DatabaseEntry{Public: true, Kind: lumber.DefNative, Native: fn},
		})
	}

	reg("add", 3, arith3(func(a, b *big.Rat) *big.Rat { return new(big.Rat).Add(a, b) }))
	reg("sub", 3, arith3(func(a, b *big.Rat) *big.Rat { return new(big.Rat).Sub(a, b) }))
	reg("mul", 3, arith3(func(a, b *big.Rat) *big.Rat { return new(big.Rat).Mul(a, b) }))
	reg("div", 3, divFn())
	reg("mod", 3, modFn())
	reg("neg", 2, negFn())

	reg("lt", 2, cmpFn(func(c int) bool { return c < 0 }))
	reg("lte", 2, cmpFn(func(c int) bool { return c <= 0 }))
	reg("gt", 2, cmpFn(func(c int) bool { return c > 0 }))
	reg("gte", 2, cmpFn(func(c int) bool { return c >= 0 }))
	reg("eq", 2, eqFn(true))
	reg("neq", 2, eqFn(false))

	reg("concat", 3, concatFn())
	reg("split", 3, splitFn())
	reg("length", 2, lengthFn())

	reg("sort", 2, sortFn())
	reg("reverse", 2, reverseFn())
	reg("member", 2, memberFn())
	reg("keys", 2, keysFn())

	return out
}

func one(vs ...*lumber.Value) *stream.Stream[[]*lumber.Value] {
	return stream.Once[[]*lumber.Value](vs)
}

func empty() *stream.Stream[[]*lumber.Value] {
	return stream.Empty[[]*lumber.Value]()
}

func asRat(v *lumber.Value) (*big.Rat, bool) {
	lit, ok := v.IsLiteral()
	if !ok {
		return nil, false
	}
	switch {
	case lit.Kind() == lumber.LiteralKindInt:
		return new(big.Rat).SetInt(lit.Int()), true
	case lit.Kind() == lumber.LiteralKindRat:
		return lit.Rat(), true
	}
	return nil, false
}

func ratToLiteral(r *big.Rat) lumber.Literal {
	if r.IsInt() {
		return lumber.IntLiteral(new(big.Int).Set(r.Num()))
	}
	return lumber.RatLiteral(r)
}

// arith3 builds a native for a binary operator with a single output
// position: natives always require their operand positions bound
// (spec.md §6's NativeFn contract does not itself demand this, but
// "division by zero"-style natives in spec.md §4.5/§7 presume ground
// arithmetic operands; aggregation/backtracking supplies values, never
// the other way around, for these particular natives).
func arith3(op func(a, b *big.Rat) *big.Rat) lumber.NativeFn {
	return func(ctx context.Context, args []*lumber.Value) *stream.Stream[[]*lumber.Value] {
		a, ok1 := asRat(args[0])
		b, ok2 := asRat(args[1])
		if !ok1 || !ok2 {
			return empty()
		}
		return one(args[0], args[1], lumber.NewLiteralValue(ratToLiteral(op(a, b))))
	}
}

func divFn() lumber.NativeFn {
	return func(ctx context.Context, args []*lumber.Value) *stream.Stream[[]*lumber.Value] {
		a, ok1 := asRat(args[0])
		b, ok2 := asRat(args[1])
		if !ok1 || !ok2 {
			return empty()
		}
		if b.Sign() == 0 {
			// NativeFn's tuple stream has no channel for hard errors
			// (that belongs to Solution, one layer up, which natives
			// never see); division by zero is therefore a plain
			// failure to produce a solution rather than an aborted
			// stream. See DESIGN.md's Open Question entry on div/3.
			return empty()
		}
		return one(args[0], args[1], lumber.NewLiteralValue(ratToLiteral(new(big.Rat).Quo(a, b))))
	}
}

func modFn() lumber.NativeFn {
	return func(ctx context.Context, args []*lumber.Value) *stream.Stream[[]*lumber.Value] {
		a, ok1 := asRat(args[0])
		b, ok2 := asRat(args[1])
		if !ok1 || !ok2 || !a.IsInt() || !b.IsInt() || b.Num().Sign() == 0 {
			return empty()
		}
		m := new(big.Int).Mod(a.Num(), b.Num())
		return one(args[0], args[1], lumber.NewLiteralValue(lumber.IntLiteral(m)))
	}
}

func negFn() lumber.NativeFn {
	return func(ctx context.Context, args []*lumber.Value) *stream.Stream[[]*lumber.Value] {
		a, ok := asRat(args[0])
		if !ok {
			return empty()
		}
		return one(args[0], lumber.NewLiteralValue(ratToLiteral(new(big.Rat).Neg(a))))
	}
}

func cmpFn(accept func(int) bool) lumber.NativeFn {
	return func(ctx context.Context, args []*lumber.Value) *stream.Stream[[]*lumber.Value] {
		a, ok1 := asRat(args[0])
		b, ok2 := asRat(args[1])
		if !ok1 || !ok2 {
			return empty()
		}
		if !accept(a.Cmp(b)) {
			return empty()
		}
		return one(args[0], args[1])
	}
}

func eqFn(wantEqual bool) lumber.NativeFn {
	return func(ctx context.Context, args []*lumber.Value) *stream.Stream[[]*lumber.Value] {
		equal := lumber.ValuesEqual(args[0], args[1])
		if equal != wantEqual {
			return empty()
		}
		return one(args[0], args[1])
	}
}

func concatFn() lumber.NativeFn {
	return func(ctx context.Context, args []*lumber.Value) *stream.Stream[[]*lumber.Value] {
		aLit, ok1 := args[0].IsLiteral()
		bLit, ok2 := args[1].IsLiteral()
		if ok1 && ok2 && aLit.Kind() == lumber.LiteralKindStr && bLit.Kind() == lumber.LiteralKindStr {
			return one(args[0], args[1], lumber.NewLiteralValue(lumber.StrLiteral(aLit.Str()+bLit.Str())))
		}
		return empty()
	}
}

func splitFn() lumber.NativeFn {
	return func(ctx context.Context, args []*lumber.Value) *stream.Stream[[]*lumber.Value] {
		sLit, ok1 := args[0].IsLiteral()
		sepLit, ok2 := args[1].IsLiteral()
		if !ok1 || !ok2 || sLit.Kind() != lumber.LiteralKindStr || sepLit.Kind() != lumber.LiteralKindStr {
			return empty()
		}
		parts := strings.Split(sLit.Str(), sepLit.Str())
		elems := make([]*lumber.Value, len(parts))
		for i, p := range parts {
			elems[i] = lumber.NewLiteralValue(lumber.StrLiteral(p))
		}
		return one(args[0], args[1], lumber.NewListValue(elems))
	}
}

func lengthFn() lumber.NativeFn {
	return func(ctx context.Context, args []*lumber.Value) *stream.Stream[[]*lumber.Value] {
		if lit, ok := args[0].IsLiteral(); ok && lit.Kind() == lumber.LiteralKindStr {
			n := big.NewInt(int64(len([]rune(lit.Str()))))
			return one(args[0], lumber.NewLiteralValue(lumber.IntLiteral(n)))
		}
		if elems, ok := args[0].IsList(); ok {
			n := big.NewInt(int64(len(elems)))
			return one(args[0], lumber.NewLiteralValue(lumber.IntLiteral(n)))
		}
		if order, _, ok := args[0].IsRecord(); ok {
			n := big.NewInt(int64(len(order)))
			return one(args[0], lumber.NewLiteralValue(lumber.IntLiteral(n)))
		}
		return empty()
	}
}

func sortFn() lumber.NativeFn {
	return func(ctx context.Context, args []*lumber.Value) *stream.Stream[[]*lumber.Value] {
		elems, ok := args[0].IsList()
		if !ok {
			return empty()
		}
		sorted := append([]*lumber.Value{}, elems...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].String() < sorted[j].String()
		})
		return one(args[0], lumber.NewListValue(sorted))
	}
}

func reverseFn() lumber.NativeFn {
	return func(ctx context.Context, args []*lumber.Value) *stream.Stream[[]*lumber.Value] {
		elems, ok := args[0].IsList()
		if !ok {
			return empty()
		}
		rev := make([]*lumber.Value, len(elems))
		for i, e := range elems {
			rev[len(elems)-1-i] = e
		}
		return one(args[0], lumber.NewListValue(rev))
	}
}

func memberFn() lumber.NativeFn {
	return func(ctx context.Context, args []*lumber.Value) *stream.Stream[[]*lumber.Value] {
		elems, ok := args[1].IsList()
		if !ok {
			return empty()
		}
		return stream.New[[]*lumber.Value](ctx, func(ctx context.Context, yield func([]*lumber.Value) bool) {
			for _, e := range elems {
				if !yield([]*lumber.Value{e, args[1]}) {
					return
				}
			}
		})
	}
}

func keysFn() lumber.NativeFn {
	return func(ctx context.Context, args []*lumber.Value) *stream.Stream[[]*lumber.Value] {
		order, _, ok := args[0].IsRecord()
		if !ok {
			return empty()
		}
		elems := make([]*lumber.Value, len(order))
		for i, k := range order {
			elems[i] = lumber.NewAtomValue(lumber.Intern(k))
		}
		return one(args[0], lumber.NewListValue(elems))
	}
}
