package lumber

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/lumber-lang/lumber/internal/stream"
)

// Solution is one element of a search-driver stream: either an extended
// Binding, or a terminal hard error. Per spec.md §4.5's failure
// semantics, a hard error aborts the current solution stream — once a
// Solution carries a non-nil Err, no further Solutions follow it.
type Solution struct {
	Binding *Binding
	Err     error
}

func ok(b *Binding) Solution   { return Solution{Binding: b} }
func fail(err error) Solution  { return Solution{Err: err} }
func (s Solution) failed() bool { return s.Err != nil }

// log is the package-level logger used by the search driver to trace
// definition lookups, committed-implication commits, and native dispatch
// at Debug level. It defaults to silent so embedding hosts are never forced to
// see engine chatter (SPEC_FULL.md §2).
var log = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

// SetLogOutput redirects the engine's diagnostic logging, e.g. to
// os.Stderr for a host that wants to see search-driver tracing.
func SetLogOutput(w io.Writer) { log.SetOutput(w) }

// SetLogLevel adjusts the engine's diagnostic logging verbosity.
func SetLogLevel(level logrus.Level) { log.SetLevel(level) }

// Driver interprets a compiled Database's rule bodies: disjunction,
// conjunction, procession, steps; it dispatches predicate queries to
// definitions and implements cut, commit, and once (spec.md §4.5).
type Driver struct {
	db *Database
}

// NewDriver builds a Driver over a compiled Database.
func NewDriver(db *Database) *Driver {
	return &Driver{db: db}
}

// Solve interprets body against binding b, producing a lazy stream of
// extended Solutions (spec.md §4.5 "Body → Disjunction: lazy sequence of
// bindings").
func (d *Driver) Solve(ctx context.Context, body *Body, b *Binding) *stream.Stream[Solution] {
	return d.solveDisjunction(ctx, body.Disjunction, b)
}

func (d *Driver) solveDisjunction(ctx context.Context, dis Disjunction, b *Binding) *stream.Stream[Solution] {
	return stream.New(ctx, func(ctx context.Context, yield func(Solution) bool) {
		for i, c := range dis.Cases {
			if c.Tail == nil {
				s := d.solveConjunction(ctx, c.Head, b)
				for {
					sol, more := s.Next(ctx)
					if !more {
						break
					}
					if !yield(sol) {
						s.Close()
						return
					}
					if sol.failed() {
						s.Close()
						return
					}
				}
				continue
			}

			// Committed implication: Head ->> Tail.
			headStream := d.solveConjunction(ctx, c.Head, b)
			first, more := headStream.Next(ctx)
			headStream.Close()
			if !more {
				// Head yielded no solution: this case contributes
				// nothing; the next case is tried.
				continue
			}
			if first.failed() {
				yield(first)
				return
			}
			log.WithField("case", i).Debug("committed implication: head succeeded, committing")
			tailStream := d.solveConjunction(ctx, *c.Tail, first.Binding)
			for {
				sol, more := tailStream.Next(ctx)
				if !more {
					break
				}
				if !yield(sol) || sol.failed() {
					tailStream.Close()
					return
				}
			}
			// No later case is tried regardless of how many (zero or
			// more) solutions Tail produced.
			return
		}
	})
}

func (d *Driver) solveConjunction(ctx context.Context, conj Conjunction, b *Binding) *stream.Stream[Solution] {
	cur := stream.Once(ok(b))
	for _, p := range conj.Processions {
		p := p
		cur = stream.FlatMap(ctx, cur, func(sol Solution) *stream.Stream[Solution] {
			if sol.failed() {
				return stream.Once(sol)
			}
			return d.solveProcession(ctx, p, sol.Binding)
		})
	}
	return cur
}

// solveProcession folds a procession's steps left to right: each step's
// full solution stream is produced, but only the first solution of that
// stream is carried into the next step (spec.md §4.5's cut between
// steps). The procession's own result is therefore the last step's
// stream in full — a single-step procession (the common case for a
// plain query or unification) is never cut at all.
func (d *Driver) solveProcession(ctx context.Context, proc Procession, b *Binding) *stream.Stream[Solution] {
	if len(proc.Steps) == 0 {
		return stream.Once(ok(b))
	}
	return stream.New(ctx, func(ctx context.Context, yield func(Solution) bool) {
		cur := d.solveStep(ctx, proc.Steps[0], b)
		for _, s := range proc.Steps[1:] {
			first, more := stream.First(ctx, cur)
			if !more {
				return
			}
			if first.failed() {
				yield(first)
				return
			}
			cur = d.solveStep(ctx, s, first.Binding)
		}
		for {
			sol, more := cur.Next(ctx)
			if !more {
				return
			}
			if !yield(sol) {
				cur.Close()
				return
			}
		}
	})
}

func (d *Driver) solveStep(ctx context.Context, s Step, b *Binding) *stream.Stream[Solution] {
	switch s.Kind {
	case StepQuery:
		return d.solveQuery(ctx, s.Query, b)
	case StepUnification:
		return d.solveUnification(ctx, s.UnifyLHS, s.UnifyRHS, b)
	case StepSubBody:
		return d.Solve(ctx, s.SubBody, b)
	case StepNever:
		return stream.Empty[Solution]()
	}
	return stream.Once(fail(NewError(KindRuntime, "invalid step kind")))
}

func (d *Driver) solveUnification(ctx context.Context, lhs, rhs *Expression, b *Binding) *stream.Stream[Solution] {
	return stream.New(ctx, func(ctx context.Context, yield func(Solution) bool) {
		lp, b1, err := lhs.Evaluate(ctx, d, b)
		if err != nil {
			yield(fail(err))
			return
		}
		rp, b2, err := rhs.Evaluate(ctx, d, b1)
		if err != nil {
			yield(fail(err))
			return
		}
		nb, success := unify(lp, rp, b2.Generation(), b2.Generation(), b2)
		if !success {
			return
		}
		yield(ok(nb))
	})
}

// solveQuery dispatches a predicate invocation: it evaluates argument
// expressions, resolves the Handle through any Alias chain, and either
// invokes a Native function or walks a Static/Mutable Definition's
// clauses in source order (spec.md §4.5).
func (d *Driver) solveQuery(ctx context.Context, q *Query, b *Binding) *stream.Stream[Solution] {
	return stream.New(ctx, func(ctx context.Context, yield func(Solution) bool) {
		argPatterns := make([]*Pattern, 0, len(q.Args))
		cur := b
		for _, a := range q.Args {
			p, nb, err := a.Evaluate(ctx, d, cur)
			if err != nil {
				yield(fail(err))
				return
			}
			argPatterns = append(argPatterns, p)
			cur = nb
		}

		entry, resolved, err := d.db.Resolve(q.Handle)
		if err != nil {
			yield(fail(err))
			return
		}

		if entry.Kind == DefNative {
			log.WithField("handle", resolved.String()).Debug("dispatching native")
			d.solveNative(ctx, entry.Native, argPatterns, cur, yield)
			return
		}

		log.WithField("handle", resolved.String()).Debug("querying definition")
		d.solveDefinition(ctx, entry.Definition, argPatterns, cur, yield)
	})
}

func (d *Driver) solveNative(ctx context.Context, fn NativeFn, args []*Pattern, b *Binding, yield func(Solution) bool) {
	hostArgs := make([]*Value, len(args))
	for i, p := range args {
		v, err := b.Extract(p)
		if err != nil {
			yield(fail(err))
			return
		}
		hostArgs[i] = v
	}
	tuples := fn(ctx, hostArgs)
	defer tuples.Close()
	for {
		tuple, more := tuples.Next(ctx)
		if !more {
			return
		}
		if len(tuple) != len(args) {
			yield(fail(NewError(KindRuntime, "native returned %d values, expected %d", len(tuple), len(args))))
			return
		}
		cur := b
		success := true
		for i, v := range tuple {
			nb, unified := unify(valueToPattern(v), args[i], cur.Generation(), cur.Generation(), cur)
			if !unified {
				success = false
				break
			}
			cur = nb
		}
		if success {
			if !yield(ok(cur)) {
				return
			}
		}
	}
}

func (d *Driver) solveDefinition(ctx context.Context, def *Definition, args []*Pattern, b *Binding, yield func(Solution) bool) {
	for _, clause := range def.Clauses {
		destination := clause.Head.Params
		extended, started := b.StartGeneration(clause.Body, args, destination)
		if !started {
			continue
		}
		clauseGen := extended.Generation()

		emit := func(solBinding *Binding) bool {
			// Transfer the clause-local bindings back through the
			// parameters into the caller's generation via a symmetric
			// re-unification (clause.patterns, still generationless AST
			// nodes, are resolved explicitly against the generation they
			// ran in), then project onto the caller by ending the
			// generation (spec.md §4.5).
			ended := solBinding.EndGeneration()
			projected, success := unifyPairwise(destination, args, clauseGen, ended.Generation(), ended)
			if !success {
				return true // this clause activation's result doesn't survive projection; keep going
			}
			return yield(ok(projected))
		}

		producedAny := false
		switch {
		case clause.Body == nil:
			producedAny = emit(extended)

		case clause.Kind == Once:
			// Only the first solution of this clause's body is ever
			// used; no backtracking into it is attempted.
			sub := d.Solve(ctx, clause.Body, extended)
			sol, more := stream.First(ctx, sub)
			if more {
				if sol.failed() {
					yield(sol)
					return
				}
				producedAny = true
				if !emit(sol.Binding) {
					return
				}
			}

		default:
			sub := d.Solve(ctx, clause.Body, extended)
			for {
				sol, more := sub.Next(ctx)
				if !more {
					break
				}
				if sol.failed() {
					sub.Close()
					yield(sol)
					return
				}
				producedAny = true
				if !emit(sol.Binding) {
					sub.Close()
					return
				}
			}
		}

		if clause.Kind == Once && producedAny {
			// spec.md §4.5: "If the clause's RuleKind is Once and any
			// solution was produced, subsequent clauses are skipped and
			// no more solutions are generated from this clause."
			return
		}
	}
}
