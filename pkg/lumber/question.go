package lumber

import (
	"context"

	"github.com/lumber-lang/lumber/internal/stream"
)

// Question wraps a Body and an initial Binding (spec.md §3/§6). Parsing
// source text into a Question is the parser collaborator's job, out of
// scope per spec.md §1; NewQuestion is the seam such a collaborator (or
// a hand-built Body, for embedding hosts and tests) calls to hand the
// engine something it can run.
type Question struct {
	Body    *Body
	Binding *Binding
	names   []string // visible (non-wildcard) top-level variable names, in declaration order
}

// NewQuestion builds a Question from a compiled Body and the list of its
// top-level variable names (spec.md §4.2 "new": "inserts every syntactic
// variable of the Body at generation 0, each as self-binding").
func NewQuestion(body *Body, varNames []string) *Question {
	vars := make([]Variable, 0, len(varNames))
	visible := make([]string, 0, len(varNames))
	for _, name := range varNames {
		vars = append(vars, NewVariable(NewIdentifier(name)))
		if !NewIdentifier(name).IsWildcard() {
			visible = append(visible, name)
		}
	}
	if body != nil {
		vars = append(vars, body.Variables(0)...)
	}
	return &Question{
		Body:    body,
		Binding: NewBinding(vars),
		names:   visible,
	}
}

// Set pre-binds a named top-level variable (spec.md §6
// "Question::set").
func (q *Question) Set(name string, value *Value) error {
	nb, err := q.Binding.Bind(name, value)
	if err != nil {
		return err
	}
	q.Binding = nb
	return nil
}

// Answer is the projection of a Binding onto a Question's visible
// variables (spec.md §3/§6).
type Answer map[string]*Value

// answer projects binding onto q's visible variable names (spec.md §6
// "Question::answer").
func (q *Question) answer(b *Binding) (Answer, error) {
	m, err := b.Answer(q.names)
	if err != nil {
		return nil, err
	}
	return Answer(m), nil
}

// Ask poses question against program, returning a lazy sequence of
// Answers (spec.md §6 "ask(program, question) → lazy sequence of
// Binding", projected to Answer here since that is the boundary shape a
// host actually consumes). A Runtime error produced anywhere in the
// search aborts the stream, per spec.md §7's propagation policy.
func Ask(ctx context.Context, program *Database, q *Question) *stream.Stream[AnswerOrError] {
	driver := NewDriver(program)
	sols := driver.Solve(ctx, q.Body, q.Binding)
	return stream.Map(ctx, sols, func(sol Solution) AnswerOrError {
		if sol.Err != nil {
			return AnswerOrError{Err: sol.Err}
		}
		ans, err := q.answer(sol.Binding)
		if err != nil {
			return AnswerOrError{Err: err}
		}
		return AnswerOrError{Answer: ans}
	})
}

// AnswerOrError is one element of an Ask stream: either a projected
// Answer, or a terminal error aborting the stream (spec.md §7).
type AnswerOrError struct {
	Answer Answer
	Err    error
}
