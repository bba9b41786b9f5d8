package lumber

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Kind classifies an Error the way a host program needs to dispatch on
// failure: no-solution is never represented here, since it is not an
// error at all — the solution stream simply ends.
type Kind string

const (
	// KindIO covers file/module-loading failures from the collaborator
	// that reads source modules from disk.
	KindIO Kind = "io"
	// KindParse covers grammar and name-resolution failures: undeclared
	// modules, ambiguous glob imports, alias-arity mismatches, alias
	// cycles, singleton-variable errors, bad operator precedence,
	// operator arity mismatches, duplicate exports/natives, and
	// unresolved handles.
	KindParse Kind = "parse"
	// KindBinding covers extraction of a pattern that references
	// variables outside the current binding's scope.
	KindBinding Kind = "binding"
	// KindDe covers host-interop deserialization failures.
	KindDe Kind = "de"
	// KindSer covers host-interop serialization failures.
	KindSer Kind = "ser"
	// KindTest is reserved for the engine's own test harness.
	KindTest Kind = "test"
	// KindMultiple batches several per-module Parse errors raised while
	// compiling more than one module.
	KindMultiple Kind = "multiple"
	// KindRuntime covers hard errors raised while a query runs — a native
	// returning a tuple of the wrong length, an operator expression whose
	// query yields no result, an invalid step or expression kind, or a
	// mutation of a non-mutable predicate — aborting the current solution
	// stream. Natives themselves cannot raise it: a native that does not
	// apply (e.g. division by zero) yields no tuples. Not named in the
	// original Rust taxonomy's Kind enum but
	// required by spec.md §7's "Runtime error" category; modeled as its
	// own kind rather than overloading Binding or De.
	KindRuntime Kind = "runtime"
)

// Error is the single error type crossing every boundary operation the
// engine exposes, per spec.md §6/§7.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// NewError builds an Error of the given kind with a causeless message.
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds an Error of the given kind, attaching cause with a
// stack trace via pkg/errors so the original failure site survives.
func WrapError(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   errors.WithStack(cause),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes Cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// multiError collects one *Error per failing module during compilation
// and surfaces them as a single KindMultiple Error, per spec.md §7's
// "Parse/resolve errors are collected and surfaced in a single
// compilation failure".
type multiError struct {
	errs *multierror.Error
}

func newMultiError() *multiError {
	return &multiError{errs: &multierror.Error{
		ErrorFormat: func(es []error) string {
			s := fmt.Sprintf("%d module(s) failed to compile:", len(es))
			for _, e := range es {
				s += "\n\t* " + e.Error()
			}
			return s
		},
	}}
}

func (m *multiError) add(module string, err error) {
	m.errs = multierror.Append(m.errs, fmt.Errorf("module %q: %w", module, err))
}

// intoError returns nil if nothing was collected, a bare *Error if
// exactly one failure was collected (no point batching one), or a
// KindMultiple *Error wrapping all of them.
func (m *multiError) intoError() *Error {
	if m.errs == nil || m.errs.Len() == 0 {
		return nil
	}
	if m.errs.Len() == 1 {
		return &Error{Kind: KindParse, Message: m.errs.Errors[0].Error()}
	}
	return &Error{Kind: KindMultiple, Message: "multiple modules failed to compile", Cause: m.errs.ErrorOrNil()}
}
