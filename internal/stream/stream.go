// Package stream provides a small lazy, channel-backed sequence type used
// throughout the resolution engine to represent "zero or more solutions
// produced on demand". A Stream is the Go shape of the engine's lazy
// generator/coroutine model: a producer goroutine pushes values as the
// consumer asks for them, and cancelling the context (or calling Close)
// stops the producer.
package stream

import "context"

// Stream is a lazy, pull-based sequence of values of type T. Values are
// consumed with Next; the stream is exhausted when Next's second return
// value is false. A Stream must eventually be drained or its context
// cancelled, or the producer goroutine leaks.
type Stream[T any] struct {
	ch     chan T
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New starts a producer goroutine that calls produce, passing it a yield
// function. yield blocks until the consumer calls Next, or the stream's
// context is done, whichever comes first. produce returning ends the
// stream.
func New[T any](ctx context.Context, produce func(ctx context.Context, yield func(T) bool)) *Stream[T] {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream[T]{
		ch:     make(chan T),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		defer close(s.ch)
		yield := func(v T) bool {
			select {
			case s.ch <- v:
				return true
			case <-ctx.Done():
				return false
			}
		}
		produce(ctx, yield)
	}()
	return s
}

// Empty returns a stream with no values.
func Empty[T any]() *Stream[T] {
	return New[T](context.Background(), func(ctx context.Context, yield func(T) bool) {})
}

// Once returns a stream that yields exactly one value.
func Once[T any](v T) *Stream[T] {
	return New[T](context.Background(), func(ctx context.Context, yield func(T) bool) {
		yield(v)
	})
}

// Next blocks until a value is available, the stream is exhausted, or ctx
// is done. The returned bool is false in the latter two cases, and also
// when the stream has already been closed or its own context cancelled.
func (s *Stream[T]) Next(ctx context.Context) (T, bool) {
	var zero T
	if s.ctx.Err() != nil {
		return zero, false
	}
	select {
	case v, ok := <-s.ch:
		return v, ok
	case <-ctx.Done():
		s.Close()
		return zero, false
	}
}

// Close cancels the producer. Safe to call multiple times and safe to
// call even after the stream has been fully drained.
func (s *Stream[T]) Close() {
	s.cancel()
}

// Collect drains the stream into a slice, honoring ctx cancellation and an
// optional limit (limit <= 0 means unlimited).
func Collect[T any](ctx context.Context, s *Stream[T], limit int) []T {
	defer s.Close()
	var out []T
	for limit <= 0 || len(out) < limit {
		v, ok := s.Next(ctx)
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

// Map lazily transforms every value of s with f.
func Map[T, U any](ctx context.Context, s *Stream[T], f func(T) U) *Stream[U] {
	return New[U](ctx, func(ctx context.Context, yield func(U) bool) {
		defer s.Close()
		for {
			v, ok := s.Next(ctx)
			if !ok {
				return
			}
			if !yield(f(v)) {
				return
			}
		}
	})
}

// FlatMap lazily expands every value of s into a sub-stream and
// concatenates them in order, depth-first — the shape a Conjunction needs
// to fold its terms' solution streams into a Cartesian product.
func FlatMap[T, U any](ctx context.Context, s *Stream[T], f func(T) *Stream[U]) *Stream[U] {
	return New[U](ctx, func(ctx context.Context, yield func(U) bool) {
		defer s.Close()
		for {
			v, ok := s.Next(ctx)
			if !ok {
				return
			}
			inner := f(v)
			for {
				iv, ok := inner.Next(ctx)
				if !ok {
					break
				}
				if !yield(iv) {
					inner.Close()
					return
				}
			}
		}
	})
}

// Concat yields the values of each stream in turn, left to right — the
// shape a Disjunction needs for its ordered list of cases.
func Concat[T any](ctx context.Context, streams ...*Stream[T]) *Stream[T] {
	return New[T](ctx, func(ctx context.Context, yield func(T) bool) {
		for _, s := range streams {
			for {
				v, ok := s.Next(ctx)
				if !ok {
					break
				}
				if !yield(v) {
					s.Close()
					for _, rest := range streams {
						rest.Close()
					}
					return
				}
			}
		}
	})
}

// First returns the first value of s, if any, and closes the stream
// either way. Used to implement Procession's "take the first solution of
// S1" cut semantics.
func First[T any](ctx context.Context, s *Stream[T]) (T, bool) {
	defer s.Close()
	return s.Next(ctx)
}
