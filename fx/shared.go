package fx

import (
	"sync/atomic"
)

// Releaser is implemented by every GPU object that holds device memory.
type Releaser interface {
	Release()
}

// Shared is a reference counted handle to a GPU object. Every holder of a
// Shared owns exactly one reference and must call Release once it is done.
// The underlying object is released when the last reference is dropped.
type Shared[T Releaser] struct {
	value T
	refs  atomic.Int32
}

// NewShared wraps value with a single reference owned by the caller.
func NewShared[T Releaser](value T) *Shared[T] {
	s := &Shared[T]{value: value}
	s.refs.Store(1)
	return s
}

// Value returns the wrapped object. It must not be released directly.
func (s *Shared[T]) Value() T {
	return s.value
}

// Acquire adds a reference and returns s for convenience. The caller must
// already hold a reference; a freed handle is never revived.
func (s *Shared[T]) Acquire() *Shared[T] {
	if !s.TryAcquire() {
		panic("fx: Acquire on a released handle")
	}

	return s
}

// TryAcquire adds a reference unless the handle was already freed.
func (s *Shared[T]) TryAcquire() bool {
	for {
		refs := s.refs.Load()
		if refs <= 0 {
			return false
		}

		if s.refs.CompareAndSwap(refs, refs+1) {
			return true
		}
	}
}

// Release drops one reference. Releasing an already freed handle is a no-op.
func (s *Shared[T]) Release() {
	for {
		refs := s.refs.Load()
		if refs <= 0 {
			return
		}

		if s.refs.CompareAndSwap(refs, refs-1) {
			if refs == 1 {
				s.value.Release()
			}

			return
		}
	}
}

// Refs returns the number of live references.
func (s *Shared[T]) Refs() int {
	return int(s.refs.Load())
}

// Alive reports whether the underlying object has not been released yet.
func (s *Shared[T]) Alive() bool {
	return s.refs.Load() > 0
}
