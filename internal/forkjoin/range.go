package forkjoin

import (
	"fmt"
	"iter"
)

// Splittable is a length-known sequence that can be cut in two at any index.
// Splitting a Splittable of length L at 0 ≤ at ≤ L yields pieces covering
// [0,at) and [at,L), each of which is again Splittable.
type Splittable[S any] interface {
	Len() int
	SplitAt(at int) (S, S)
}

// Shared is a read-only view over a slice. Any number of Shared views may
// cover the same elements concurrently.
type Shared[T any] struct {
	items  []T
	offset int
}

// NewShared returns a view over all of items.
func NewShared[T any](items []T) Shared[T] {
	return Shared[T]{items: items}
}

// Len returns the number of elements in the view.
func (s Shared[T]) Len() int {
	return len(s.items)
}

// Offset returns the index of the view's first element in the original slice.
func (s Shared[T]) Offset() int {
	return s.offset
}

// SplitAt cuts the view into [0,at) and [at,Len).
func (s Shared[T]) SplitAt(at int) (Shared[T], Shared[T]) {
	checkSplit(at, len(s.items))
	return Shared[T]{items: s.items[:at:at], offset: s.offset},
		Shared[T]{items: s.items[at:], offset: s.offset + at}
}

// At returns the element at local index i.
func (s Shared[T]) At(i int) T {
	return s.items[i]
}

// All yields local indexes and elements in original order.
func (s Shared[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range s.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Exclusive is a mutable view over a slice. The two halves of a split
// never share backing storage, so a task holding an Exclusive may write its
// elements without synchronization.
type Exclusive[T any] struct {
	items  []T
	offset int
}

// NewExclusive returns a mutable view over all of items. The caller must not
// touch items until every view derived from it is gone.
func NewExclusive[T any](items []T) Exclusive[T] {
	return Exclusive[T]{items: items}
}

// Len returns the number of elements in the view.
func (e Exclusive[T]) Len() int {
	return len(e.items)
}

// Offset returns the index of the view's first element in the original slice.
func (e Exclusive[T]) Offset() int {
	return e.offset
}

// SplitAt cuts the view into [0,at) and [at,Len). The receiver must not be
// used afterwards.
func (e Exclusive[T]) SplitAt(at int) (Exclusive[T], Exclusive[T]) {
	checkSplit(at, len(e.items))
	return Exclusive[T]{items: e.items[:at:at], offset: e.offset},
		Exclusive[T]{items: e.items[at:], offset: e.offset + at}
}

// At returns a pointer to the element at local index i.
func (e Exclusive[T]) At(i int) *T {
	return &e.items[i]
}

// All yields local indexes and element pointers in original order.
func (e Exclusive[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := range e.items {
			if !yield(i, &e.items[i]) {
				return
			}
		}
	}
}

// Zip walks a read-only input sequence and an exclusive output sequence of
// the same length in lockstep.
type Zip[A, B any] struct {
	In  Shared[A]
	Out Exclusive[B]
}

// NewZip pairs in and out. It panics if their lengths differ.
func NewZip[A, B any](in []A, out []B) Zip[A, B] {
	if len(in) != len(out) {
		panic(fmt.Sprintf("forkjoin: zip of lengths %d and %d", len(in), len(out)))
	}
	return Zip[A, B]{In: NewShared(in), Out: NewExclusive(out)}
}

// Len returns the number of pairs.
func (z Zip[A, B]) Len() int {
	return z.In.Len()
}

// Offset returns the index of the first pair in the original slices.
func (z Zip[A, B]) Offset() int {
	return z.In.Offset()
}

// SplitAt cuts both sides at the same index.
func (z Zip[A, B]) SplitAt(at int) (Zip[A, B], Zip[A, B]) {
	inL, inR := z.In.SplitAt(at)
	outL, outR := z.Out.SplitAt(at)
	return Zip[A, B]{In: inL, Out: outL}, Zip[A, B]{In: inR, Out: outR}
}

// All yields each input element with a pointer to its output slot, in order.
func (z Zip[A, B]) All() iter.Seq2[A, *B] {
	return func(yield func(A, *B) bool) {
		for i := 0; i < z.In.Len(); i++ {
			if !yield(z.In.At(i), z.Out.At(i)) {
				return
			}
		}
	}
}

func checkSplit(at, n int) {
	if at < 0 || at > n {
		panic(fmt.Sprintf("forkjoin: split index %d out of range [0,%d]", at, n))
	}
}
