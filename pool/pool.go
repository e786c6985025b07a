package pool

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/charmbracelet/log"
)

// Removal reports whether a scan callback keeps or evicts an element
type Removal uint8

const (
	// Keep leaves the element in use
	Keep Removal = iota
	// Remove returns the element to the free set
	Remove
)

// maxRecommendedSize is the element size in bytes above which swap-based
// removal and memory locality are known to degrade
const maxRecommendedSize = 160_000

// Pool is a fixed-capacity container recycling value slots between a free
// and an in-use set. Elements are constructed once; membership changes only
// through Get/GetForce and the removal scans. In-use order is allocation
// order but is not stable across removals (swap-with-last).
type Pool[T any] struct {
	free  []T
	inUse []T
}

func checkSize[T any]() {
	var zero T
	if size := unsafe.Sizeof(zero); size > maxRecommendedSize {
		log.Warn("pool element size exceeds recommended maximum",
			"size", size, "max", maxRecommendedSize)
	}
}

// New creates a pool of capacity elements produced by ctor, all free.
// A capacity of zero or less is a programmer error and panics.
func New[T any](capacity int, ctor func() T) *Pool[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("pool capacity must be positive, got %d", capacity))
	}
	checkSize[T]()

	free := make([]T, 0, capacity)
	for i := 0; i < capacity; i++ {
		free = append(free, ctor())
	}

	return &Pool[T]{
		free:  free,
		inUse: make([]T, 0, capacity),
	}
}

// NewIndexed creates a pool of capacity elements produced by ctor over
// indices 0..capacity, all free. Panics on non-positive capacity.
func NewIndexed[T any](capacity int, ctor func(i int) T) *Pool[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("pool capacity must be positive, got %d", capacity))
	}
	checkSize[T]()

	free := make([]T, 0, capacity)
	for i := 0; i < capacity; i++ {
		free = append(free, ctor(i))
	}

	return &Pool[T]{
		free:  free,
		inUse: make([]T, 0, capacity),
	}
}

// Get moves one element from free to in-use and returns it.
// Returns false when no free element is available. The pool does not reset
// element fields; the caller initializes the returned value.
func (p *Pool[T]) Get() (*T, bool) {
	n := len(p.free)
	if n == 0 {
		return nil, false
	}
	p.inUse = append(p.inUse, p.free[n-1])
	p.free = p.free[:n-1]
	return &p.inUse[len(p.inUse)-1], true
}

// GetForce returns an element like Get, but recycles the oldest in-use
// element in place when the pool is saturated. It always yields a handle;
// it panics only if the pool holds no elements at all, which the capacity
// invariant makes unreachable.
func (p *Pool[T]) GetForce() *T {
	if item, ok := p.Get(); ok {
		return item
	}
	if len(p.inUse) == 0 {
		panic("pool has no elements; capacity invariant violated")
	}
	return &p.inUse[0]
}

// Clear returns every in-use element to the free set, preserving values
func (p *Pool[T]) Clear() {
	p.free = append(p.free, p.inUse...)
	p.inUse = p.inUse[:0]
}

// Len returns the number of in-use elements
func (p *Pool[T]) Len() int {
	return len(p.inUse)
}

// Available returns the number of free elements
func (p *Pool[T]) Available() int {
	return len(p.free)
}

// Cap returns the fixed capacity
func (p *Pool[T]) Cap() int {
	return len(p.free) + len(p.inUse)
}

// Iter yields the in-use elements. The pool must not be mutated during
// traversal; use Run or Expire to remove while iterating.
func (p *Pool[T]) Iter() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for i := range p.inUse {
			if !yield(&p.inUse[i]) {
				return
			}
		}
	}
}

// IterAll yields every element, in-use first, then free
func (p *Pool[T]) IterAll() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for i := range p.inUse {
			if !yield(&p.inUse[i]) {
				return
			}
		}
		for i := range p.free {
			if !yield(&p.free[i]) {
				return
			}
		}
	}
}

// Run invokes f on each in-use element and evicts those reporting Remove.
// Removal swaps the last in-use element into the vacated slot without
// advancing the scan index, so the swapped-in element is visited in the same
// pass and no element is skipped.
func (p *Pool[T]) Run(f func(*T) Removal) {
	idx := 0
	for idx < len(p.inUse) {
		if f(&p.inUse[idx]) == Remove {
			p.swapRemove(idx)
		} else {
			idx++
		}
	}
}

// RunRef is Run with neighbor access: f additionally receives a read-only
// sequence of copies of every other in-use element, both before and after
// the visited one. Neither the element pointer nor the sequence may be
// retained past the call.
func (p *Pool[T]) RunRef(f func(*T, iter.Seq[T]) Removal) {
	idx := 0
	for idx < len(p.inUse) {
		others := func(yield func(T) bool) {
			for i := range p.inUse {
				if i == idx {
					continue
				}
				if !yield(p.inUse[i]) {
					return
				}
			}
		}
		if f(&p.inUse[idx], others) == Remove {
			p.swapRemove(idx)
		} else {
			idx++
		}
	}
}

// Expire evicts in-use elements for which pred reports Remove, with the
// same swap-removal scan as Run
func (p *Pool[T]) Expire(pred func(T) Removal) {
	idx := 0
	for idx < len(p.inUse) {
		if pred(p.inUse[idx]) == Remove {
			p.swapRemove(idx)
		} else {
			idx++
		}
	}
}

// swapRemove moves inUse[idx] to the free set, filling the hole with the
// last in-use element
func (p *Pool[T]) swapRemove(idx int) {
	last := len(p.inUse) - 1
	p.free = append(p.free, p.inUse[idx])
	p.inUse[idx] = p.inUse[last]
	p.inUse = p.inUse[:last]
}
