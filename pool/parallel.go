package pool

import (
	"runtime"
	"sync"
)

// ParEach invokes f on every in-use element across worker goroutines.
// The backing storage is partitioned into disjoint index ranges, one per
// worker, so no two workers ever alias an element and no locking is needed.
// workers <= 0 uses GOMAXPROCS. The pool must not be mutated by f.
func (p *Pool[T]) ParEach(workers int, f func(*T)) {
	parEach(p.inUse, workers, f)
}

// ParEachAll is ParEach over every element, in-use and free
func (p *Pool[T]) ParEachAll(workers int, f func(*T)) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		parEach(p.inUse, workers, f)
	}()
	go func() {
		defer wg.Done()
		parEach(p.free, workers, f)
	}()
	wg.Wait()
}

// parEach fans a slice out to workers in contiguous chunks
func parEach[T any](items []T, workers int, f func(*T)) {
	if len(items) == 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(items) {
		workers = len(items)
	}

	chunk := (len(items) + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < len(items); start += chunk {
		end := start + chunk
		if end > len(items) {
			end = len(items)
		}
		wg.Add(1)
		go func(part []T) {
			defer wg.Done()
			for i := range part {
				f(&part[i])
			}
		}(items[start:end])
	}
	wg.Wait()
}
