// Package parallel splits index ranges across goroutines for row-wise work
// on matrices.
package parallel

import (
	"runtime"
	"sync"
)

// ParallelizeWithThreshold calls fn over [0, n) in contiguous chunks. When n
// is below threshold, fn runs once on the calling goroutine. Otherwise the
// range is split across at most runtime.NumCPU() goroutines and the call
// blocks until all chunks finish. Chunks never overlap, so fn may write to
// disjoint rows of a shared matrix without locking.
func ParallelizeWithThreshold(n, threshold int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if n < threshold {
		fn(0, n)
		return
	}
	Parallelize(n, runtime.NumCPU(), fn)
}

// Parallelize calls fn over [0, n) split into at most workers chunks.
func Parallelize(n, workers int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
