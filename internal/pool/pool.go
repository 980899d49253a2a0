// Package pool provides a bounded map-over-inputs, join-all primitive for
// the pipeline's fan-out points.
package pool

import "sync"

// Map runs fn over items with at most workers goroutines and returns the
// results in input order. It blocks until every item has been processed;
// completion order never leaks into the result. fn must not panic — each
// item's failure handling belongs inside fn itself.
func Map[T, R any](items []T, workers int, fn func(T) R) []R {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results
	}
	if workers <= 0 || workers > len(items) {
		workers = len(items)
	}

	idxCh := make(chan int, len(items))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxCh {
				// Each goroutine writes to a unique index, which is safe.
				results[i] = fn(items[i])
			}
		}()
	}

	for i := range items {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	return results
}
