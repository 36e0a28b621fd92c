package utils

import (
	"context"
	"os"
	"strconv"
	"sync"
)

// DefaultConcurrency is the worker count used when none is configured.
const DefaultConcurrency = 4

// GetConcurrencyLimit returns ORGSIGNAL_CONCURRENCY or DefaultConcurrency.
func GetConcurrencyLimit() int {
	val := os.Getenv("ORGSIGNAL_CONCURRENCY")
	if val == "" {
		return DefaultConcurrency
	}
	limit, err := strconv.Atoi(val)
	if err != nil || limit <= 0 {
		return DefaultConcurrency
	}
	return limit
}

// Worker processes one item.
type Worker[T any, R any] func(ctx context.Context, item T) (R, error)

// WorkerPool runs a Worker over a slice of items with bounded concurrency.
// Results keep the input order. A panicking worker yields a *PanicError for
// its item; remaining items are still processed. Items not started before
// ctx is cancelled get ctx.Err().
type WorkerPool[T any, R any] struct {
	numWorkers int
	worker     Worker[T, R]
}

// NewWorkerPool creates a pool. numWorkers <= 0 uses GetConcurrencyLimit.
func NewWorkerPool[T any, R any](numWorkers int, worker Worker[T, R]) *WorkerPool[T, R] {
	if numWorkers <= 0 {
		numWorkers = GetConcurrencyLimit()
	}
	return &WorkerPool[T, R]{
		numWorkers: numWorkers,
		worker:     worker,
	}
}

type indexed[T any] struct {
	item  T
	index int
}

// ProcessItems processes items and blocks until every worker has returned.
func (wp *WorkerPool[T, R]) ProcessItems(ctx context.Context, items []T) ([]R, []error) {
	if len(items) == 0 {
		return nil, nil
	}

	itemsChan := make(chan indexed[T], len(items))
	for i, item := range items {
		itemsChan <- indexed[T]{item: item, index: i}
	}
	close(itemsChan)

	results := make([]R, len(items))
	errs := make([]error, len(items))
	started := make([]bool, len(items))
	var wg sync.WaitGroup

	workers := wp.numWorkers
	if workers > len(items) {
		workers = len(items)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range itemsChan {
				if ctx.Err() != nil {
					return
				}
				started[it.index] = true
				func() {
					defer RecoverWithCallback(func(err error) {
						errs[it.index] = err
					})
					results[it.index], errs[it.index] = wp.worker(ctx, it.item)
				}()
			}
		}()
	}
	wg.Wait()

	for i := range items {
		if !started[i] {
			errs[i] = ctx.Err()
		}
	}
	return results, errs
}
