// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workpool runs batches of independent I/O tasks on a bounded
// executor. Each task gets its own deadline; a task that overruns it is
// abandoned and reported as context.DeadlineExceeded without holding up
// the rest of the batch. An abandoned task keeps its worker slot until it
// actually returns.
package workpool

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc"
	"golang.org/x/sync/semaphore"
)

// Executor bounds how many tasks run at once. Create one per process and
// share it between requests.
type Executor struct {
	sem     *semaphore.Weighted
	workers int
	timeout time.Duration
}

// NewExecutor returns an executor running at most workers tasks at once,
// each limited to taskTimeout. Non-positive values are clamped to 1 worker
// and no per-task deadline.
func NewExecutor(workers int, taskTimeout time.Duration) *Executor {
	if workers <= 0 {
		workers = 1
	}
	return &Executor{
		sem:     semaphore.NewWeighted(int64(workers)),
		workers: workers,
		timeout: taskTimeout,
	}
}

// Workers returns the concurrency bound.
func (e *Executor) Workers() int { return e.workers }

// TaskTimeout returns the per-task deadline, zero meaning none.
func (e *Executor) TaskTimeout() time.Duration { return e.timeout }

// Task is one unit of work.
type Task[T any] func(ctx context.Context) (T, error)

// Outcome is the result of one task. Err is non-nil when the task failed,
// panicked, timed out or never got a worker because ctx ended.
type Outcome[T any] struct {
	Value   T
	Err     error
	Elapsed time.Duration
}

// Map runs every task on ex and returns one outcome per task in input
// order. It returns once every task has finished or been abandoned.
func Map[T any](ctx context.Context, ex *Executor, tasks []Task[T]) []Outcome[T] {
	out := make([]Outcome[T], len(tasks))
	var wg conc.WaitGroup
	for i, task := range tasks {
		wg.Go(func() {
			out[i] = run(ctx, ex, task)
		})
	}
	wg.Wait()
	return out
}

type result[T any] struct {
	value T
	err   error
}

func run[T any](ctx context.Context, ex *Executor, task Task[T]) Outcome[T] {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return Outcome[T]{Err: err}
	}
	if err := ex.sem.Acquire(ctx, 1); err != nil {
		return Outcome[T]{Err: err, Elapsed: time.Since(start)}
	}

	// The task goroutine releases the slot, so an abandoned task holds it
	// until it returns.
	taskCtx, cancel := ctx, context.CancelFunc(func() {})
	if ex.timeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, ex.timeout)
	}
	defer cancel()

	done := make(chan result[T], 1)
	go func() {
		var r result[T]
		defer ex.sem.Release(1)
		defer func() {
			if p := recover(); p != nil {
				r.err = fmt.Errorf("task panicked: %v", p)
			}
			done <- r
		}()
		r.value, r.err = task(taskCtx)
	}()

	select {
	case r := <-done:
		return Outcome[T]{Value: r.value, Err: r.err, Elapsed: time.Since(start)}
	case <-taskCtx.Done():
		return Outcome[T]{Err: taskCtx.Err(), Elapsed: time.Since(start)}
	}
}
