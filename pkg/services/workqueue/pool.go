// Package workqueue provides the bounded worker pool the batch pipeline
// runs order jobs on. Each job is one order's pipeline stage; the pool
// bounds how many orders run at once and never retries on its own.
package workqueue

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// PoolConfig configures the worker pool.
type PoolConfig struct {
	MaxConcurrent int // maximum orders in flight (default: 4)
}

// DefaultPoolConfig returns sensible defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{MaxConcurrent: 4}
}

// Pool executes jobs with bounded parallelism. A semaphore limits the
// number of in-flight jobs; results stream out in completion order.
type Pool struct {
	config PoolConfig
	logger *zap.Logger
}

// NewPool creates a new worker pool.
func NewPool(config PoolConfig, logger *zap.Logger) *Pool {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 4
	}
	return &Pool{
		config: config,
		logger: logger.Named("workqueue"),
	}
}

// Job is one unit of work, keyed by the order it belongs to.
type Job[T any] struct {
	ID      string
	Execute func(ctx context.Context) (T, error)
}

// JobResult pairs a job's output with its key.
type JobResult[T any] struct {
	ID     string
	Result T
	Err    error
}

// Process executes all jobs with bounded parallelism and returns results
// in completion order. A failing job never stops the rest of the batch.
func Process[T any](ctx context.Context, pool *Pool, jobs []Job[T]) []JobResult[T] {
	if len(jobs) == 0 {
		return nil
	}

	resultsChan := make(chan JobResult[T], len(jobs))
	sem := make(chan struct{}, pool.config.MaxConcurrent)

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(job Job[T]) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				var zero T
				resultsChan <- JobResult[T]{ID: job.ID, Result: zero, Err: ctx.Err()}
				return
			}

			result, err := job.Execute(ctx)
			resultsChan <- JobResult[T]{ID: job.ID, Result: result, Err: err}
		}(job)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := make([]JobResult[T], 0, len(jobs))
	for result := range resultsChan {
		if result.Err != nil {
			pool.logger.Warn("job failed",
				zap.String("job_id", result.ID),
				zap.Error(result.Err))
		}
		results = append(results, result)
	}
	return results
}
