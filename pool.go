package clipforge

import (
	"context"
	"errors"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of jobs processed at once.
type Pool struct {
	pipeline *Pipeline
	sem      *semaphore.Weighted
	workers  int
}

// NewPool creates a pool of workers slots; non-positive means runtime.NumCPU().
func NewPool(pipeline *Pipeline, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{
		pipeline: pipeline,
		sem:      semaphore.NewWeighted(int64(workers)),
		workers:  workers,
	}
}

// Workers returns the concurrency limit.
func (p *Pool) Workers() int {
	return p.workers
}

// Submit waits for a free slot and processes job on the calling goroutine.
// ctx only bounds the wait; once started, a job runs to completion.
func (p *Pool) Submit(ctx context.Context, job Job) (*Result, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Pool.Submit",
			"job_id":   job.ID,
			"error":    err.Error(),
		}).Warn("Gave up waiting for a worker slot")
		return nil, err
	}
	defer p.sem.Release(1)

	return p.pipeline.Process(job)
}

// RunAll processes jobs concurrently and returns their results in input
// order. A failed job does not cancel the others; the error joins every
// job error and context error encountered.
func (p *Pool) RunAll(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))
	errs := make([]error, len(jobs))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i := range jobs {
		g.Go(func() error {
			results[i], errs[i] = p.Submit(ctx, jobs[i])
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}
