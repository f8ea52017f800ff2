package runner

import (
	"context"
	"sync"

	"github.com/inocensus/inocensus/internal/logger"
	"github.com/inocensus/inocensus/internal/query"
)

// WorkerPool manages parallel fetching
type WorkerPool struct {
	executor   *Executor
	maxWorkers int
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(executor *Executor, maxWorkers int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		executor:   executor,
		maxWorkers: maxWorkers,
	}
}

// ExecuteParallel runs refs with the configured concurrency limit. Runs are
// returned in input order; run indexes start at offset.
func (wp *WorkerPool) ExecuteParallel(ctx context.Context, offset int, refs []query.FileRef) []*FetchRun {
	numRefs := len(refs)
	if numRefs == 0 {
		return nil
	}

	// If only one worker or one entry, fall back to sequential execution
	if wp.maxWorkers == 1 || numRefs == 1 {
		return wp.executor.ExecuteBatch(ctx, offset, refs)
	}

	workers := wp.maxWorkers
	if workers > numRefs {
		workers = numRefs
	}
	logger.Debug("Starting parallel fetch with %d workers for %d files", workers, numRefs)

	jobs := make(chan *fetchJob, numRefs)
	results := make(chan *fetchResult, numRefs)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go wp.worker(ctx, i, jobs, results, &wg)
	}

	for i := range refs {
		jobs <- &fetchJob{ref: refs[i], index: i}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	runs := make([]*FetchRun, numRefs)
	for result := range results {
		runs[result.index] = result.run
		logger.Debug("[%s] %s (worker %d)", result.run.Status, result.run.Ref.Key(), result.workerID)
	}

	// Indexes are rebased once all workers are done
	for _, run := range runs {
		run.Index += offset
	}
	return runs
}

// fetchJob represents a single entry to fetch
type fetchJob struct {
	ref   query.FileRef
	index int
}

// fetchResult represents the result of a fetch
type fetchResult struct {
	run      *FetchRun
	index    int
	workerID int
}

// worker is the goroutine that processes fetch jobs
func (wp *WorkerPool) worker(ctx context.Context, workerID int, jobs <-chan *fetchJob, results chan<- *fetchResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		var run *FetchRun
		if ctx.Err() != nil {
			run = cancelledRun(job.index, job.ref, ctx.Err())
		} else {
			run = wp.executor.Execute(ctx, job.index, job.ref)
		}
		results <- &fetchResult{
			run:      run,
			index:    job.index,
			workerID: workerID,
		}
	}
}
