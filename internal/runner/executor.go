package runner

import (
	"context"
	"errors"
	"time"

	inoerrors "github.com/inocensus/inocensus/internal/errors"
	"github.com/inocensus/inocensus/internal/fetch"
	"github.com/inocensus/inocensus/internal/logger"
	"github.com/inocensus/inocensus/internal/parser"
	"github.com/inocensus/inocensus/internal/query"
	"github.com/inocensus/inocensus/internal/records"
)

// Fetcher downloads the content of a file reference
type Fetcher interface {
	Fetch(ctx context.Context, ref query.FileRef) (string, error)
}

// Executor downloads and scans list entries
type Executor struct {
	fetcher Fetcher
	scanner *parser.Scanner
	timeout time.Duration
}

// NewExecutor creates a new executor. timeout bounds each entry including
// retries; zero means no bound beyond the parent context.
func NewExecutor(fetcher Fetcher, scanner *parser.Scanner, timeout time.Duration) *Executor {
	if scanner == nil {
		scanner = parser.NewScanner()
	}
	return &Executor{
		fetcher: fetcher,
		scanner: scanner,
		timeout: timeout,
	}
}

// Execute fetches and scans a single entry
func (e *Executor) Execute(ctx context.Context, index int, ref query.FileRef) *FetchRun {
	run := &FetchRun{
		Index:     index,
		Ref:       ref,
		StartTime: time.Now(),
		Status:    FetchPending,
	}

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	content, err := e.fetcher.Fetch(runCtx, ref)
	run.EndTime = time.Now()
	if err != nil {
		run.Error = err
		run.Status = classify(err)
		if run.Status == FetchSkipped {
			logger.Debug("Skipping %s: %v", ref.Key(), err)
		} else {
			logger.Warn("Failed to fetch %s: %v", ref.Key(), err)
		}
		return run
	}

	result := e.scanner.Parse(content)
	if result.Skipped > 0 {
		logger.Debug("%s: %d unrecognised bytes skipped", ref.Key(), result.Skipped)
	}
	run.Record = records.NewRecord(ref, content, result)
	run.Bytes = len(content)
	run.Status = FetchOK
	return run
}

// classify maps a fetch error to a run status. Any HTTP answer other than
// 200, and oversized bodies, mean the entry is skipped; the rest failed.
func classify(err error) FetchStatus {
	if errors.Is(err, fetch.ErrTooLarge) {
		return FetchSkipped
	}
	var fetchErr *inoerrors.FetchError
	if errors.As(err, &fetchErr) && fetchErr.StatusCode != 0 {
		return FetchSkipped
	}
	return FetchFailed
}

// ExecuteBatch runs entries sequentially; indexes start at offset
func (e *Executor) ExecuteBatch(ctx context.Context, offset int, refs []query.FileRef) []*FetchRun {
	runs := make([]*FetchRun, 0, len(refs))
	for i, ref := range refs {
		if ctx.Err() != nil {
			runs = append(runs, cancelledRun(offset+i, ref, ctx.Err()))
			continue
		}
		logger.Debug("Fetching %s", ref.Key())
		runs = append(runs, e.Execute(ctx, offset+i, ref))
	}
	return runs
}

func cancelledRun(index int, ref query.FileRef, err error) *FetchRun {
	now := time.Now()
	return &FetchRun{
		Index:     index,
		Ref:       ref,
		StartTime: now,
		EndTime:   now,
		Status:    FetchFailed,
		Error:     err,
	}
}

// SummarizeRuns creates a summary of fetch results
func SummarizeRuns(runs []*FetchRun) *RunSummary {
	summary := &RunSummary{
		Total: len(runs),
	}

	for _, run := range runs {
		summary.TotalDuration += run.Duration()

		switch run.Status {
		case FetchOK:
			summary.OK++
			summary.Bytes += int64(run.Bytes)
		case FetchSkipped:
			summary.Skipped++
		case FetchFailed:
			summary.Failed++
		}
	}

	return summary
}
