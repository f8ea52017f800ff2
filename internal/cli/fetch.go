package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/inocensus/inocensus/internal/logger"
	"github.com/inocensus/inocensus/internal/query"
	"github.com/inocensus/inocensus/internal/records"
	"github.com/inocensus/inocensus/internal/runner"
)

// batchFactor sets how many entries each worker handles between progress saves
const batchFactor = 8

// RecordStore receives every fetched record, e.g. the PostgreSQL sink
type RecordStore interface {
	SaveRecord(ctx context.Context, rec *records.Record) (bool, error)
}

// ContentArchive receives the raw content of every fetched file
type ContentArchive interface {
	Put(ctx context.Context, ref query.FileRef, content string) error
}

// Sinks are the optional destinations besides the records file
type Sinks struct {
	Store   RecordStore
	Archive ContentArchive
}

// Fetch downloads and scans every entry of the file list not yet covered
// by the progress marker, appending records as it goes
func Fetch(ctx context.Context, config *Config, fetcher runner.Fetcher, sinks Sinks) (int, error) {
	startTime := time.Now()

	refs, err := query.LoadList(config.FileList)
	if err != nil {
		return 1, err
	}

	progress := records.NewProgress(config.ProgressFile)
	done, err := progress.Load()
	if err != nil {
		return 1, err
	}
	if done >= len(refs) {
		fmt.Printf("Nothing to do: %d of %d entries already processed\n", done, len(refs))
		return 0, nil
	}
	if done > 0 {
		logger.Info("Resuming at entry %d of %d", done+1, len(refs))
	}

	scanner, err := newScanner(config)
	if err != nil {
		return 1, err
	}

	writer, err := records.OpenWriter(config.RecordsFile)
	if err != nil {
		return 1, err
	}
	defer writer.Close()

	executor := runner.NewExecutor(fetcher, scanner, 0)
	pool := runner.NewWorkerPool(executor, config.Parallelism)
	batchSize := config.Parallelism * batchFactor

	var summary runner.RunSummary
	stored := 0
	for done < len(refs) && ctx.Err() == nil {
		end := done + batchSize
		if end > len(refs) {
			end = len(refs)
		}

		runs := pool.ExecuteParallel(ctx, done, refs[done:end])
		completed, n, err := persistRuns(ctx, runs, writer, sinks)
		stored += n
		summary.Add(runner.SummarizeRuns(runs[:completed]))
		if err != nil {
			if serr := progress.Save(done + completed); serr != nil {
				logger.Warn("Failed to save progress marker %s: %v", progress.Path(), serr)
			}
			return 1, err
		}

		done += completed
		if err := progress.Save(done); err != nil {
			return 1, err
		}
		logger.Debug("Processed %d of %d entries", done, len(refs))
	}

	fmt.Printf("\n")
	fmt.Printf("Files:   %d ok, %d skipped, %d failed, %d total\n",
		summary.OK, summary.Skipped, summary.Failed, summary.Total)
	fmt.Printf("Content: %s\n", humanize.IBytes(uint64(summary.Bytes)))
	if sinks.Store != nil {
		fmt.Printf("Stored:  %d new rows\n", stored)
	}
	fmt.Printf("Time:    %v\n", time.Since(startTime).Round(time.Millisecond))
	fmt.Printf("Records appended to %s (%d of %d entries processed)\n", config.RecordsFile, done, len(refs))

	if ctx.Err() != nil {
		return 1, fmt.Errorf("fetch interrupted: %w", ctx.Err())
	}
	return summary.ExitCode(), nil
}

// persistRuns writes the records of runs in order. It stops at the first
// run cut short by cancellation so that entry is fetched again on resume.
// It returns how many runs were handled and how many rows the store took.
func persistRuns(ctx context.Context, runs []*runner.FetchRun, writer *records.Writer, sinks Sinks) (int, int, error) {
	stored := 0
	for i, run := range runs {
		if run.Status == runner.FetchFailed && ctx.Err() != nil &&
			(errors.Is(run.Error, context.Canceled) || errors.Is(run.Error, context.DeadlineExceeded)) {
			return i, stored, nil
		}
		if run.Status != runner.FetchOK {
			continue
		}

		if err := writer.Append(run.Record); err != nil {
			return i, stored, err
		}
		if sinks.Store != nil {
			inserted, err := sinks.Store.SaveRecord(ctx, run.Record)
			if err != nil {
				return i + 1, stored, err
			}
			if inserted {
				stored++
			}
		}
		if sinks.Archive != nil {
			if err := sinks.Archive.Put(ctx, run.Ref, run.Record.Content); err != nil {
				logger.Warn("Failed to archive %s: %v", run.Ref.Key(), err)
			}
		}
	}
	return len(runs), stored, nil
}
