package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/inocensus/inocensus/internal/logger"
	"github.com/inocensus/inocensus/internal/records"
	"github.com/inocensus/inocensus/internal/report"
	"github.com/inocensus/inocensus/internal/tally"
)

// TallyFileName is the JSON snapshot written next to the listings
const TallyFileName = "tally.json"

// RecordSource streams stored records
type RecordSource interface {
	LoadRecords(ctx context.Context, fn func(*records.Record) error) error
}

// FileRecords reads records from a JSON-lines file
type FileRecords struct {
	Path string
}

// LoadRecords calls fn for every record in the file
func (f FileRecords) LoadRecords(ctx context.Context, fn func(*records.Record) error) error {
	return records.ForEach(f.Path, func(rec *records.Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(rec)
	})
}

// Analyse tallies every record from source and writes the four listings
// plus a JSON snapshot of the tally into the output directory
func Analyse(ctx context.Context, config *Config, source RecordSource) (int, error) {
	startTime := time.Now()

	collector := tally.NewCollector()
	err := source.LoadRecords(ctx, func(rec *records.Record) error {
		collector.Add(rec)
		return nil
	})
	if err != nil {
		return 1, fmt.Errorf("failed to load records: %w", err)
	}

	return writeTally(config, collector, startTime)
}

// writeTally is shared by analyse and scan
func writeTally(config *Config, collector *tally.Collector, startTime time.Time) (int, error) {
	t := collector.Tally()

	paths, err := report.WriteListings(config.OutputDir, t, report.FormatType(config.Format))
	if err != nil {
		return 1, err
	}
	for _, p := range paths {
		logger.Debug("Wrote %s", p)
	}

	store := tally.NewStore(filepath.Join(config.OutputDir, TallyFileName))
	if err := store.Save(t); err != nil {
		return 1, err
	}

	fmt.Printf("Total repos: %d\n", t.Totals.Repos)
	fmt.Printf("Total files: %d\n", t.Totals.Files)
	fmt.Printf("Time:        %v\n", time.Since(startTime).Round(time.Millisecond))
	fmt.Printf("Listings written to %s\n", config.OutputDir)
	return 0, nil
}
