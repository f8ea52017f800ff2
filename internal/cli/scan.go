package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/inocensus/inocensus/internal/discovery"
	"github.com/inocensus/inocensus/internal/logger"
	"github.com/inocensus/inocensus/internal/parser"
	"github.com/inocensus/inocensus/internal/query"
	"github.com/inocensus/inocensus/internal/records"
	"github.com/inocensus/inocensus/internal/tally"
)

// localRef is the ref recorded for files read from disk
const localRef = "local"

// Scan mines a local directory: every file with the configured extension
// is scanned and tallied, and the listings are written as by Analyse. The
// first directory below root stands in for the repository.
func Scan(ctx context.Context, config *Config, root string) (int, error) {
	startTime := time.Now()
	logger.Debug("Discovering *%s files in %s", config.Extension, root)

	files, err := discovery.Discover(root, config.Extension)
	if err != nil {
		return 1, fmt.Errorf("failed to discover files: %w", err)
	}
	if len(files) == 0 {
		fmt.Printf("No %s files found in %s\n", config.Extension, root)
		return 0, nil
	}
	logger.Debug("Found %d file(s)", len(files))

	scanner, err := newScanner(config)
	if err != nil {
		return 1, err
	}

	collector := tally.NewCollector()
	for i := range files {
		if err := ctx.Err(); err != nil {
			return 1, err
		}
		parsed, err := parser.Parse(&files[i], scanner)
		if err != nil {
			logger.Warn("Skipping %s: %v", files[i].RelativePath, err)
			continue
		}
		ref := query.FileRef{
			Repo: discovery.TopLevelDir(files[i].RelativePath),
			Ref:  localRef,
			Path: files[i].RelativePath,
		}
		collector.Add(records.NewRecord(ref, "", parsed.Result))
	}

	return writeTally(config, collector, startTime)
}
