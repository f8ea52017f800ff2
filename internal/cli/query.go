package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/inocensus/inocensus/internal/logger"
	"github.com/inocensus/inocensus/internal/query"
)

// Query lists files with the configured extension from source and writes
// the file list
func Query(ctx context.Context, config *Config, source query.Source) (int, error) {
	startTime := time.Now()
	logger.Info("Querying files ending in %s", config.Extension)

	refs, err := source.Files(ctx, config.Extension)
	if err != nil {
		return 1, fmt.Errorf("query failed: %w", err)
	}

	if err := query.SaveList(config.FileList, refs); err != nil {
		return 1, err
	}

	fmt.Printf("Total rows: %d\n", len(refs))
	fmt.Printf("Time:       %v\n", time.Since(startTime).Round(time.Millisecond))
	fmt.Printf("File list written to %s\n", config.FileList)
	return 0, nil
}
