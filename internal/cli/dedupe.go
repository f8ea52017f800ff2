package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/inocensus/inocensus/internal/records"
)

// DefaultDedupedPath derives the output path of dedupe from the records file
func DefaultDedupedPath(recordsFile string) string {
	ext := filepath.Ext(recordsFile)
	return strings.TrimSuffix(recordsFile, ext) + ".dedup" + ext
}

// Dedupe copies the records file to output, dropping repeated entries
func Dedupe(config *Config, output string) (int, error) {
	if output == "" {
		output = DefaultDedupedPath(config.RecordsFile)
	}
	if output == config.RecordsFile {
		return 1, fmt.Errorf("output must differ from the input file %s", output)
	}

	reader, err := records.OpenReader(config.RecordsFile)
	if err != nil {
		return 1, err
	}
	defer reader.Close()

	f, err := os.Create(output)
	if err != nil {
		return 1, fmt.Errorf("failed to create output file: %w", err)
	}
	writer := records.NewWriter(f)

	dupes, err := records.Dedupe(reader, writer)
	if cerr := writer.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 1, err
	}

	fmt.Printf("%d duplicates found\n", dupes)
	fmt.Printf("%d records written to %s\n", writer.Count(), output)
	return 0, nil
}
