package main

import (
	"fmt"
	"os"

	"github.com/inocensus/inocensus/internal/discovery"
	"github.com/inocensus/inocensus/internal/parser"
	"github.com/inocensus/inocensus/internal/query"
	"github.com/inocensus/inocensus/internal/records"
	"github.com/inocensus/inocensus/internal/report"
	"github.com/inocensus/inocensus/internal/tally"
)

func main() {
	// Scan the bundled sample sketches
	files, err := discovery.Discover("testdata/sketches", ".ino")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error discovering sketches: %v\n", err)
		os.Exit(1)
	}

	collector := tally.NewCollector()
	for i := range files {
		parsed, err := parser.Parse(&files[i], nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error scanning %s: %v\n", files[i].RelativePath, err)
			os.Exit(1)
		}
		ref := query.FileRef{
			Repo: discovery.TopLevelDir(files[i].RelativePath),
			Ref:  "local",
			Path: files[i].RelativePath,
		}
		collector.Add(records.NewRecord(ref, "", parsed.Result))
	}

	// Generate HTML listings
	written, err := report.WriteListings("testdata/html_demo", collector.Tally(), report.FormatHTML)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating listings: %v\n", err)
		os.Exit(1)
	}

	for _, path := range written {
		fmt.Printf("✓ HTML listing generated: %s\n", path)
	}
	totals := collector.Totals()
	fmt.Printf("  %d repos, %d files\n", totals.Repos, totals.Files)
}
