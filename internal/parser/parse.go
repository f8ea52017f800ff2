package parser

import (
	"fmt"
	"os"

	"github.com/inocensus/inocensus/internal/discovery"
)

// defaultScanner uses the C keyword set
var defaultScanner = NewScanner()

// Parse reads a discovered file and scans it
func Parse(file *discovery.DiscoveredFile, s *Scanner) (*ParsedSource, error) {
	if s == nil {
		s = defaultScanner
	}

	content, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return &ParsedSource{
		File:   file,
		Result: s.Parse(string(content)),
	}, nil
}

// ParseFile is a convenience function that parses a file path directly
func ParseFile(filePath string) (*ParsedSource, error) {
	file := &discovery.DiscoveredFile{
		Path:         filePath,
		RelativePath: filePath,
	}
	return Parse(file, nil)
}

// ParseText scans source text with the default scanner
func ParseText(src string) *Result {
	return defaultScanner.Parse(src)
}
