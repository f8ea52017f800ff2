package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/inocensus/inocensus/internal/tally"
)

// Listing is one sorted table ready to be written
type Listing struct {
	Name      tally.Listing
	Entries   []tally.Entry // count descending, then key ascending
	Totals    tally.Totals
	Timestamp time.Time
}

// NewListing extracts and sorts one table of t
func NewListing(t *tally.Tally, name tally.Listing) *Listing {
	return &Listing{
		Name:      name,
		Entries:   tally.Sorted(t.Table(name)),
		Totals:    t.Totals,
		Timestamp: t.Timestamp,
	}
}

// Formatter is an interface for listing formatters
type Formatter interface {
	// Format formats a listing and writes to the writer
	Format(l *Listing, writer io.Writer) error

	// FormatString returns a listing as a string
	FormatString(l *Listing) (string, error)

	// Name returns the name of this formatter
	Name() string

	// Extension returns the file extension used by WriteListings
	Extension() string
}

// FormatType represents supported report formats
type FormatType string

const (
	FormatLST  FormatType = "lst"
	FormatJSON FormatType = "json"
	FormatHTML FormatType = "html"
)

// GetFormatter returns a formatter for the specified format type
func GetFormatter(format FormatType) (Formatter, error) {
	switch format {
	case FormatLST:
		return NewLSTReporter(), nil
	case FormatJSON:
		return NewJSONReporter(), nil
	case FormatHTML:
		return NewHTMLReporter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: lst, json, html)", format)
	}
}

// FormatToWriter formats a listing to a writer using the specified format
func FormatToWriter(l *Listing, format FormatType, writer io.Writer) error {
	formatter, err := GetFormatter(format)
	if err != nil {
		return err
	}
	return formatter.Format(l, writer)
}

// ValidFormat checks if a format string is valid
func ValidFormat(format string) bool {
	switch FormatType(format) {
	case FormatLST, FormatJSON, FormatHTML:
		return true
	default:
		return false
	}
}

// SupportedFormats returns a list of supported format names
func SupportedFormats() []string {
	return []string{string(FormatLST), string(FormatJSON), string(FormatHTML)}
}

// WriteListings writes the four listings of t into dir, one file each,
// and returns the paths written
func WriteListings(dir string, t *tally.Tally, format FormatType) ([]string, error) {
	formatter, err := GetFormatter(format)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	for _, name := range tally.Listings() {
		path := filepath.Join(dir, string(name)+"."+formatter.Extension())
		if err := writeListing(path, NewListing(t, name), formatter); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeListing(path string, l *Listing, formatter Formatter) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := formatter.Format(l, f); err != nil {
		f.Close()
		return fmt.Errorf("failed to format %s: %w", l.Name, err)
	}
	return f.Close()
}
