package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/inocensus/inocensus/internal/tally"
)

// JSONReporter formats listings as JSON
type JSONReporter struct{}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{}
}

// jsonListing is the document layout; entries keep their sorted order
type jsonListing struct {
	Listing   string        `json:"listing"`
	Timestamp time.Time     `json:"timestamp"`
	Totals    tally.Totals  `json:"totals"`
	Entries   []tally.Entry `json:"entries"`
}

func (r *JSONReporter) marshal(l *Listing) ([]byte, error) {
	doc := jsonListing{
		Listing:   string(l.Name),
		Timestamp: l.Timestamp,
		Totals:    l.Totals,
		Entries:   l.Entries,
	}
	if doc.Entries == nil {
		doc.Entries = []tally.Entry{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal listing to JSON: %w", err)
	}
	return data, nil
}

// Format formats the listing as JSON and writes to the writer
func (r *JSONReporter) Format(l *Listing, writer io.Writer) error {
	data, err := r.marshal(l)
	if err != nil {
		return err
	}

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}

	_, err = writer.Write([]byte("\n"))
	return err
}

// FormatString returns the listing as a JSON string
func (r *JSONReporter) FormatString(l *Listing) (string, error) {
	data, err := r.marshal(l)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Name returns the name of this reporter
func (r *JSONReporter) Name() string {
	return "json"
}

// Extension returns the file extension
func (r *JSONReporter) Extension() string {
	return "json"
}
