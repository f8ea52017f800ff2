package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// LSTReporter writes one "key: count" line per entry
type LSTReporter struct{}

// NewLSTReporter creates a new plain listing reporter
func NewLSTReporter() *LSTReporter {
	return &LSTReporter{}
}

// Format writes the listing and flushes
func (r *LSTReporter) Format(l *Listing, writer io.Writer) error {
	bw := bufio.NewWriter(writer)
	for _, e := range l.Entries {
		if _, err := fmt.Fprintf(bw, "%s: %d\n", e.Key, e.Count); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatString returns the listing as a string
func (r *LSTReporter) FormatString(l *Listing) (string, error) {
	var buf strings.Builder
	if err := r.Format(l, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Name returns the name of this reporter
func (r *LSTReporter) Name() string {
	return "lst"
}

// Extension returns the file extension
func (r *LSTReporter) Extension() string {
	return "lst"
}
