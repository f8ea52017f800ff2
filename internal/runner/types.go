package runner

import (
	"time"

	"github.com/inocensus/inocensus/internal/query"
	"github.com/inocensus/inocensus/internal/records"
)

// FetchRun represents the download and scan of a single list entry
type FetchRun struct {
	Index     int // Position in the file list
	Ref       query.FileRef
	Record    *records.Record // Set when Status is FetchOK
	Bytes     int
	StartTime time.Time
	EndTime   time.Time
	Status    FetchStatus
	Error     error // Non-nil unless Status is FetchOK
}

// FetchStatus represents the outcome of a FetchRun
type FetchStatus int

const (
	FetchPending FetchStatus = iota
	FetchOK
	FetchSkipped // the server answered without usable content
	FetchFailed  // no answer after retries, or cancelled
)

// String returns a string representation of FetchStatus
func (fs FetchStatus) String() string {
	switch fs {
	case FetchPending:
		return "pending"
	case FetchOK:
		return "ok"
	case FetchSkipped:
		return "skipped"
	case FetchFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Duration returns the run duration
func (fr *FetchRun) Duration() time.Duration {
	if fr.EndTime.IsZero() {
		return time.Since(fr.StartTime)
	}
	return fr.EndTime.Sub(fr.StartTime)
}

// RunSummary summarizes a set of fetch runs
type RunSummary struct {
	Total         int
	OK            int
	Skipped       int
	Failed        int
	Bytes         int64
	TotalDuration time.Duration
}

// Add folds other into s
func (s *RunSummary) Add(other *RunSummary) {
	s.Total += other.Total
	s.OK += other.OK
	s.Skipped += other.Skipped
	s.Failed += other.Failed
	s.Bytes += other.Bytes
	s.TotalDuration += other.TotalDuration
}

// AllReached returns true if every entry got an answer from the server
func (s *RunSummary) AllReached() bool {
	return s.Failed == 0
}

// ExitCode returns the appropriate exit code for the summarized runs
func (s *RunSummary) ExitCode() int {
	if s.AllReached() {
		return 0
	}
	return 1
}
