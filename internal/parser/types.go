package parser

import (
	"sort"

	"github.com/inocensus/inocensus/internal/discovery"
)

// Result holds the structural facts extracted from one source text
type Result struct {
	Includes map[string]struct{} // header paths from #include
	Calls    map[string]int      // call-like name (dotted for members) -> occurrences
	Skipped  int                 // bytes dropped by the recovery policy
}

// NewResult creates an empty Result
func NewResult() *Result {
	return &Result{
		Includes: make(map[string]struct{}),
		Calls:    make(map[string]int),
	}
}

// SortedIncludes returns the include paths in ascending order
func (r *Result) SortedIncludes() []string {
	includes := make([]string, 0, len(r.Includes))
	for inc := range r.Includes {
		includes = append(includes, inc)
	}
	sort.Strings(includes)
	return includes
}

// Merge adds other's includes and call counts into r
func (r *Result) Merge(other *Result) {
	for inc := range other.Includes {
		r.Includes[inc] = struct{}{}
	}
	for name, count := range other.Calls {
		r.Calls[name] += count
	}
	r.Skipped += other.Skipped
}

// ParsedSource is a scanned file from the local filesystem
type ParsedSource struct {
	File   *discovery.DiscoveredFile
	Result *Result
}
