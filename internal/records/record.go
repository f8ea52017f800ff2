package records

import (
	"github.com/google/uuid"

	"github.com/inocensus/inocensus/internal/parser"
	"github.com/inocensus/inocensus/internal/query"
)

// recordNamespace scopes record IDs so they never collide with other UUIDv5 users
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/inocensus/inocensus/records"))

// Record is one fetched and scanned file
type Record struct {
	ID        string         `json:"id"`
	Repo      string         `json:"repo"`
	Ref       string         `json:"ref"`
	Path      string         `json:"path"`
	Content   string         `json:"content"`
	Includes  []string       `json:"includes"`
	Functions map[string]int `json:"functions"`
}

// NewRecord builds a record from a file reference, its content and its scan result
func NewRecord(ref query.FileRef, content string, result *parser.Result) *Record {
	functions := make(map[string]int, len(result.Calls))
	for name, n := range result.Calls {
		functions[name] = n
	}
	return &Record{
		ID:        RecordID(ref),
		Repo:      ref.Repo,
		Ref:       ref.Ref,
		Path:      ref.Path,
		Content:   content,
		Includes:  result.SortedIncludes(),
		Functions: functions,
	}
}

// RecordID returns the deterministic ID of the file at ref
func RecordID(ref query.FileRef) string {
	return uuid.NewSHA1(recordNamespace, []byte(ref.Key())).String()
}

// FileRef returns the reference the record was fetched from
func (r *Record) FileRef() query.FileRef {
	return query.FileRef{Repo: r.Repo, Ref: r.Ref, Path: r.Path}
}

// Key returns the deduplication key
func (r *Record) Key() string {
	return r.FileRef().Key()
}
