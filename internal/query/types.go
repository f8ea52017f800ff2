package query

import (
	"context"
	"strings"
)

// DefaultRawBase is the host serving raw repository content
const DefaultRawBase = "https://raw.githubusercontent.com"

// FileRef identifies one file in one repository at one ref
type FileRef struct {
	Repo string `json:"repo" bigquery:"repo"`
	Ref  string `json:"ref" bigquery:"ref"`
	Path string `json:"path" bigquery:"path"`
}

// Branch returns the last segment of the ref ("refs/heads/main" -> "main")
func (f FileRef) Branch() string {
	if i := strings.LastIndex(f.Ref, "/"); i >= 0 {
		return f.Ref[i+1:]
	}
	return f.Ref
}

// Key returns the identity used for deduplication
func (f FileRef) Key() string {
	return f.Repo + "/" + f.Ref + "/" + f.Path
}

// RawURL returns the download URL on the default raw content host
func (f FileRef) RawURL() string {
	return f.URL(DefaultRawBase)
}

// URL returns the download URL relative to base
func (f FileRef) URL(base string) string {
	return strings.TrimRight(base, "/") + "/" + f.Repo + "/" + f.Branch() + "/" + strings.TrimLeft(f.Path, "/")
}

// Source lists files with a given extension
type Source interface {
	Files(ctx context.Context, extension string) ([]FileRef, error)
}
