package query

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	inoerrors "github.com/inocensus/inocensus/internal/errors"
	"github.com/inocensus/inocensus/internal/logger"
)

const filesQuery = `SELECT repo_name AS repo, ref, path
FROM ` + "`bigquery-public-data.github_repos.files`" + `
WHERE ENDS_WITH(path, @extension)`

// BigQuerySource lists files from the public GitHub dataset
type BigQuerySource struct {
	client *bigquery.Client
}

// NewBigQuerySource creates a client billed to projectID
func NewBigQuerySource(ctx context.Context, projectID string) (*BigQuerySource, error) {
	if projectID == "" {
		return nil, inoerrors.NewConnectionError("bigquery", "no project configured",
			"Set GOOGLE_CLOUD_PROJECT or pass --project.")
	}
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, inoerrors.NewConnectionError("bigquery", err.Error(),
			"Check GOOGLE_APPLICATION_CREDENTIALS or run 'gcloud auth application-default login'.")
	}
	return &BigQuerySource{client: client}, nil
}

// Files runs the dataset query and collects every matching file
func (s *BigQuerySource) Files(ctx context.Context, extension string) ([]FileRef, error) {
	q := s.client.Query(filesQuery)
	q.Parameters = []bigquery.QueryParameter{{Name: "extension", Value: extension}}

	logger.Debug("Running dataset query for *%s", extension)
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}

	var refs []FileRef
	for {
		var ref FileRef
		err := it.Next(&ref)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return refs, fmt.Errorf("failed to read query results: %w", err)
		}
		refs = append(refs, ref)
	}
	logger.Debug("Query returned %d files", len(refs))
	return refs, nil
}

// Close releases the client
func (s *BigQuerySource) Close() error {
	return s.client.Close()
}
