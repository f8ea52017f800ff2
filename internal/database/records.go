package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/inocensus/inocensus/internal/records"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS source_files (
    id         uuid PRIMARY KEY,
    repo       text NOT NULL,
    ref        text NOT NULL,
    path       text NOT NULL,
    content    text NOT NULL,
    includes   text[] NOT NULL DEFAULT '{}',
    functions  jsonb NOT NULL DEFAULT '{}',
    fetched_at timestamptz NOT NULL DEFAULT now(),
    UNIQUE (repo, ref, path)
)`

// EnsureSchema creates the source_files table if it does not exist
func (p *Pool) EnsureSchema(ctx context.Context) error {
	if _, err := p.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveRecord inserts rec unless a row for the same file exists already.
// It reports whether a row was inserted.
func (p *Pool) SaveRecord(ctx context.Context, rec *records.Record) (bool, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		id, _ = uuid.Parse(records.RecordID(rec.FileRef()))
	}
	includes := rec.Includes
	if includes == nil {
		includes = []string{}
	}
	functions := rec.Functions
	if functions == nil {
		functions = map[string]int{}
	}

	tag, err := p.Exec(ctx, `
INSERT INTO source_files (id, repo, ref, path, content, includes, functions)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT DO NOTHING`,
		[16]byte(id), rec.Repo, rec.Ref, rec.Path, rec.Content, includes, functions)
	if err != nil {
		return false, fmt.Errorf("failed to save %s: %w", rec.Key(), err)
	}
	return tag.RowsAffected() == 1, nil
}

// LoadRecords streams every stored record to fn in (repo, ref, path) order
func (p *Pool) LoadRecords(ctx context.Context, fn func(*records.Record) error) error {
	rows, err := p.Query(ctx, `
SELECT id::text, repo, ref, path, content, includes, functions
FROM source_files
ORDER BY repo, ref, path`)
	if err != nil {
		return fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec records.Record
		if err := rows.Scan(&rec.ID, &rec.Repo, &rec.Ref, &rec.Path, &rec.Content, &rec.Includes, &rec.Functions); err != nil {
			return fmt.Errorf("failed to scan record: %w", err)
		}
		if err := fn(&rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

// CountRecords returns the number of stored records
func (p *Pool) CountRecords(ctx context.Context) (int, error) {
	var n int
	if err := p.QueryRow(ctx, "SELECT count(*) FROM source_files").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}
