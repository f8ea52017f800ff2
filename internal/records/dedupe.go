package records

import (
	"errors"
	"io"
)

// Dedupe copies records from r to w, keeping the first record for each
// (repo, ref, path). It returns the number of duplicates dropped.
func Dedupe(r *Reader, w *Writer) (int, error) {
	seen := make(map[string]struct{})
	dupes := 0
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return dupes, nil
		}
		if err != nil {
			return dupes, err
		}
		key := rec.Key()
		if _, ok := seen[key]; ok {
			dupes++
			continue
		}
		seen[key] = struct{}{}
		if err := w.Append(rec); err != nil {
			return dupes, err
		}
	}
}
