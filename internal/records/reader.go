package records

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	inoerrors "github.com/inocensus/inocensus/internal/errors"
)

// lineCutset is stripped from both ends of every line. Interrupted appends
// can leave NUL padding behind.
const lineCutset = "\x00 \t\r\n"

// Reader iterates over a JSON-lines records file
type Reader struct {
	br     *bufio.Reader
	name   string
	line   int
	closer io.Closer
}

// NewReader wraps r; name appears in error messages
func NewReader(r io.Reader, name string) *Reader {
	rd := &Reader{br: bufio.NewReaderSize(r, 64*1024), name: name}
	if c, ok := r.(io.Closer); ok {
		rd.closer = c
	}
	return rd
}

// OpenReader opens the records file at path
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records file: %w", err)
	}
	return NewReader(f, path), nil
}

// Next returns the next record, or io.EOF when the input is exhausted.
// Blank lines are skipped.
func (r *Reader) Next() (*Record, error) {
	for {
		raw, err := r.br.ReadBytes('\n')
		if len(raw) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to read %s: %w", r.name, err)
		}
		r.line++

		text := bytes.Trim(raw, lineCutset)
		if len(text) == 0 {
			if err != nil {
				return nil, io.EOF
			}
			continue
		}

		var rec Record
		if jerr := json.Unmarshal(text, &rec); jerr != nil {
			return nil, inoerrors.NewRecordError(r.name, r.line, jerr.Error())
		}
		if rec.Functions == nil {
			rec.Functions = map[string]int{}
		}
		return &rec, nil
	}
}

// Line returns the number of the last line read
func (r *Reader) Line() int {
	return r.line
}

// Close closes the underlying file, if any
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// ForEach calls fn for every record in the file at path
func ForEach(path string, fn func(*Record) error) error {
	r, err := OpenReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}
