package query

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	inoerrors "github.com/inocensus/inocensus/internal/errors"
)

// WriteList writes refs as JSON lines to w
func WriteList(w io.Writer, refs []FileRef) error {
	enc := json.NewEncoder(w)
	for _, ref := range refs {
		if err := enc.Encode(ref); err != nil {
			return fmt.Errorf("failed to encode %s: %w", ref.Key(), err)
		}
	}
	return nil
}

// SaveList writes refs to path, replacing any previous list
func SaveList(path string, refs []FileRef) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file list: %w", err)
	}

	bw := bufio.NewWriter(f)
	if err := WriteList(bw, refs); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write file list: %w", err)
	}
	return f.Close()
}

// ReadList parses JSON lines of refs. Blank lines are skipped; name is used
// in error messages.
func ReadList(r io.Reader, name string) ([]FileRef, error) {
	var refs []FileRef
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		var ref FileRef
		if err := json.Unmarshal(text, &ref); err != nil {
			return nil, inoerrors.NewRecordError(name, line, err.Error())
		}
		refs = append(refs, ref)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return refs, nil
}

// LoadList reads the file list at path
func LoadList(path string) ([]FileRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file list: %w", err)
	}
	defer f.Close()
	return ReadList(f, path)
}
