package records

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Progress persists how many entries of the file list have been processed
type Progress struct {
	path string
}

// NewProgress creates a progress marker stored at path
func NewProgress(path string) *Progress {
	return &Progress{path: path}
}

// Load returns the stored count, or 0 when no marker exists yet
func (p *Progress) Load() (int, error) {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read progress file: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid progress file %s: %q", p.path, text)
	}
	return n, nil
}

// Save stores done, replacing the marker atomically
func (p *Progress) Save(done int) error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".progress-*")
	if err != nil {
		return fmt.Errorf("failed to write progress file: %w", err)
	}
	if _, err := tmp.WriteString(strconv.Itoa(done)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write progress file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p.path)
}

// Reset removes the marker
func (p *Progress) Reset() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path returns where the marker is stored
func (p *Progress) Path() string {
	return p.path
}
