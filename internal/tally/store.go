package tally

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store handles persistence of a Tally
type Store struct {
	filePath string
}

// NewStore creates a new tally store
func NewStore(filePath string) *Store {
	return &Store{
		filePath: filePath,
	}
}

// Save writes the tally to disk as JSON
func (s *Store) Save(t *Tally) error {
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tally: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write tally file: %w", err)
	}

	return nil
}

// Load reads a tally from disk
func (s *Store) Load() (*Tally, error) {
	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("tally file not found: %s", s.filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tally file: %w", err)
	}

	var t Tally
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse tally file: %w", err)
	}
	return &t, nil
}

// Exists checks if the tally file exists
func (s *Store) Exists() bool {
	_, err := os.Stat(s.filePath)
	return err == nil
}

// Path returns the file path where the tally is stored
func (s *Store) Path() string {
	return s.filePath
}
