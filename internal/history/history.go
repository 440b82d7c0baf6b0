// Package history keeps a short record of recent reconciliation runs.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultMaxAge keeps roughly one release cycle of runs
	DefaultMaxAge = 30 * 24 * time.Hour
	maxEntries    = 50
)

// Entry is one recorded run
type Entry struct {
	TargetBranch string    `json:"target_branch"`
	SourceBranch string    `json:"source_branch"`
	Tickets      []string  `json:"tickets"`
	Sources      []string  `json:"sources"`
	Failed       []string  `json:"failed,omitempty"`
	Remote       bool      `json:"remote,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store reads and writes the history file
type Store struct {
	path   string
	maxAge time.Duration
	now    func() time.Time
}

// DefaultPath returns the history file location in the user config dir
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "atttix-history.json"), nil
}

// NewStore creates a Store; maxAge <= 0 uses DefaultMaxAge
func NewStore(path string, maxAge time.Duration) *Store {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Store{path: path, maxAge: maxAge, now: time.Now}
}

// Path returns the history file path
func (s *Store) Path() string {
	return s.path
}

// Load returns the entries younger than the max age, newest first.
// A missing file is an empty history. Pruned entries are written back.
func (s *Store) Load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing history %s: %w", s.path, err)
	}

	cutoff := s.now().Add(-s.maxAge)
	valid := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.CreatedAt.After(cutoff) {
			valid = append(valid, e)
		}
	}

	// Rewrite file if we pruned anything
	if len(valid) != len(entries) {
		if err := s.save(valid); err != nil {
			return valid, err
		}
	}
	return valid, nil
}

// Add records a run at the front of the history
func (s *Store) Add(e Entry) error {
	entries, err := s.Load()
	if err != nil {
		// Start over rather than lose every future run to a corrupt file
		entries = nil
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}

	entries = append([]Entry{e}, entries...)
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	return s.save(entries)
}

// Clear removes the history file
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing history: %w", err)
	}
	return nil
}

func (s *Store) save(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}
