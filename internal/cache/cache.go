// Package cache stores normalized dataset JSON on disk and decides whether a
// stored artifact is recent enough to stand in for a fresh download.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DefaultMaxAge is how long an artifact stays fresh.
const DefaultMaxAge = 2 * 24 * time.Hour

// Freshness is the outcome of a cache check.
type Freshness int

const (
	Stale Freshness = iota
	Fresh
)

func (f Freshness) String() string {
	if f == Fresh {
		return "fresh"
	}
	return "stale"
}

// Entry describes one artifact on disk.
type Entry struct {
	Path    string
	Exists  bool
	ModTime time.Time
	Age     time.Duration
	State   Freshness
}

// Store is a directory of cache artifacts.
type Store struct {
	Root   string
	MaxAge time.Duration

	now func() time.Time
}

// New returns a Store rooted at root. A non-positive maxAge selects
// DefaultMaxAge.
func New(root string, maxAge time.Duration) *Store {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Store{Root: root, MaxAge: maxAge, now: time.Now}
}

// Path returns the artifact path for name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.Root, name)
}

// Check reports whether the artifact is Fresh. It creates the root directory
// when missing and never reads artifact content.
func (s *Store) Check(name string) (Freshness, error) {
	e, err := s.Stat(name)
	if err != nil {
		return Stale, err
	}
	return e.State, nil
}

// Stat describes the artifact for name, creating the root directory when
// missing.
func (s *Store) Stat(name string) (Entry, error) {
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return Entry{}, fmt.Errorf("cache: create %s: %w", s.Root, err)
	}

	e := Entry{Path: s.Path(name), State: Stale}
	info, err := os.Stat(e.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return e, nil
	}
	if err != nil {
		return Entry{}, fmt.Errorf("cache: stat %s: %w", e.Path, err)
	}

	e.Exists = true
	e.ModTime = info.ModTime()
	e.Age = s.now().Sub(e.ModTime)
	// A modification time in the future counts as fresh.
	if e.Age < s.MaxAge {
		e.State = Fresh
	}
	return e, nil
}

// Write stores text as the artifact for name. The content is written to a
// temporary file next to the artifact and renamed into place, so readers
// never see a partial artifact. Names may contain subdirectories.
func (s *Store) Write(name, text string) (string, error) {
	path := s.Path(name)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cache: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("cache: create temp for %s: %w", name, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return "", fmt.Errorf("cache: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("cache: close %s: %w", name, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return "", fmt.Errorf("cache: chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("cache: install %s: %w", path, err)
	}
	return path, nil
}

// Read returns the artifact content for name.
func (s *Store) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("cache: read %s: %w", name, err)
	}
	return data, nil
}
