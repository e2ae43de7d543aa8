// Package store keeps generated documents on the local filesystem.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Extension is the only file type the store serves.
const Extension = ".docx"

// PartialGrace is the minimum age of a partial write before Cleanup may
// remove it, whatever maxAge is passed.
const PartialGrace = 10 * time.Minute

const partialPrefix = ".partial-"

var (
	ErrInvalidName = errors.New("invalid artifact name")
	ErrNotFound    = errors.New("artifact not found")
)

// Store is a flat directory of artifacts. Names are unique per render, so
// concurrent writers never share a path.
type Store struct {
	dir string
	log *slog.Logger
	now func() time.Time
}

// New creates dir if needed.
func New(dir string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Store{dir: dir, log: log, now: time.Now}, nil
}

// Dir returns the backing directory.
func (s *Store) Dir() string { return s.dir }

// Sanitize reduces name to its base and checks it is a plain .docx file
// name.
func Sanitize(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	switch {
	case base == "." || base == "/" || base == "":
		return "", ErrInvalidName
	case strings.HasPrefix(base, "."):
		return "", ErrInvalidName
	case !strings.EqualFold(filepath.Ext(base), Extension):
		return "", ErrInvalidName
	}
	return base, nil
}

// Save writes data under name atomically and returns the final path.
func (s *Store) Save(name string, data []byte) (string, error) {
	name, err := Sanitize(name)
	if err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(s.dir, partialPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close artifact: %w", err)
	}
	final := filepath.Join(s.dir, name)
	if err := os.Rename(tmpPath, final); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("publish artifact: %w", err)
	}
	return final, nil
}

// Open returns the artifact for reading. The caller closes it.
func (s *Store) Open(name string) (*os.File, os.FileInfo, error) {
	name, err := Sanitize(name)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open artifact: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat artifact: %w", err)
	}
	return f, info, nil
}

// Cleanup removes artifacts last modified more than maxAge ago and returns
// how many were deleted. Partial writes are removed once they are older than
// both maxAge and PartialGrace, so a Save in flight is never touched.
func (s *Store) Cleanup(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("list output dir: %w", err)
	}
	now := s.now()
	cutoff := now.Add(-maxAge)
	partialCutoff := now.Add(-max(maxAge, PartialGrace))
	deleted := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		partial := strings.HasPrefix(name, partialPrefix)
		if !partial && !strings.EqualFold(filepath.Ext(name), Extension) {
			continue
		}
		limit := cutoff
		if partial {
			limit = partialCutoff
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(limit) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			s.log.Warn("cleanup remove failed", "file", name, "error", err)
			continue
		}
		if !partial {
			deleted++
		}
	}
	if deleted > 0 {
		s.log.Info("artifacts cleaned up", "deleted", deleted, "max_age", maxAge)
	}
	return deleted, nil
}
