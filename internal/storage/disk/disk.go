// Package disk persists cache entries as one file per query name
// inside a configured directory.
package disk

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-query-cache/pkg/interfaces/store"
)

var (
	// ErrNoDirectory indicates the store was built without a root directory.
	ErrNoDirectory = errors.New("disk: directory is required")
	// ErrInvalidName indicates the entry name cannot be used as a file name.
	ErrInvalidName = errors.New("disk: invalid entry name")
)

// Store keeps one file per entry name directly under dir. Writes go
// through a temporary file and a rename so concurrent readers never
// observe a partially written entry.
type Store struct {
	dir string
}

var _ store.EntryStore = (*Store)(nil)

// New builds a disk store rooted at dir, creating it if absent.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, ErrNoDirectory
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("disk: create directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root directory holding the entries.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path an entry name maps to.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) Read(ctx context.Context, name string) ([]byte, bool, error) {
	if err := validateName(name); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("disk: read entry %q: %w", name, err)
	}
	return data, true, nil
}

func (s *Store) Write(ctx context.Context, name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}
	// The directory may have been removed out of band; recreate it.
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("disk: create directory: %w", err)
	}

	path := s.Path(name)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("disk: write entry %q: %w", name, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("disk: rename entry %q: %w", name, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := os.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("disk: delete entry %q: %w", name, err)
	}
	return nil
}

// validateName keeps entries confined to the root directory.
func validateName(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
