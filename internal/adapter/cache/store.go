// Package cache is the durable store for computed diagnostics. Entries are
// whole files keyed by the request parameters; they are created once,
// reused on identical requests, and only ever replaced wholesale.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harel-coffee/ClimWIP-auto/internal/domain"
)

// Key identifies one diagnostic result. Two requests with equal keys always
// map to the same file, which is what makes the existence check a cache.
type Key struct {
	Input       string // input file identity (base name without extension)
	Window      *domain.TimeWindow
	Season      domain.Season
	Aggregation domain.Aggregation
	Region      domain.Region
	MaskOcean   bool
}

// Filename renders the deterministic output file name for the key.
func (k Key) Filename() string {
	season := string(k.Season)
	if season == "" {
		season = string(domain.SeasonANN)
	}
	masked := ""
	if k.MaskOcean {
		masked = "_masked"
	}
	return fmt.Sprintf("%s_%s_%s_%s_%s%s.nc",
		k.Input, k.Window.Key(), season, k.Aggregation.Key(), k.Region.Key(), masked)
}

// InputIdentity derives the input identity from a path: the base name
// without the .nc extension.
func InputIdentity(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".nc")
}

// Store keeps diagnostic files in a single directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store { return &Store{dir: dir} }

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the file path a key maps to.
func (s *Store) Path(k Key) string { return filepath.Join(s.dir, k.Filename()) }

// PathFor returns the file path for an explicitly named entry.
func (s *Store) PathFor(name string) string { return filepath.Join(s.dir, name) }

// Exists reports whether the key already has a persisted result.
func (s *Store) Exists(k Key) bool {
	_, err := os.Stat(s.Path(k))
	return err == nil
}

// Write persists an entry through a temp file renamed into place, so a
// concurrent reader never observes a partial file and concurrent same-key
// writers resolve to the last complete write.
func (s *Store) Write(path string, write func(tmp string) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.nc")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	if err := write(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to publish cache entry: %w", err)
	}
	return nil
}
