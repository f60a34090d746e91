// Package snapshot reads and writes offline copies of the upstream records.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/raphaelgruber/wdtable/internal/metrics"
	"github.com/raphaelgruber/wdtable/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrLanguageMismatch is returned when a snapshot was taken in another language.
var ErrLanguageMismatch = errors.New("snapshot language mismatch")

// File is the on-disk snapshot format.
type File struct {
	Lang      string            `yaml:"lang"`
	FetchedAt time.Time         `yaml:"fetched_at"`
	Elements  []*models.Element `yaml:"elements,omitempty"`
	Nuclides  []*models.Nuclide `yaml:"nuclides,omitempty"`
}

// Write stores f as YAML at path, replacing any existing file.
func Write(path string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	// Write to a sibling and rename so readers never see a partial file
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.yaml")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Read loads a snapshot from path.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return &f, nil
}

// Source serves records from a snapshot file. The file is read on every
// call so that a re-exported snapshot is picked up without a restart.
type Source struct {
	Path    string
	Metrics *metrics.Collector // optional
}

// Elements returns the elements of the snapshot. An empty lang accepts any
// snapshot language.
func (s *Source) Elements(ctx context.Context, lang string) ([]*models.Element, error) {
	f, err := s.load(lang)
	if err != nil {
		return nil, err
	}
	return f.Elements, nil
}

// Nuclides returns the nuclides of the snapshot.
func (s *Source) Nuclides(ctx context.Context, lang string) ([]*models.Nuclide, error) {
	f, err := s.load(lang)
	if err != nil {
		return nil, err
	}
	return f.Nuclides, nil
}

func (s *Source) load(lang string) (*File, error) {
	start := time.Now()
	f, err := Read(s.Path)
	s.Metrics.RecordTiming(metrics.OpSnapshotLoad, time.Since(start))
	if err != nil {
		return nil, err
	}
	if lang != "" && f.Lang != "" && f.Lang != lang {
		return nil, fmt.Errorf("%w: %s holds %q, requested %q", ErrLanguageMismatch, s.Path, f.Lang, lang)
	}
	return f, nil
}

// FileSink saves fetched snapshots to a file.
type FileSink struct {
	Path string
}

// Save writes f to the sink's path, replacing any previous snapshot.
func (s FileSink) Save(ctx context.Context, f *File) error {
	return Write(s.Path, f)
}
