// Package service provides the table operations shared by the CLI and the
// HTTP server.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/raphaelgruber/wdtable/internal/grid"
	"github.com/raphaelgruber/wdtable/internal/metrics"
	"github.com/raphaelgruber/wdtable/internal/models"
)

// ElementSource yields element records in a given language.
type ElementSource interface {
	Elements(ctx context.Context, lang string) ([]*models.Element, error)
}

// NuclideSource yields nuclide records in a given language.
type NuclideSource interface {
	Nuclides(ctx context.Context, lang string) ([]*models.Nuclide, error)
}

// TableService assembles periodic tables and nuclide charts from its sources.
type TableService struct {
	layout   grid.Layout
	elements ElementSource
	nuclides NuclideSource
	metrics  *metrics.Collector
	registry *metrics.Registry
}

// NewTableService creates a new table service. collector and registry may be nil.
func NewTableService(layout grid.Layout, elements ElementSource, nuclides NuclideSource, collector *metrics.Collector, registry *metrics.Registry) *TableService {
	return &TableService{
		layout:   layout,
		elements: elements,
		nuclides: nuclides,
		metrics:  collector,
		registry: registry,
	}
}

// Layout returns the table layout in use.
func (s *TableService) Layout() grid.Layout {
	return s.layout
}

// PeriodicTable loads the elements of lang and lays them out.
func (s *TableService) PeriodicTable(ctx context.Context, lang string) (*grid.ElementResult, error) {
	start := time.Now()

	elements, err := s.elements.Elements(ctx, lang)
	if err != nil {
		return nil, fmt.Errorf("load elements: %w", err)
	}

	result := grid.BuildElementTable(s.layout, slices.Values(elements))
	s.metrics.RecordTiming(metrics.OpElementTable, time.Since(start))
	if s.registry != nil {
		s.registry.RecordTable("elements", len(result.Elements), len(result.Incomplete), len(result.Duplicates))
	}

	slog.Debug("periodic table built",
		"lang", lang,
		"records", len(elements),
		"placed", len(result.Elements),
		"incomplete", len(result.Incomplete),
		"duplicates", len(result.Duplicates),
		"duration_ms", time.Since(start).Milliseconds())
	if len(result.Duplicates) > 0 {
		slog.Warn("duplicate elements dropped", "lang", lang, "count", len(result.Duplicates))
	}
	return result, nil
}

// NuclideChart loads the nuclides of lang, tags them by half-life and primary
// decay mode, and lays them out.
func (s *TableService) NuclideChart(ctx context.Context, lang string) (*grid.NuclideResult, error) {
	start := time.Now()

	nuclides, err := s.nuclides.Nuclides(ctx, lang)
	if err != nil {
		return nil, fmt.Errorf("load nuclides: %w", err)
	}

	// Tag copies so that sources handing out shared records stay untouched
	tagged := make([]*models.Nuclide, len(nuclides))
	for i, n := range nuclides {
		tagged[i] = n.Clone()
	}
	grid.DecorateByHalfLife(tagged)
	grid.DecorateByDecayMode(tagged)

	result := grid.BuildNuclideTable(slices.Values(tagged))
	s.metrics.RecordTiming(metrics.OpNuclideTable, time.Since(start))
	if s.registry != nil {
		s.registry.RecordTable("nuclides", len(result.Nuclides), len(result.Incomplete), len(result.Duplicates))
	}

	slog.Debug("nuclide chart built",
		"lang", lang,
		"records", len(nuclides),
		"placed", len(result.Nuclides),
		"incomplete", len(result.Incomplete),
		"duplicates", len(result.Duplicates),
		"max_z", result.MaxAtomicNumber,
		"max_n", result.MaxNeutronNumber,
		"duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

// ElementProps returns the requested properties of the periodic table.
func (s *TableService) ElementProps(ctx context.Context, lang string, props []string) (map[string]any, error) {
	result, err := s.PeriodicTable(ctx, lang)
	if err != nil {
		return nil, err
	}
	return grid.SelectProps(result.Props(), props), nil
}

// NuclideProps returns the requested properties of the nuclide chart.
func (s *TableService) NuclideProps(ctx context.Context, lang string, props []string) (map[string]any, error) {
	result, err := s.NuclideChart(ctx, lang)
	if err != nil {
		return nil, err
	}
	return grid.SelectProps(result.Props(), props), nil
}
