package cli

import (
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/wdtable/internal/grid"
	"github.com/raphaelgruber/wdtable/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleElements() []*models.Element {
	return []*models.Element{
		{ItemID: "Q556", Number: models.Ptr(1), Symbol: models.Ptr("H"), Label: models.Ptr("hydrogen"),
			Period: models.Ptr(1), Group: models.Ptr(1), Classes: []string{"diatomic-nonmetal"}},
		{ItemID: "Q560", Number: models.Ptr(2), Symbol: models.Ptr("He"), Label: models.Ptr("helium"),
			Period: models.Ptr(1), Group: models.Ptr(18)},
		{ItemID: "Q999", Symbol: models.Ptr("Xx")},
	}
}

func sampleNuclides() []*models.Nuclide {
	return []*models.Nuclide{
		{ItemID: "Q2348", AtomicNumber: models.Ptr(0), NeutronNumber: models.Ptr(1), Classes: []string{"hl1e2"}},
		{ItemID: "Q54389", AtomicNumber: models.Ptr(1), NeutronNumber: models.Ptr(2), Classes: []string{"hl1e6", "beta-minus"}},
		{ItemID: "Q1"},
	}
}

func TestRenderPeriodicTable(t *testing.T) {
	result := grid.BuildElementTable(grid.DefaultLayout(), slices.Values(sampleElements()))

	out := renderPeriodicTable(result, defaultTheme)
	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), result.Periods)

	first := lines[0]
	assert.Equal(t, result.Groups*elementCellWidth, lipgloss.Width(first))
	assert.True(t, strings.HasPrefix(first, "H "))
	assert.True(t, strings.HasSuffix(strings.TrimRight(first, " "), "He"))

	assert.Contains(t, out, "*1")
	assert.Contains(t, out, "*3")
	assert.Contains(t, out, "Incomplete (1): Q999")
	assert.NotContains(t, out, "Duplicates")
}

func TestRenderElementCell(t *testing.T) {
	tests := []struct {
		name string
		cell models.Cell
		want string
	}{
		{"element", models.ElementCell{Element: &models.Element{Symbol: models.Ptr("Og")}}, "Og"},
		{"indicator", models.IndicatorCell{Index: 2}, "*2"},
		{"unknown", models.UnknownCell{}, "?"},
		{"empty", models.EmptyCell{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderElementCell(tt.cell, defaultTheme)
			assert.Equal(t, elementCellWidth, lipgloss.Width(got))
			assert.Equal(t, tt.want, strings.TrimSpace(got))
		})
	}
}

func TestRenderNuclideChart(t *testing.T) {
	result := grid.BuildNuclideTable(slices.Values(sampleNuclides()))

	out := renderNuclideChart(result, -1, 0, defaultTheme)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "1     █", lines[0])
	assert.Equal(t, "0    █ ", lines[1])
	assert.Contains(t, out, "2 nuclides, N 0-2")
	assert.Contains(t, out, "Incomplete (1): Q1")

	// Limited to Z 0 and cut to a single column
	out = renderNuclideChart(result, 0, chartLabelWidth+1, defaultTheme)
	lines = strings.Split(out, "\n")
	assert.Equal(t, "0    ", lines[0])
	assert.NotContains(t, out, "1     █")
}

func TestHalfLifeColor(t *testing.T) {
	assert.Len(t, halfLifeColors, len(grid.HalfLifeBuckets))

	color, ok := halfLifeColor([]string{"beta-minus", "hl1e9"})
	require.True(t, ok)
	assert.Equal(t, halfLifeColors[0], color)

	color, ok = halfLifeColor([]string{grid.DefaultHalfLifeClass})
	require.True(t, ok)
	assert.Equal(t, halfLifeColors[len(halfLifeColors)-1], color)

	_, ok = halfLifeColor([]string{"alpha-decay"})
	assert.False(t, ok)
}

func TestElementColor(t *testing.T) {
	color, ok := elementColor(&models.Element{Classes: []string{"metalloid"}})
	require.True(t, ok)
	assert.Equal(t, classColors["metalloid"], color)

	_, ok = elementColor(&models.Element{})
	assert.False(t, ok)
}
