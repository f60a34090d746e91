package grid

import (
	"slices"
	"testing"

	"github.com/raphaelgruber/wdtable/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSelectProps(t *testing.T) {
	available := map[string]any{"elements": 1, "incomplete": 2}

	tests := []struct {
		name      string
		requested []string
		want      map[string]any
	}{
		{"subset", []string{"elements"}, map[string]any{"elements": 1}},
		{"unknown ignored", []string{"elements", "bogus"}, map[string]any{"elements": 1}},
		{"nothing requested", nil, map[string]any{}},
		{"all", []string{"incomplete", "elements"}, available},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectProps(available, tt.requested))
		})
	}
}

func TestResultProps(t *testing.T) {
	elements := BuildElementTable(DefaultLayout(), slices.Values(sampleElements()))
	props := SelectProps(elements.Props(), []string{PropElements, PropIncomplete, PropNuclides})
	assert.Len(t, props, 2)
	assert.Equal(t, elements.Incomplete, props[PropIncomplete])

	nuclides := BuildNuclideTable(slices.Values([]*models.Nuclide{nuclide("Q1", 1, 0)}))
	props = SelectProps(nuclides.Props(), []string{PropNuclides})
	assert.Equal(t, map[string]any{PropNuclides: nuclides.Nuclides}, props)
}
