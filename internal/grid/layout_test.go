package grid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/raphaelgruber/wdtable/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutApply(t *testing.T) {
	layout := DefaultLayout()

	tests := []struct {
		name         string
		superclasses []int64
		wantPeriod   *int
		wantGroup    *int
		wantSpecial  *int
		wantClasses  []string
	}{
		{
			name:         "alkali metal in period 2",
			superclasses: []int64{207712, 10801007, 19557},
			wantPeriod:   models.Ptr(2),
			wantGroup:    models.Ptr(1),
			wantClasses:  []string{"alkali-metal"},
		},
		{
			name:         "lanthanide",
			superclasses: []int64{239813, 19569},
			wantPeriod:   models.Ptr(6),
			wantSpecial:  models.Ptr(6),
		},
		{
			name:         "actinide",
			superclasses: []int64{244979, 19577},
			wantPeriod:   models.Ptr(7),
			wantSpecial:  models.Ptr(7),
		},
		{
			name:         "last period wins",
			superclasses: []int64{191936, 207712},
			wantPeriod:   models.Ptr(2),
		},
		{
			name:         "unrelated classes",
			superclasses: []int64{11344, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &models.Element{ItemID: "Q1"}
			require.NoError(t, layout.Apply(e, tt.superclasses))

			assert.Equal(t, tt.wantPeriod, e.Period)
			assert.Equal(t, tt.wantGroup, e.Group)
			assert.Equal(t, tt.wantSpecial, e.Special)
			assert.Equal(t, tt.wantClasses, e.Classes)
		})
	}
}

func TestLayoutApplyConflict(t *testing.T) {
	e := &models.Element{ItemID: "Q1", Period: models.Ptr(3)}

	err := DefaultLayout().Apply(e, []int64{191936})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrAttributeConflict)
	assert.Equal(t, 3, *e.Period)
}

func TestLayoutValidate(t *testing.T) {
	require.NoError(t, DefaultLayout().Validate())

	err := Layout{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no periods")
	assert.Contains(t, err.Error(), "no groups")
	assert.Contains(t, err.Error(), "special start must be positive")
}

func TestLoadLayout(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(dir, "layout.yaml")
		content := `periods: [191936, 207712]
groups: [10801007, 19563, 108307]
special_start: 2
special_series: [19569]
special_subclasses:
  19557: alkali-metal
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		layout, err := LoadLayout(path)
		require.NoError(t, err)
		assert.Equal(t, 2, layout.NumPeriods())
		assert.Equal(t, 3, layout.NumGroups())
		assert.Equal(t, []int64{19569}, layout.SpecialSeries)
		assert.Equal(t, "alkali-metal", layout.SpecialSubclasses[19557])
	})

	t.Run("invalid", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("special_start: 6\n"), 0o644))

		_, err := LoadLayout(path)
		assert.ErrorContains(t, err, "no periods")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadLayout(filepath.Join(dir, "nope.yaml"))
		assert.ErrorContains(t, err, "read layout")
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("periods: {"), 0o644))

		_, err := LoadLayout(path)
		assert.ErrorContains(t, err, "parse layout")
	})
}
