// Package grid assembles the periodic table and the chart of nuclides from
// unordered, partially populated records, and classifies nuclides for display.
//
// Everything in this package is a pure function of its inputs: no I/O, no
// shared mutable state. Concurrent calls with different inputs never interfere.
package grid

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/raphaelgruber/wdtable/internal/models"
	"gopkg.in/yaml.v3"
)

// Layout holds the fixed lookup tables mapping Wikidata classes to table
// coordinates. Positions are 1-based: Periods[0] is period 1.
// A Layout is read-only after load.
type Layout struct {
	Periods           []int64          `yaml:"periods"`            // class id per period
	Groups            []int64          `yaml:"groups"`             // class id per group
	SpecialStart      int              `yaml:"special_start"`      // special index of the first series
	SpecialSeries     []int64          `yaml:"special_series"`     // class id per special series
	SpecialSubclasses map[int64]string `yaml:"special_subclasses"` // class id -> style tag
}

// DefaultLayout returns the Wikidata item ids of periods, groups and series.
func DefaultLayout() Layout {
	return Layout{
		Periods: []int64{
			191936, 207712, 211331, 239825, 244982, 239813, 244979, 428818, 986218,
		},
		Groups: []int64{
			10801007, 19563, 108307, 189302, 193276, 193280, 202602, 202224, 208107,
			205253, 185870, 191875, 189294, 106693, 106675, 104567, 19605, 19609,
		},
		SpecialStart: 6,
		SpecialSeries: []int64{
			19569,  // lanthanide
			19577,  // actinide
			428874, // superactinide
		},
		SpecialSubclasses: map[int64]string{
			19557:    "alkali-metal",
			19591:    "post-transition-metal",
			19596:    "metalloid",
			19753344: "diatomic-nonmetal",
			19753345: "polyatomic-nonmetal",
		},
	}
}

// LoadLayout reads a layout from a YAML file.
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout: %w", err)
	}
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("parse layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Validate checks the layout is usable for assembly.
func (l Layout) Validate() error {
	var errs []error
	if len(l.Periods) == 0 {
		errs = append(errs, errors.New("layout: no periods"))
	}
	if len(l.Groups) == 0 {
		errs = append(errs, errors.New("layout: no groups"))
	}
	if l.SpecialStart <= 0 {
		errs = append(errs, fmt.Errorf("layout: special start must be positive, got %d", l.SpecialStart))
	}
	return errors.Join(errs...)
}

// NumPeriods returns the number of table rows.
func (l Layout) NumPeriods() int { return len(l.Periods) }

// NumGroups returns the number of table columns.
func (l Layout) NumGroups() int { return len(l.Groups) }

// validSpecial reports whether s indexes a configured special series.
func (l Layout) validSpecial(s int) bool {
	return s >= l.SpecialStart && s < l.SpecialStart+len(l.SpecialSeries)
}

// Apply derives period, group and special series of e from the ids of the
// classes it is a subclass of, and appends style tags for special subclasses.
// When several ids map to the same attribute the last one wins. The derived
// values are written through the conflict-checked setters.
func (l Layout) Apply(e *models.Element, superclasses []int64) error {
	var period, group, special *int
	for _, target := range superclasses {
		if i := slices.Index(l.Periods, target); i >= 0 {
			period = models.Ptr(i + 1)
		} else if i := slices.Index(l.Groups, target); i >= 0 {
			group = models.Ptr(i + 1)
		} else if i := slices.Index(l.SpecialSeries, target); i >= 0 {
			special = models.Ptr(i + l.SpecialStart)
		}
		if class, ok := l.SpecialSubclasses[target]; ok {
			e.AddClass(class)
		}
	}

	if err := models.Assign(models.KeyPeriod, &e.Period, period); err != nil {
		return err
	}
	if err := models.Assign(models.KeyGroup, &e.Group, group); err != nil {
		return err
	}
	return models.Assign(models.KeySpecial, &e.Special, special)
}
