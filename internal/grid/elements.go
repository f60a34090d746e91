package grid

import (
	"cmp"
	"iter"
	"slices"

	"github.com/raphaelgruber/wdtable/internal/models"
)

// ElementResult is the assembled periodic table.
type ElementResult struct {
	// Elements holds every placed element, special series members included,
	// sorted by atomic number.
	Elements []*models.Element `json:"elements"`

	// Table maps period -> group -> cell. It is dense over
	// [1, Periods] x [1, Groups].
	Table map[int]map[int]models.Cell `json:"table"`

	// SpecialSeries maps the 0-based series position to its cells: an
	// indicator first, then the members sorted by atomic number.
	SpecialSeries map[int][]models.Cell `json:"special_series"`

	// Incomplete holds elements lacking the attributes needed for placement.
	Incomplete []*models.Element `json:"incomplete"`

	// Duplicates holds complete elements whose atomic number or table position
	// was already taken by an element with a lower item id.
	Duplicates []*models.Element `json:"duplicates"`

	Periods int `json:"periods"`
	Groups  int `json:"groups"`
}

// Cell returns the cell at (period, group), or nil outside the grid.
func (r *ElementResult) Cell(period, group int) models.Cell {
	return r.Table[period][group]
}

// BuildElementTable lays out elements on the periodic table described by
// layout. The input order does not matter and the input records are not
// modified; identical inputs always produce identical results.
//
// A gap between two placed elements is classified from the atomic numbers of
// the elements around it: consecutive numbers mean nothing belongs there
// (EmptyCell), unless the next element opens a special series (IndicatorCell);
// a jump in numbers means data is missing (UnknownCell).
func BuildElementTable(layout Layout, elements iter.Seq[*models.Element]) *ElementResult {
	numPeriods, numGroups := layout.NumPeriods(), layout.NumGroups()

	// Partition into placeable and incomplete
	var candidates, incomplete []*models.Element
	for e := range elements {
		if e == nil {
			continue
		}
		if layout.placeable(e) {
			candidates = append(candidates, e)
		} else {
			incomplete = append(incomplete, e)
		}
	}
	slices.SortStableFunc(candidates, compareElements)
	slices.SortStableFunc(incomplete, compareElements)

	// Claim numbers and positions; the lowest item id wins a contested key
	placed := make(map[int]map[int]*models.Element)
	specials := make(map[int][]*models.Element) // period -> members
	numbers := make(map[int]bool)
	var sorted, duplicates []*models.Element
	for _, e := range candidates {
		period, number := *e.Period, *e.Number
		if numbers[number] {
			duplicates = append(duplicates, e)
			continue
		}
		if e.Group != nil {
			if placed[period][*e.Group] != nil {
				duplicates = append(duplicates, e)
				continue
			}
			if placed[period] == nil {
				placed[period] = make(map[int]*models.Element)
			}
			placed[period][*e.Group] = e
		} else {
			specials[period] = append(specials[period], e)
		}
		numbers[number] = true
		sorted = append(sorted, e)
	}
	slices.SortFunc(sorted, byNumber)

	// Walk the grid with a cursor into the sorted elements
	table := make(map[int]map[int]models.Cell, numPeriods)
	cursor := -1
	for period := 1; period <= numPeriods; period++ {
		row := make(map[int]models.Cell, numGroups)
		for group := 1; group <= numGroups; group++ {
			if e := placed[period][group]; e != nil {
				row[group] = models.ElementCell{Element: e}
				cursor++
				continue
			}
			if cursor+1 >= len(sorted) {
				row[group] = models.EmptyCell{}
				continue
			}

			next := sorted[cursor+1]
			lastNumber, lastSpecial := 0, (*int)(nil)
			if cursor >= 0 {
				last := sorted[cursor]
				lastNumber = *last.Number
				if isSpecialMember(last) {
					lastSpecial = last.Special
				}
			}

			switch {
			case *next.Number-lastNumber != 1:
				row[group] = models.UnknownCell{}
			case isSpecialMember(next) && (lastSpecial == nil || *lastSpecial != *next.Special):
				row[group] = models.IndicatorCell{Index: *next.Special - layout.SpecialStart + 1}
				// Skip the whole series: its members render outside the main grid
				cursor = min(cursor+len(specials[*next.Period]), len(sorted)-1)
			default:
				row[group] = models.EmptyCell{}
			}
		}
		table[period] = row
	}

	// Special series: indicator first, then members by atomic number
	series := make(map[int][]models.Cell, len(layout.SpecialSeries))
	for i := range layout.SpecialSeries {
		members := specials[i+layout.SpecialStart]
		slices.SortFunc(members, byNumber)

		cells := make([]models.Cell, 0, len(members)+1)
		cells = append(cells, models.IndicatorCell{Index: i + 1})
		for _, e := range members {
			cells = append(cells, models.ElementCell{Element: e})
		}
		series[i] = cells
	}

	return &ElementResult{
		Elements:      nonNil(sorted),
		Table:         table,
		SpecialSeries: series,
		Incomplete:    nonNil(incomplete),
		Duplicates:    nonNil(duplicates),
		Periods:       numPeriods,
		Groups:        numGroups,
	}
}

// placeable is the completeness predicate: symbol, number and period in range,
// plus either a group in range or a special series matching the period.
func (l Layout) placeable(e *models.Element) bool {
	if e.Symbol == nil || e.Number == nil || *e.Number <= 0 || e.Period == nil {
		return false
	}
	if *e.Period < 1 || *e.Period > l.NumPeriods() {
		return false
	}
	if e.Group != nil {
		return *e.Group >= 1 && *e.Group <= l.NumGroups()
	}
	if e.Special == nil || !l.validSpecial(*e.Special) {
		return false
	}
	// Members are collected per period, one series per period from the special start
	return l.validSpecial(*e.Period)
}

// isSpecialMember reports whether e is rendered in a special series rather
// than the main grid.
func isSpecialMember(e *models.Element) bool {
	return e.Group == nil && e.Special != nil
}

func byNumber(a, b *models.Element) int {
	return cmp.Compare(*a.Number, *b.Number)
}

// compareElements orders records by item id, then by their other attributes,
// so that results do not depend on input order.
func compareElements(a, b *models.Element) int {
	return cmp.Or(
		cmp.Compare(a.ItemID, b.ItemID),
		comparePtr(a.Number, b.Number),
		comparePtr(a.Symbol, b.Symbol),
		comparePtr(a.Period, b.Period),
		comparePtr(a.Group, b.Group),
		comparePtr(a.Special, b.Special),
		comparePtr(a.Label, b.Label),
	)
}

// comparePtr orders nil before any value.
func comparePtr[T cmp.Ordered](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(*a, *b)
}

// nonNil turns a nil slice into an empty one so results serialize as [].
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Rows returns the main grid in render order: one slice per period, one cell
// per group.
func (r *ElementResult) Rows() [][]models.Cell {
	rows := make([][]models.Cell, r.Periods)
	for p := range rows {
		row := make([]models.Cell, r.Groups)
		for g := range row {
			row[g] = r.Table[p+1][g+1]
		}
		rows[p] = row
	}
	return rows
}

// Series returns the special series in layout order.
func (r *ElementResult) Series() [][]models.Cell {
	series := make([][]models.Cell, len(r.SpecialSeries))
	for i := range series {
		series[i] = r.SpecialSeries[i]
	}
	return series
}
