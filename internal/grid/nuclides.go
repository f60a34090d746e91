package grid

import (
	"cmp"
	"iter"
	"slices"

	"github.com/raphaelgruber/wdtable/internal/models"
)

// MagicNumbers are the nucleon counts of closed nuclear shells, overlaid on
// the rendered chart.
var MagicNumbers = []int{2, 8, 20, 28, 50, 82, 126}

// IsMagic reports whether n is a magic number.
func IsMagic(n int) bool {
	return slices.Contains(MagicNumbers, n)
}

// NuclideResult is the assembled chart of nuclides.
type NuclideResult struct {
	// Nuclides holds every placed nuclide sorted by (atomic, neutron) number.
	Nuclides []*models.Nuclide `json:"nuclides"`

	// Table maps atomic number -> neutron number -> cell. It is dense over
	// [0, MaxAtomicNumber] x [0, MaxNeutronNumber].
	Table map[int]map[int]models.Cell `json:"table"`

	// Incomplete holds nuclides lacking either number.
	Incomplete []*models.Nuclide `json:"incomplete"`

	// Duplicates holds nuclides whose coordinate was already taken by a
	// nuclide with a lower item id.
	Duplicates []*models.Nuclide `json:"duplicates"`

	// Bounds of the placed nuclides; -1 when nothing was placed.
	MaxAtomicNumber  int `json:"max_atomic_number"`
	MaxNeutronNumber int `json:"max_neutron_number"`
}

// Cell returns the cell at (atomic, neutron), or nil outside the chart.
func (r *NuclideResult) Cell(atomic, neutron int) models.Cell {
	return r.Table[atomic][neutron]
}

// BuildNuclideTable lays out nuclides on the bounding rectangle of their
// coordinates. The input order does not matter and the records are not
// modified.
func BuildNuclideTable(nuclides iter.Seq[*models.Nuclide]) *NuclideResult {
	// Partition into placeable and incomplete
	var candidates, incomplete []*models.Nuclide
	for n := range nuclides {
		if n == nil {
			continue
		}
		if placeableNuclide(n) {
			candidates = append(candidates, n)
		} else {
			incomplete = append(incomplete, n)
		}
	}
	slices.SortStableFunc(candidates, compareNuclides)
	slices.SortStableFunc(incomplete, compareNuclides)

	// Claim coordinates and track bounds
	placed := make(map[[2]int]*models.Nuclide)
	maxZ, maxN := -1, -1
	var sorted, duplicates []*models.Nuclide
	for _, n := range candidates {
		key := [2]int{*n.AtomicNumber, *n.NeutronNumber}
		if placed[key] != nil {
			duplicates = append(duplicates, n)
			continue
		}
		placed[key] = n
		sorted = append(sorted, n)
		maxZ = max(maxZ, key[0])
		maxN = max(maxN, key[1])
	}
	slices.SortFunc(sorted, byCoordinate)

	// Fill the bounding rectangle
	table := make(map[int]map[int]models.Cell, maxZ+1)
	for z := 0; z <= maxZ; z++ {
		row := make(map[int]models.Cell, maxN+1)
		for n := 0; n <= maxN; n++ {
			if nuc := placed[[2]int{z, n}]; nuc != nil {
				row[n] = models.NuclideCell{Nuclide: nuc}
			} else {
				row[n] = models.NoneCell{}
			}
		}
		table[z] = row
	}

	return &NuclideResult{
		Nuclides:         nonNil(sorted),
		Table:            table,
		Incomplete:       nonNil(incomplete),
		Duplicates:       nonNil(duplicates),
		MaxAtomicNumber:  maxZ,
		MaxNeutronNumber: maxN,
	}
}

func placeableNuclide(n *models.Nuclide) bool {
	return n.AtomicNumber != nil && n.NeutronNumber != nil &&
		*n.AtomicNumber >= 0 && *n.NeutronNumber >= 0
}

func byCoordinate(a, b *models.Nuclide) int {
	return cmp.Or(
		cmp.Compare(*a.AtomicNumber, *b.AtomicNumber),
		cmp.Compare(*a.NeutronNumber, *b.NeutronNumber),
	)
}

func compareNuclides(a, b *models.Nuclide) int {
	return cmp.Or(
		cmp.Compare(a.ItemID, b.ItemID),
		comparePtr(a.AtomicNumber, b.AtomicNumber),
		comparePtr(a.NeutronNumber, b.NeutronNumber),
		comparePtr(a.Label, b.Label),
		comparePtr(a.HalfLife, b.HalfLife),
	)
}

// Rows returns the chart in render order: one slice per atomic number from
// 0 up, one cell per neutron number.
func (r *NuclideResult) Rows() [][]models.Cell {
	rows := make([][]models.Cell, r.MaxAtomicNumber+1)
	for z := range rows {
		row := make([]models.Cell, r.MaxNeutronNumber+1)
		for n := range row {
			row[n] = r.Table[z][n]
		}
		rows[z] = row
	}
	return rows
}
