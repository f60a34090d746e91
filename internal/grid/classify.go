package grid

import "github.com/raphaelgruber/wdtable/internal/models"

// HalfLifeBucket tags nuclides whose half-life is at least Threshold seconds.
type HalfLifeBucket struct {
	Threshold float64
	Class     string
}

// HalfLifeBuckets is ordered by descending threshold.
var HalfLifeBuckets = []HalfLifeBucket{
	{1.0e9, "hl1e9"},
	{1.0e6, "hl1e6"},
	{1.0e3, "hl1e3"},
	{1.0e2, "hl1e2"},
	{1.0e1, "hl1e1"},
	{1.0, "hl1e0"},
	{1.0e-1, "hl1e-1"},
	{1.0e-2, "hl1e-2"},
	{1.0e-3, "hl1e-3"},
	{1.0e-6, "hl1e-6"},
	{1.0e-9, "hl1e-9"},
	{1.0e-12, "hl1e-12"},
	{1.0e-15, "hl1e-15"},
	{1.0e-18, "hl1e-18"},
	{0, DefaultHalfLifeClass},
}

// DefaultHalfLifeClass is used for values below every threshold.
const DefaultHalfLifeClass = "hl1e-21"

// DecayModeClasses maps Wikidata decay mode items to style tags.
var DecayModeClasses = map[int64]string{
	14646001: "beta-minus",
	18907407: "double-beta",
	1357356:  "positron-emission",
	109910:   "electron-capture",
	520827:   "double-electron-capture",
	179856:   "alpha-decay",
	898923:   "neutron-emission",
	902157:   "proton-emission",
	9253686:  "2-proton-emission",
	21457313: "3-proton-emission",
	21456752: "2-neutron-emission",
	21457084: "3-neutron-emission",
	21457201: "4-neutron emission",
	21457421: "double-alpha-decay",
	146682:   "spontaneous-fission",
}

// HalfLifeClass returns the tag of the largest threshold not above seconds.
func HalfLifeClass(seconds float64) string {
	for _, b := range HalfLifeBuckets {
		if seconds >= b.Threshold {
			return b.Class
		}
	}
	return DefaultHalfLifeClass
}

// DecayModeClass returns the tag for a decay mode item.
func DecayModeClass(mode int64) (string, bool) {
	class, ok := DecayModeClasses[mode]
	return class, ok
}

// DecorateByHalfLife tags each nuclide with its half-life bucket.
// Nuclides without a known half-life are left untouched.
func DecorateByHalfLife(nuclides []*models.Nuclide) {
	for _, n := range nuclides {
		if n == nil || n.HalfLife == nil {
			continue
		}
		n.AddClass(HalfLifeClass(*n.HalfLife))
	}
}

// DecorateByDecayMode tags each nuclide with its primary decay mode.
// Only the first mode is consulted; unknown or absent modes add nothing.
func DecorateByDecayMode(nuclides []*models.Nuclide) {
	for _, n := range nuclides {
		if n == nil || len(n.DecayModes) == 0 {
			continue
		}
		if class, ok := DecayModeClass(n.DecayModes[0]); ok {
			n.AddClass(class)
		}
	}
}
