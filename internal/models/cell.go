package models

import "encoding/json"

// CellKind identifies a cell variant.
type CellKind string

// Cell kinds of the periodic table and the nuclide chart.
const (
	CellElement   CellKind = "element"   // a placed element
	CellIndicator CellKind = "indicator" // entry point into a special series
	CellUnknown   CellKind = "unknown"   // gap caused by missing data
	CellEmpty     CellKind = "empty"     // gap where nothing belongs
	CellNuclide   CellKind = "nuclide"   // a placed nuclide
	CellNone      CellKind = "none"      // no known nuclide at this coordinate
)

// Cell is one renderable grid position. The set of variants is closed.
type Cell interface {
	Kind() CellKind
	isCell()
}

// ElementCell wraps a placed element.
type ElementCell struct {
	Element *Element
}

// IndicatorCell marks a special series stub; Index is 1-based.
type IndicatorCell struct {
	Index int
}

// UnknownCell is a gap whose cause is missing data.
type UnknownCell struct{}

// EmptyCell is a gap that chemistry dictates is empty.
type EmptyCell struct{}

// NuclideCell wraps a placed nuclide.
type NuclideCell struct {
	Nuclide *Nuclide
}

// NoneCell marks a coordinate without a known nuclide.
type NoneCell struct{}

func (ElementCell) Kind() CellKind   { return CellElement }
func (IndicatorCell) Kind() CellKind { return CellIndicator }
func (UnknownCell) Kind() CellKind   { return CellUnknown }
func (EmptyCell) Kind() CellKind     { return CellEmpty }
func (NuclideCell) Kind() CellKind   { return CellNuclide }
func (NoneCell) Kind() CellKind      { return CellNone }

func (ElementCell) isCell()   {}
func (IndicatorCell) isCell() {}
func (UnknownCell) isCell()   {}
func (EmptyCell) isCell()     {}
func (NuclideCell) isCell()   {}
func (NoneCell) isCell()      {}

// MarshalJSON flattens the element attributes next to the cell kind.
func (c ElementCell) MarshalJSON() ([]byte, error) {
	type element Element
	return json.Marshal(struct {
		Kind CellKind `json:"kind"`
		*element
	}{CellElement, (*element)(c.Element)})
}

// MarshalJSON emits the kind and the series index.
func (c IndicatorCell) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  CellKind `json:"kind"`
		Index int      `json:"index"`
	}{CellIndicator, c.Index})
}

// MarshalJSON emits the kind only.
func (c UnknownCell) MarshalJSON() ([]byte, error) { return marshalKind(CellUnknown) }

// MarshalJSON emits the kind only.
func (c EmptyCell) MarshalJSON() ([]byte, error) { return marshalKind(CellEmpty) }

// MarshalJSON flattens the nuclide attributes next to the cell kind.
func (c NuclideCell) MarshalJSON() ([]byte, error) {
	type nuclide Nuclide
	return json.Marshal(struct {
		Kind CellKind `json:"kind"`
		*nuclide
	}{CellNuclide, (*nuclide)(c.Nuclide)})
}

// MarshalJSON emits the kind only.
func (c NoneCell) MarshalJSON() ([]byte, error) { return marshalKind(CellNone) }

func marshalKind(k CellKind) ([]byte, error) {
	return json.Marshal(struct {
		Kind CellKind `json:"kind"`
	}{k})
}
