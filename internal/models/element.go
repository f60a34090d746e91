package models

// Element attribute keys, as exposed in JSON and reported in conflicts.
const (
	KeyNumber  = "number"
	KeySymbol  = "symbol"
	KeyItemID  = "item_id"
	KeyLabel   = "label"
	KeyPeriod  = "period"
	KeyGroup   = "group"
	KeySpecial = "special"
)

// Element is the record of one chemical element, filled incrementally from one
// or more data fragments. Attributes are write-once: use the setters, which
// reject contradicting values with a *ConflictError.
type Element struct {
	Number  *int     `json:"number" yaml:"number,omitempty"`   // atomic number
	Symbol  *string  `json:"symbol" yaml:"symbol,omitempty"`   // "H", "He", ...
	ItemID  string   `json:"item_id" yaml:"item_id"`           // Wikidata item, e.g. "Q556"
	Label   *string  `json:"label" yaml:"label,omitempty"`     // localized name
	Period  *int     `json:"period" yaml:"period,omitempty"`   // 1-based period
	Group   *int     `json:"group" yaml:"group,omitempty"`     // 1-based group
	Special *int     `json:"special" yaml:"special,omitempty"` // special series index (>= layout special start)
	Classes []string `json:"classes" yaml:"classes,omitempty"` // style/category tags, append-only
}

// SetNumber assigns the atomic number.
func (e *Element) SetNumber(n int) error { return Assign(KeyNumber, &e.Number, &n) }

// SetSymbol assigns the element symbol.
func (e *Element) SetSymbol(s string) error { return Assign(KeySymbol, &e.Symbol, &s) }

// SetItemID assigns the external identifier.
func (e *Element) SetItemID(id string) error { return assignString(KeyItemID, &e.ItemID, id) }

// SetLabel assigns the human-readable name.
func (e *Element) SetLabel(l string) error { return Assign(KeyLabel, &e.Label, &l) }

// SetPeriod assigns the period number.
func (e *Element) SetPeriod(p int) error { return Assign(KeyPeriod, &e.Period, &p) }

// SetGroup assigns the group number.
func (e *Element) SetGroup(g int) error { return Assign(KeyGroup, &e.Group, &g) }

// SetSpecial assigns the special series index.
func (e *Element) SetSpecial(s int) error { return Assign(KeySpecial, &e.Special, &s) }

// AddClass appends tags not already present.
func (e *Element) AddClass(classes ...string) {
	e.Classes = appendUnique(e.Classes, classes...)
}

// Clone returns a deep copy of e. A nil record clones to nil.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	c := &Element{ItemID: e.ItemID}
	c.Number = clonePtr(e.Number)
	c.Symbol = clonePtr(e.Symbol)
	c.Label = clonePtr(e.Label)
	c.Period = clonePtr(e.Period)
	c.Group = clonePtr(e.Group)
	c.Special = clonePtr(e.Special)
	if e.Classes != nil {
		c.Classes = append([]string(nil), e.Classes...)
	}
	return c
}

// MergeElement folds incoming into a copy of existing, field by field.
// Neither input is modified. The first contradicting attribute aborts the merge
// with a *ConflictError.
func MergeElement(existing, incoming *Element) (*Element, error) {
	if existing == nil {
		return incoming.Clone(), nil
	}
	merged := existing.Clone()
	if incoming == nil {
		return merged, nil
	}

	if err := merged.SetItemID(incoming.ItemID); err != nil {
		return nil, err
	}
	if err := Assign(KeyNumber, &merged.Number, incoming.Number); err != nil {
		return nil, err
	}
	if err := Assign(KeySymbol, &merged.Symbol, incoming.Symbol); err != nil {
		return nil, err
	}
	if err := Assign(KeyLabel, &merged.Label, incoming.Label); err != nil {
		return nil, err
	}
	if err := Assign(KeyPeriod, &merged.Period, incoming.Period); err != nil {
		return nil, err
	}
	if err := Assign(KeyGroup, &merged.Group, incoming.Group); err != nil {
		return nil, err
	}
	if err := Assign(KeySpecial, &merged.Special, incoming.Special); err != nil {
		return nil, err
	}
	merged.AddClass(incoming.Classes...)

	return merged, nil
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
