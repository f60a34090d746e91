package models

// Nuclide attribute keys, as exposed in JSON and reported in conflicts.
const (
	KeyAtomicNumber  = "atomic_number"
	KeyNeutronNumber = "neutron_number"
	KeyHalfLife      = "half_life"
	KeyDecayModes    = "decay_modes"
)

// Nuclide is the record of one nuclide, keyed by (atomic number, neutron number).
// HalfLife nil means "not known", which is distinct from a measured zero.
type Nuclide struct {
	AtomicNumber  *int     `json:"atomic_number" yaml:"atomic_number,omitempty"`
	NeutronNumber *int     `json:"neutron_number" yaml:"neutron_number,omitempty"`
	ItemID        string   `json:"item_id" yaml:"item_id"`
	Label         *string  `json:"label" yaml:"label,omitempty"`
	HalfLife      *float64 `json:"half_life" yaml:"half_life,omitempty"`     // seconds
	DecayModes    []int64  `json:"decay_modes" yaml:"decay_modes,omitempty"` // Wikidata numeric ids, primary first
	Classes       []string `json:"classes" yaml:"classes,omitempty"`
}

// SetAtomicNumber assigns the proton count.
func (n *Nuclide) SetAtomicNumber(z int) error { return Assign(KeyAtomicNumber, &n.AtomicNumber, &z) }

// SetNeutronNumber assigns the neutron count.
func (n *Nuclide) SetNeutronNumber(nn int) error {
	return Assign(KeyNeutronNumber, &n.NeutronNumber, &nn)
}

// SetItemID assigns the external identifier.
func (n *Nuclide) SetItemID(id string) error { return assignString(KeyItemID, &n.ItemID, id) }

// SetLabel assigns the human-readable name.
func (n *Nuclide) SetLabel(l string) error { return Assign(KeyLabel, &n.Label, &l) }

// SetHalfLife assigns the half-life in seconds.
func (n *Nuclide) SetHalfLife(seconds float64) error {
	return Assign(KeyHalfLife, &n.HalfLife, &seconds)
}

// AddDecayMode appends a decay mode; the first one added is the primary mode.
func (n *Nuclide) AddDecayMode(modes ...int64) {
	n.DecayModes = append(n.DecayModes, modes...)
}

// AddClass appends tags not already present.
func (n *Nuclide) AddClass(classes ...string) {
	n.Classes = appendUnique(n.Classes, classes...)
}

// Clone returns a deep copy of n. A nil record clones to nil.
func (n *Nuclide) Clone() *Nuclide {
	if n == nil {
		return nil
	}
	c := &Nuclide{ItemID: n.ItemID}
	c.AtomicNumber = clonePtr(n.AtomicNumber)
	c.NeutronNumber = clonePtr(n.NeutronNumber)
	c.Label = clonePtr(n.Label)
	c.HalfLife = clonePtr(n.HalfLife)
	if n.DecayModes != nil {
		c.DecayModes = append([]int64(nil), n.DecayModes...)
	}
	if n.Classes != nil {
		c.Classes = append([]string(nil), n.Classes...)
	}
	return c
}

// MergeNuclide folds incoming into a copy of existing, field by field.
// Decay modes of incoming not yet known are appended after the existing ones.
func MergeNuclide(existing, incoming *Nuclide) (*Nuclide, error) {
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
	if err := Assign(KeyAtomicNumber, &merged.AtomicNumber, incoming.AtomicNumber); err != nil {
		return nil, err
	}
	if err := Assign(KeyNeutronNumber, &merged.NeutronNumber, incoming.NeutronNumber); err != nil {
		return nil, err
	}
	if err := Assign(KeyLabel, &merged.Label, incoming.Label); err != nil {
		return nil, err
	}
	if err := Assign(KeyHalfLife, &merged.HalfLife, incoming.HalfLife); err != nil {
		return nil, err
	}
	merged.DecayModes = appendUnique(merged.DecayModes, incoming.DecayModes...)
	merged.AddClass(incoming.Classes...)

	return merged, nil
}
