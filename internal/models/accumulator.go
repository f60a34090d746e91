package models

import (
	"fmt"
	"iter"
)

// Accumulator folds data fragments into records keyed by external id.
// Each Add merges the fragment into the record accumulated so far, so
// fragments may arrive in any order and from independent sources.
// Records are held by pointer; a nil fragment carries no data.
// An Accumulator is not safe for concurrent use.
type Accumulator[T any] struct {
	merge func(existing, incoming *T) (*T, error)
	key   func(*T) (string, bool) // grid key that must be unique across ids
	items map[string]*T
	order []string // first-seen order of ids
}

// NewAccumulator creates an accumulator with the given merge function.
// key extracts the secondary key checked by Records; it reports false for
// records whose key is not known yet. A nil key disables the check.
func NewAccumulator[T any](merge func(existing, incoming *T) (*T, error), key func(*T) (string, bool)) *Accumulator[T] {
	return &Accumulator[T]{
		merge: merge,
		key:   key,
		items: make(map[string]*T),
	}
}

// NewElementAccumulator accumulates elements, requiring unique atomic numbers.
func NewElementAccumulator() *Accumulator[Element] {
	return NewAccumulator(MergeElement, func(e *Element) (string, bool) {
		if e.Number == nil {
			return "", false
		}
		return fmt.Sprintf("number=%d", *e.Number), true
	})
}

// NewNuclideAccumulator accumulates nuclides, requiring unique (Z, N) pairs.
func NewNuclideAccumulator() *Accumulator[Nuclide] {
	return NewAccumulator(MergeNuclide, func(n *Nuclide) (string, bool) {
		if n.AtomicNumber == nil || n.NeutronNumber == nil {
			return "", false
		}
		return fmt.Sprintf("Z=%d,N=%d", *n.AtomicNumber, *n.NeutronNumber), true
	})
}

// Add merges fragment into the record for id. A nil fragment is ignored and
// does not register id.
// On conflict the accumulated record is left unchanged and the returned error
// wraps the *ConflictError.
func (a *Accumulator[T]) Add(id string, fragment *T) error {
	if fragment == nil {
		return nil
	}
	existing, seen := a.items[id]
	merged, err := a.merge(existing, fragment)
	if err != nil {
		return fmt.Errorf("merge %s: %w", id, err)
	}
	if !seen {
		a.order = append(a.order, id)
	}
	a.items[id] = merged
	return nil
}

// Get returns the record accumulated for id.
func (a *Accumulator[T]) Get(id string) (*T, bool) {
	v, ok := a.items[id]
	return v, ok
}

// Has reports whether any fragment was added for id.
func (a *Accumulator[T]) Has(id string) bool {
	_, ok := a.items[id]
	return ok
}

// Len returns the number of distinct ids.
func (a *Accumulator[T]) Len() int {
	return len(a.order)
}

// All yields records in first-seen order.
func (a *Accumulator[T]) All() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for _, id := range a.order {
			if !yield(a.items[id]) {
				return
			}
		}
	}
}

// Records returns the accumulated records in first-seen order after checking
// that no two ids share a grid key. A violation returns a *DuplicateKeyError.
func (a *Accumulator[T]) Records() ([]*T, error) {
	owners := make(map[string]string)
	out := make([]*T, 0, len(a.order))
	for _, id := range a.order {
		rec := a.items[id]
		if a.key != nil {
			if k, ok := a.key(rec); ok {
				if first, dup := owners[k]; dup {
					return nil, &DuplicateKeyError{Key: k, First: first, Second: id}
				}
				owners[k] = id
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
