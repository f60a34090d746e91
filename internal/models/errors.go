package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for record assembly.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrAttributeConflict indicates two data fragments disagree on the value of
	// the same attribute of the same entity. This points at inconsistent source
	// data, not at a bug in the table engine.
	ErrAttributeConflict = errors.New("attribute conflict")

	// ErrDuplicateKey indicates two different entities claim the same grid key
	// (atomic number for elements, atomic and neutron number for nuclides).
	ErrDuplicateKey = errors.New("duplicate key")
)

// ConflictError describes a rejected reassignment of an already-set attribute.
type ConflictError struct {
	Key      string // attribute name, e.g. "number"
	Previous any    // value held by the record
	Rejected any    // value the fragment tried to assign
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s already set to %v, rejected %v", ErrAttributeConflict, e.Key, e.Previous, e.Rejected)
}

// Is reports whether target is ErrAttributeConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrAttributeConflict
}

// DuplicateKeyError describes two entities sharing a grid key.
type DuplicateKeyError struct {
	Key    string // formatted key, e.g. "number=6" or "Z=6,N=6"
	First  string // external id that claimed the key first
	Second string // external id rejected for the same key
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s: %s claimed by %s and %s", ErrDuplicateKey, e.Key, e.First, e.Second)
}

// Is reports whether target is ErrDuplicateKey.
func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}
