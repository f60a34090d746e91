// Package models defines the entity records and cell variants of the periodic table
// and the chart of nuclides.
package models

import "slices"

// Ptr returns a pointer to a copy of v.
// Useful for building records in tests and providers.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns the value behind p, or the zero value if p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// appendUnique appends values not already present in dst, preserving order.
func appendUnique[T comparable](dst []T, values ...T) []T {
	for _, v := range values {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}
