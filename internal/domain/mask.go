package domain

import "fmt"

// Mask is a boolean selection over a mesh's vertices. A true entry marks
// the vertex as retained.
type Mask []bool

// NewMask creates a mask of the given length with all vertices retained
func NewMask(n int) Mask {
	mask := make(Mask, n)
	for i := range mask {
		mask[i] = true
	}
	return mask
}

// Count returns the number of retained vertices
func (m Mask) Count() int {
	n := 0
	for _, keep := range m {
		if keep {
			n++
		}
	}
	return n
}

// Intersect returns a new mask retaining only vertices kept by both masks
func (m Mask) Intersect(other Mask) (Mask, error) {
	if len(m) != len(other) {
		return nil, fmt.Errorf("mask lengths differ: %d vs %d", len(m), len(other))
	}
	out := make(Mask, len(m))
	for i := range m {
		out[i] = m[i] && other[i]
	}
	return out, nil
}
