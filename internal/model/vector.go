package model

import "math"

// Vector is a sparse feature vector. Indices are strictly ascending feature positions.
type Vector struct {
	Indices []int32
	Values  []float64
}

// NNZ returns the number of stored entries.
func (v Vector) NNZ() int { return len(v.Indices) }

// IsZero reports whether the vector has no non-zero entry.
func (v Vector) IsZero() bool {
	for _, x := range v.Values {
		if x != 0 {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean norm.
func (v Vector) Norm() float64 {
	var s float64
	for _, x := range v.Values {
		s += x * x
	}
	return math.Sqrt(s)
}

// Dot returns the inner product of two sparse vectors.
func (v Vector) Dot(o Vector) float64 {
	var s float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			s += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return s
}

// Cosine returns the cosine similarity, 0 when either vector is zero.
func Cosine(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return a.Dot(b) / (na * nb)
}

func (v Vector) valid(dim int) bool {
	if len(v.Indices) != len(v.Values) {
		return false
	}
	prev := int32(-1)
	for _, ix := range v.Indices {
		if ix <= prev || int(ix) >= dim {
			return false
		}
		prev = ix
	}
	return true
}
