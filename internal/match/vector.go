package match

import "math"

// Cosine computes cosine similarity between two vectors of equal length.
// A zero vector on either side yields 0.
func Cosine(a, b []float64) float64 {
	var dot float64
	var na float64
	var nb float64
	for i := 0; i < len(a) && i < len(b); i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	den := math.Sqrt(na) * math.Sqrt(nb)
	if den == 0 {
		return 0
	}
	return dot / den
}

// IsZero reports whether every component of the vector is zero.
func IsZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
