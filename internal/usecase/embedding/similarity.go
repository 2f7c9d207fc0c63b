package embedding

import "math"

// Resize returns v fitted to dim: zero-padded on the right or truncated.
// The input slice is never modified.
func Resize(v []float32, dim int) []float32 {
	if dim <= 0 {
		return nil
	}
	out := make([]float32, dim)
	copy(out, v)
	return out
}

// Similarity is the cosine similarity of a and b in [-1, 1].
// Returns 0 when either vector is empty or has zero norm.
// Vectors of different length are compared over the shorter prefix.
func Similarity(a, b []float32) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}

	var dot, na, nb float64
	for i := range n {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}

	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return max(-1, min(1, s))
}
