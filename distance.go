package randomworld

import "gonum.org/v1/gonum/floats"

// Distance is a pairwise metric over equal-length dense real vectors.
// It is selected by value so callers can substitute a metric without
// touching NCM internals.
type Distance func(u, v []float64) float64

// Euclidean is the default Distance: the L2 norm of (u - v), computed via
// gonum/floats rather than a hand-rolled loop.
func Euclidean(u, v []float64) float64 {
	if len(u) != len(v) {
		panic(Wrapper(ErrStore, "Euclidean: dimension mismatch"))
	}

	return floats.Distance(u, v, 2)
}
