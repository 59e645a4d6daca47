package randomworld

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat"
)

// nQuadPoints is the number of fixed quadrature points used to renormalise
// the KDE over [0,1].
const nQuadPoints = 64

// KDEEstimator is a 1-D Gaussian kernel density estimator over [0,1], used
// by the Plug-in martingale. It degenerates to the uniform density on
// [0,1] when fewer than two samples are available.
type KDEEstimator struct {
	fixedBandwidth *float64
	samples        []float64
}

// NewKDEEstimator constructs an estimator. If bandwidth is non-nil, it is
// used as a fixed bandwidth; otherwise Silverman's rule of thumb is
// applied to the current sample window on every call to Density.
func NewKDEEstimator(bandwidth *float64) *KDEEstimator {
	return &KDEEstimator{fixedBandwidth: bandwidth}
}

// SetSamples replaces the estimator's sample window.
func (k *KDEEstimator) SetSamples(samples []float64) {
	k.samples = samples
}

// Bandwidth returns the bandwidth that would currently be used: the fixed
// value if one was supplied, otherwise Silverman's rule of thumb
// h = 1.06 * sigma * n^(-1/5).
func (k *KDEEstimator) Bandwidth() float64 {
	if k.fixedBandwidth != nil {
		return *k.fixedBandwidth
	}

	n := float64(len(k.samples))
	sigma := stat.StdDev(k.samples, nil)
	if sigma == 0 {
		sigma = 1e-6
	}

	return 1.06 * sigma * math.Pow(n, -1.0/5.0)
}

func gaussianKernel(u float64) float64 {
	return math.Exp(-0.5*u*u) / math.Sqrt(2*math.Pi)
}

// rawDensity evaluates the (unnormalised) Gaussian KDE at x.
func (k *KDEEstimator) rawDensity(x float64) float64 {
	n := len(k.samples)
	if n == 0 {
		return 1.0
	}

	h := k.Bandwidth()

	var sum float64
	for _, s := range k.samples {
		sum += gaussianKernel((x - s) / h)
	}

	return sum / (float64(n) * h)
}

// Integral numerically integrates the raw (unnormalised) density over
// [0,1] using a fixed Gauss-Legendre rule.
func (k *KDEEstimator) Integral() float64 {
	return quad.Fixed(k.rawDensity, 0, 1, nQuadPoints, nil, 0)
}

// Density returns the estimated p-value density at x, renormalised so
// that it integrates to 1 over [0,1]. With fewer than two samples it
// returns the uniform density (1.0 everywhere on [0,1]).
func (k *KDEEstimator) Density(x float64) float64 {
	if len(k.samples) < 2 {
		return 1.0
	}

	norm := k.Integral()
	if norm <= 0 {
		return 1.0
	}

	return k.rawDensity(x) / norm
}
