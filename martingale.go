package randomworld

import "math"

// defaultThreshold is the threshold used unless WithThreshold overrides it.
const defaultThreshold = 100.0

// betaFunc is a betting function: given a new p-value and (optionally) the
// history of past p-values, it returns a non-negative multiplier applied
// to the running martingale value.
type betaFunc func(p float64, history []float64) float64

// Martingale is an exchangeability martingale: a non-negative process,
// initialised at 1, updated multiplicatively on each new p-value. Under
// true exchangeability E[M_{n+1} | F_n] = M_n; large values are evidence
// against the exchangeability hypothesis.
type Martingale struct {
	current     float64
	threshold   float64
	keepHistory bool
	history     []float64
	update      betaFunc
}

// MartingaleOpt configures a Martingale at construction time.
type MartingaleOpt func(*Martingale)

// WithThreshold overrides the default "large" threshold (100).
func WithThreshold(tau float64) MartingaleOpt {
	if tau <= 1 {
		panic(Wrapper(ErrMartingale, "WithThreshold: threshold must be > 1"))
	}

	return func(m *Martingale) { m.threshold = tau }
}

func newMartingale(update betaFunc, keepHistory bool, opts ...MartingaleOpt) *Martingale {
	m := &Martingale{
		current:     1.0,
		threshold:   defaultThreshold,
		keepHistory: keepHistory,
		update:      update,
	}
	if keepHistory {
		m.history = make([]float64, 0)
	}
	for _, o := range opts {
		o(m)
	}

	return m
}

// NewPowerMartingale creates a Power martingale with parameter
// epsilon in (0,1): beta(p) = epsilon * p^(epsilon-1).
func NewPowerMartingale(epsilon float64, opts ...MartingaleOpt) *Martingale {
	if epsilon <= 0 || epsilon >= 1 {
		panic(Wrapper(ErrMartingale, "NewPowerMartingale: epsilon must be in (0,1)"))
	}

	beta := func(p float64, _ []float64) float64 {
		return epsilon * math.Pow(p, epsilon-1)
	}

	return newMartingale(beta, false, opts...)
}

// NewPlugInMartingale creates a Plug-in martingale that estimates the
// p-value density from history via 1-D Gaussian KDE (Silverman bandwidth
// unless bandwidth is non-nil), renormalised to be a density on [0,1].
func NewPlugInMartingale(bandwidth *float64, opts ...MartingaleOpt) *Martingale {
	kde := NewKDEEstimator(bandwidth)

	beta := func(p float64, history []float64) float64 {
		kde.SetSamples(history)

		return kde.Density(p)
	}

	return newMartingale(beta, true, opts...)
}

// NewCustomMartingale creates a martingale from an arbitrary deterministic
// betting function of (p, history). history is nil unless keepHistory is
// true, in which case the martingale accumulates every p-value it sees.
func NewCustomMartingale(beta func(p float64, history []float64) float64, keepHistory bool, opts ...MartingaleOpt) *Martingale {
	if beta == nil {
		panic(Wrapper(ErrMartingale, "NewCustomMartingale: beta must not be nil"))
	}

	return newMartingale(beta, keepHistory, opts...)
}

// Update folds a new p-value into the martingale: M <- M * beta(p, history).
// It returns the new value of M.
func (m *Martingale) Update(p float64) float64 {
	if p < 0 || p > 1 {
		panic(Wrapper(ErrMartingale, "Update: p-value out of [0,1]"))
	}

	m.current *= m.update(p, m.history)

	if m.keepHistory {
		m.history = append(m.history, p)
	}

	return m.current
}

// Current returns the current value of M.
func (m *Martingale) Current() float64 { return m.current }

// Threshold returns the configured "large" threshold.
func (m *Martingale) Threshold() float64 { return m.threshold }

// Exceeded reports whether M has reached or exceeded the threshold.
func (m *Martingale) Exceeded() bool { return m.current >= m.threshold }

// History returns the p-values seen so far, or nil if this martingale
// doesn't maintain one (e.g. Power).
func (m *Martingale) History() []float64 { return m.history }
