package randomworld

import (
	"context"
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"
)

// Mode identifies which variant of Conformal Prediction a CP is currently
// operating as.
type Mode int

const (
	// TCP is Transductive Conformal Prediction: refits per test/candidate
	// pair.
	TCP Mode = iota
	// ICPUncalibrated is an Inductive CP that has been trained but not
	// yet calibrated; it cannot predict yet.
	ICPUncalibrated
	// ICPCalibrated is an Inductive CP ready to predict.
	ICPCalibrated
)

func (m Mode) String() string {
	switch m {
	case TCP:
		return "TCP"
	case ICPUncalibrated:
		return "ICP-uncalibrated"
	case ICPCalibrated:
		return "ICP-calibrated"
	default:
		return "unknown"
	}
}

// CP is a Conformal Predictor: an NCM, a label count, an optional
// significance level, and (when smooth) a deterministically-seeded PRNG.
//
// Construct with NewCP (deterministic TCP), NewSmoothCP (smooth TCP),
// NewInductiveCP (deterministic ICP) or NewSmoothInductiveCP (smooth ICP).
// Call Train once, then zero or more Update calls; for an inductive CP,
// call Calibrate exactly once before predicting.
type CP struct {
	ncm       NCM
	nLabels   int
	epsilon   *float64
	smooth    bool
	rng       *rand.Rand
	inductive bool

	trained    bool
	calibrated bool
}

func validateEpsilon(epsilon *float64) {
	if epsilon == nil {
		return
	}
	if *epsilon < 0 || *epsilon > 1 {
		panic(Wrapper(ErrCP, "epsilon must be in [0,1]"))
	}
}

func newCP(ncm NCM, nLabels int, epsilon *float64, smooth bool, seed int64, inductive bool) *CP {
	if nLabels < 1 {
		panic(Wrapper(ErrCP, "nLabels must be at least 1"))
	}
	validateEpsilon(epsilon)

	cp := &CP{
		ncm:       ncm,
		nLabels:   nLabels,
		epsilon:   epsilon,
		smooth:    smooth,
		inductive: inductive,
	}
	if smooth {
		cp.rng = rand.New(rand.NewSource(seed))
	}

	return cp
}

// NewCP constructs a deterministic Transductive Conformal Predictor.
func NewCP(ncm NCM, nLabels int, epsilon *float64) *CP {
	return newCP(ncm, nLabels, epsilon, false, 0, false)
}

// NewSmoothCP constructs a smooth Transductive Conformal Predictor, using
// seed to deterministically initialise its PRNG.
func NewSmoothCP(ncm NCM, nLabels int, epsilon *float64, seed int64) *CP {
	return newCP(ncm, nLabels, epsilon, true, seed, false)
}

// NewInductiveCP constructs a deterministic Inductive Conformal Predictor.
func NewInductiveCP(ncm NCM, nLabels int, epsilon *float64) *CP {
	return newCP(ncm, nLabels, epsilon, false, 0, true)
}

// NewSmoothInductiveCP constructs a smooth Inductive Conformal Predictor.
// Smooth ICP is mostly of theoretical interest, but is supported here via
// the obvious analogue of the smooth p-value formula (see spec §4.E.1).
func NewSmoothInductiveCP(ncm NCM, nLabels int, epsilon *float64, seed int64) *CP {
	return newCP(ncm, nLabels, epsilon, true, seed, true)
}

// Mode reports which CP variant this is and, for inductive CPs, whether
// it has been calibrated yet.
func (cp *CP) Mode() Mode {
	if !cp.inductive {
		return TCP
	}
	if cp.calibrated {
		return ICPCalibrated
	}

	return ICPUncalibrated
}

// SetEpsilon sets the significance level used by Predict.
func (cp *CP) SetEpsilon(epsilon float64) {
	if epsilon < 0 || epsilon > 1 {
		panic(Wrapper(ErrCP, "SetEpsilon: epsilon must be in [0,1]"))
	}

	cp.epsilon = &epsilon
}

// Train trains the underlying NCM. May only be called once.
func (cp *CP) Train(inputs [][]float64, targets []int) error {
	if cp.trained {
		panic(Wrapper(ErrCP, "Train: already trained"))
	}
	if len(inputs) != len(targets) {
		panic(Wrapper(ErrCP, "Train: inputs/targets length mismatch"))
	}

	if err := cp.ncm.Train(inputs, targets, cp.nLabels); err != nil {
		return err
	}

	cp.trained = true

	if Verbose {
		fmt.Printf("trained %s on %d rows, %d labels\n", cp.ncm.Name(), len(inputs), cp.nLabels)
	}

	return nil
}

// Update appends more training data after Train.
func (cp *CP) Update(inputs [][]float64, targets []int) error {
	if !cp.trained {
		panic(Wrapper(ErrCP, "Update: called before Train"))
	}
	if len(inputs) != len(targets) {
		panic(Wrapper(ErrCP, "Update: inputs/targets length mismatch"))
	}

	return cp.ncm.Update(inputs, targets)
}

// Calibrate calibrates an inductive CP. Only valid once, after Train, and
// only for a CP constructed via NewInductiveCP/NewSmoothInductiveCP.
func (cp *CP) Calibrate(inputs [][]float64, targets []int) error {
	if !cp.inductive {
		panic(Wrapper(ErrCP, "Calibrate: only valid for an inductive CP"))
	}
	if !cp.trained {
		panic(Wrapper(ErrCP, "Calibrate: called before Train"))
	}
	if cp.calibrated {
		panic(Wrapper(ErrCP, "Calibrate: already calibrated"))
	}
	if len(inputs) != len(targets) {
		panic(Wrapper(ErrCP, "Calibrate: inputs/targets length mismatch"))
	}

	if err := cp.ncm.Calibrate(inputs, targets); err != nil {
		return err
	}

	cp.calibrated = true

	return nil
}

// PredictConfidence returns the p-value matrix P, shape (len(tests), L),
// P[i][y] being the p-value of hypothesising label y for tests[i].
//
// Test rows are scored concurrently, one goroutine per row, with the
// candidate labels of a row scored sequentially; when smooth is
// set, the PRNG stream is pre-drawn in test-row-major, candidate-label-
// minor order before the parallel section so the result is reproducible
// regardless of scheduling.
func (cp *CP) PredictConfidence(tests [][]float64) ([][]float64, error) {
	if !cp.trained {
		panic(Wrapper(ErrCP, "PredictConfidence: called before Train"))
	}
	if cp.inductive && !cp.calibrated {
		panic(Wrapper(ErrCP, "PredictConfidence: inductive CP not calibrated"))
	}

	nTest := len(tests)
	L := cp.nLabels

	uniforms := make([]float64, 0)
	if cp.smooth {
		uniforms = make([]float64, nTest*L)
		for i := range uniforms {
			uniforms[i] = cp.rng.Float64()
		}
	}

	P := make([][]float64, nTest)
	for i := range P {
		P[i] = make([]float64, L)
	}

	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < nTest; i++ {
		i := i
		g.Go(func() error {
			for y := 0; y < L; y++ {
				var (
					scores []float64
					err    error
				)
				if cp.inductive {
					scores, err = cp.ncm.ScoreCalibration(tests[i], y)
				} else {
					scores, err = cp.ncm.ScoreAugmented(tests[i], y)
				}
				if err != nil {
					return err
				}

				u := 0.0
				if cp.smooth {
					u = uniforms[i*L+y]
				}

				P[i][y] = pValueFromScores(scores, cp.smooth, u)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if Verbose {
		fmt.Printf("predicted %d test rows against %d labels\n", nTest, L)
	}

	return P, nil
}

// Predict returns the region matrix R, shape (len(tests), L), with
// R[i][y] = true iff P[i][y] > epsilon. Requires SetEpsilon (or a
// constructor epsilon) to have been set.
func (cp *CP) Predict(tests [][]float64) ([][]bool, error) {
	if cp.epsilon == nil {
		panic(Wrapper(ErrCP, "Predict: epsilon not set"))
	}

	P, err := cp.PredictConfidence(tests)
	if err != nil {
		return nil, err
	}

	R := make([][]bool, len(P))
	for i, row := range P {
		R[i] = make([]bool, len(row))
		for y, p := range row {
			R[i][y] = p > *cp.epsilon
		}
	}

	return R, nil
}

// pValueFromScores computes the p-value for a bag of nonconformity scores
// whose last entry is the test object's score, per spec §4.E.1. u is the
// fresh uniform draw used only when smooth is true.
func pValueFromScores(scores []float64, smooth bool, u float64) float64 {
	n := len(scores)
	test := scores[n-1]

	if !smooth {
		count := 0
		for _, s := range scores {
			if s >= test {
				count++
			}
		}

		return float64(count) / float64(n)
	}

	var greater, equal int
	for _, s := range scores {
		switch {
		case s > test:
			greater++
		case s == test:
			equal++
		}
	}

	return (float64(greater) + u*float64(equal)) / float64(n)
}
