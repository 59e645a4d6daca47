package randomworld

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func s1Data() (trainX [][]float64, trainY []int, testX [][]float64) {
	trainX = [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 2}, {1, 2}}
	trainY = []int{0, 0, 0, 1, 1, 1}
	testX = [][]float64{{2, 1}, {2, 2}}

	return trainX, trainY, testX
}

// TestCP_S1Scenario reproduces the worked example from
// original_source/tests/cp.rs: k=2, L=2, deterministic TCP.
func TestCP_S1Scenario(t *testing.T) {
	trainX, trainY, testX := s1Data()

	eps := 0.1
	cp := NewCP(NewKNN(2), 2, &eps)
	assert.NoError(t, cp.Train(trainX, trainY))

	P, err := cp.PredictConfidence(testX)
	assert.NoError(t, err)

	expected := [][]float64{{0.25, 1.0}, {0.25, 1.0}}
	for i := range expected {
		for y := range expected[i] {
			assert.InDelta(t, expected[i][y], P[i][y], 1e-6)
		}
	}

	eps1, eps2 := 0.3, 0.2
	cp.SetEpsilon(eps1)
	R1, err := cp.Predict(testX)
	assert.NoError(t, err)
	assert.Equal(t, [][]bool{{false, true}, {false, true}}, R1)

	cp.SetEpsilon(eps2)
	R2, err := cp.Predict(testX)
	assert.NoError(t, err)
	assert.Equal(t, [][]bool{{true, true}, {true, true}}, R2)
}

// TestCP_S2UpdateEquivalence checks that train(prefix);update(suffix...)
// equals train(all) exactly.
func TestCP_S2UpdateEquivalence(t *testing.T) {
	trainX, trainY, testX := s1Data()

	cpA := NewCP(NewKNN(2), 2, nil)
	assert.NoError(t, cpA.Train(trainX[0:3], trainY[0:3]))
	assert.NoError(t, cpA.Update(trainX[3:4], trainY[3:4]))
	assert.NoError(t, cpA.Update(trainX[4:6], trainY[4:6]))

	cpB := NewCP(NewKNN(2), 2, nil)
	assert.NoError(t, cpB.Train(trainX, trainY))

	PA, err := cpA.PredictConfidence(testX)
	assert.NoError(t, err)
	PB, err := cpB.PredictConfidence(testX)
	assert.NoError(t, err)

	assert.Equal(t, PB, PA)
}

func TestCP_PValueRangeAndRegionConsistency(t *testing.T) {
	trainX, trainY, testX := s1Data()

	eps := 0.3
	cp := NewCP(NewKNN(2), 2, &eps)
	assert.NoError(t, cp.Train(trainX, trainY))

	P, err := cp.PredictConfidence(testX)
	assert.NoError(t, err)
	R, err := cp.Predict(testX)
	assert.NoError(t, err)

	for i := range P {
		for y := range P[i] {
			assert.GreaterOrEqual(t, P[i][y], 0.0)
			assert.LessOrEqual(t, P[i][y], 1.0)
			assert.Equal(t, P[i][y] > eps, R[i][y])
		}
	}
}

func TestCP_SmoothDeterministic(t *testing.T) {
	trainX, trainY, testX := s1Data()

	cp1 := NewSmoothCP(NewKNN(2), 2, nil, 42)
	assert.NoError(t, cp1.Train(trainX, trainY))
	P1, err := cp1.PredictConfidence(testX)
	assert.NoError(t, err)

	cp2 := NewSmoothCP(NewKNN(2), 2, nil, 42)
	assert.NoError(t, cp2.Train(trainX, trainY))
	P2, err := cp2.PredictConfidence(testX)
	assert.NoError(t, err)

	assert.Equal(t, P1, P2)
}

func TestCP_TrainTwicePanics(t *testing.T) {
	cp := NewCP(NewKNN(2), 2, nil)
	assert.NoError(t, cp.Train([][]float64{{0, 0}}, []int{0}))
	assert.Panics(t, func() {
		_ = cp.Train([][]float64{{1, 1}}, []int{0})
	})
}

func TestCP_PredictBeforeTrainPanics(t *testing.T) {
	cp := NewCP(NewKNN(2), 2, nil)
	assert.Panics(t, func() {
		_, _ = cp.PredictConfidence([][]float64{{0, 0}})
	})
}

func TestCP_PredictWithoutEpsilonPanics(t *testing.T) {
	cp := NewCP(NewKNN(2), 2, nil)
	assert.NoError(t, cp.Train([][]float64{{0, 0}, {1, 1}}, []int{0, 0}))
	assert.Panics(t, func() {
		_, _ = cp.Predict([][]float64{{0, 0}})
	})
}

func TestCP_CalibrateOnTCPPanics(t *testing.T) {
	cp := NewCP(NewKNN(2), 2, nil)
	assert.NoError(t, cp.Train([][]float64{{0, 0}}, []int{0}))
	assert.Panics(t, func() {
		_ = cp.Calibrate([][]float64{{0, 0}}, []int{0})
	})
}

func TestCP_ICPCalibrateBeforeTrainPanics(t *testing.T) {
	cp := NewInductiveCP(NewKNN(1), 1, nil)
	assert.Panics(t, func() {
		_ = cp.Calibrate([][]float64{{0, 0}}, []int{0})
	})
}

func TestCP_ICPPredictBeforeCalibratePanics(t *testing.T) {
	cp := NewInductiveCP(NewKNN(1), 1, nil)
	assert.NoError(t, cp.Train([][]float64{{0, 0}, {1, 1}}, []int{0, 0}))
	assert.Panics(t, func() {
		_, _ = cp.PredictConfidence([][]float64{{0, 0}})
	})
}

// TestCP_S5ICPDeterminism checks that an ICP predicts byte-identically
// across repeated calls.
func TestCP_S5ICPDeterminism(t *testing.T) {
	trainX := [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	trainY := []int{0, 0, 1, 1}
	calX := [][]float64{{0.1, 0.1}, {0.9, 0.9}}
	calY := []int{0, 1}
	testX := [][]float64{{0.2, 0.2}, {0.8, 0.8}}

	cp := NewInductiveCP(NewKNN(1), 2, nil)
	assert.NoError(t, cp.Train(trainX, trainY))
	assert.NoError(t, cp.Calibrate(calX, calY))
	assert.Equal(t, ICPCalibrated, cp.Mode())

	P1, err := cp.PredictConfidence(testX)
	assert.NoError(t, err)
	P2, err := cp.PredictConfidence(testX)
	assert.NoError(t, err)

	assert.Equal(t, P1, P2)
}

func TestCP_ICPEmptyCalibrationAllOnes(t *testing.T) {
	cp := NewInductiveCP(NewKNN(1), 1, nil)
	assert.NoError(t, cp.Train([][]float64{{0, 0}, {1, 1}}, []int{0, 0}))
	assert.NoError(t, cp.Calibrate(nil, nil))

	P, err := cp.PredictConfidence([][]float64{{5, 5}})
	assert.NoError(t, err)
	assert.InDelta(t, 1.0, P[0][0], 1e-12)
}

func TestCP_EpsilonOutOfRangePanics(t *testing.T) {
	assert.Panics(t, func() {
		e := 1.5
		NewCP(NewKNN(1), 1, &e)
	})
	assert.Panics(t, func() {
		NewCP(NewKNN(1), 1, nil).SetEpsilon(-0.1)
	})
}

func TestCP_EpsilonZeroTieHandling(t *testing.T) {
	trainX := [][]float64{{0, 0}, {10, 10}}
	trainY := []int{0, 0}

	eps := 0.0
	cp := NewCP(NewKNN(1), 1, &eps)
	assert.NoError(t, cp.Train(trainX, trainY))

	R, err := cp.Predict([][]float64{{5, 5}})
	assert.NoError(t, err)
	assert.True(t, R[0][0])
}
