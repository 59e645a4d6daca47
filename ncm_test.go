package randomworld

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKDENCM_AllMethodsError(t *testing.T) {
	k := NewKDE("gaussian", 0.1)

	assert.Equal(t, "kde", k.Name())

	assert.Error(t, k.Train(nil, nil, 1))
	assert.Error(t, k.Calibrate(nil, nil))
	assert.Error(t, k.Update(nil, nil))

	_, err := k.ScoreAugmented([]float64{0}, 0)
	assert.Error(t, err)

	_, err = k.ScoreCalibration([]float64{0}, 0)
	assert.Error(t, err)
}

func TestKDENCM_SatisfiesNCMInterface(t *testing.T) {
	var _ NCM = NewKDE("gaussian", 0.1)
}
