package randomworld

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadExamples_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "examples.csv")

	content := "0,1.5,2.25\n1,-3,0.125\n0,0,0\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	inputs, targets, err := LoadExamples(path)
	assert.NoError(t, err)
	assert.Equal(t, [][]float64{{1.5, 2.25}, {-3, 0.125}, {0, 0}}, inputs)
	assert.Equal(t, []int{0, 1, 0}, targets)
}

func TestLoadExamples_InconsistentWidthIsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")

	content := "0,1,2\n1,3\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, _, err := LoadExamples(path)
	assert.Error(t, err)
}

func TestLoadExamples_BadLabelIsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")

	content := "x,1,2\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, _, err := LoadExamples(path)
	assert.Error(t, err)
}

func TestLoadExamples_BadFeatureIsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")

	content := "0,oops,2\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, _, err := LoadExamples(path)
	assert.Error(t, err)
}

// TestS6PredictionsRoundTrip round-trips a p-value matrix through
// WritePredictions/LoadPValues and checks every value to within 1e-12.
func TestS6PredictionsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preds.csv")

	matrix := [][]float64{
		{0.123456789012, 0.987654321098},
		{0.0, 1.0},
		{0.5, 0.5},
	}

	assert.NoError(t, WritePredictions(path, matrix))

	got, err := LoadPValues(path)
	assert.NoError(t, err)

	for i := range matrix {
		for j := range matrix[i] {
			assert.InDelta(t, matrix[i][j], got[i][j], 1e-12)
		}
	}
}

func TestWriteRegions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "regions.csv")

	matrix := [][]bool{{true, false}, {false, false}}
	assert.NoError(t, WriteRegions(path, matrix))

	raw, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "true,false\nfalse,false\n", string(raw))
}
