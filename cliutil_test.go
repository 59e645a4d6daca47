package randomworld

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildNCM_KNN(t *testing.T) {
	n, err := BuildNCM("knn", 3, "", nil)
	assert.NoError(t, err)
	assert.Equal(t, "knn", n.Name())
}

func TestBuildNCM_KDE(t *testing.T) {
	bw := 0.2
	n, err := BuildNCM("kde", 0, "gaussian", &bw)
	assert.NoError(t, err)
	assert.Equal(t, "kde", n.Name())
}

func TestBuildNCM_UnknownKind(t *testing.T) {
	_, err := BuildNCM("bogus", 1, "", nil)
	assert.Error(t, err)
}

func TestCountLabels(t *testing.T) {
	assert.Equal(t, 0, CountLabels(nil))
	assert.Equal(t, 3, CountLabels([]int{0, 2, 1, 2}))
	assert.Equal(t, 1, CountLabels([]int{0, 0, 0}))
}
