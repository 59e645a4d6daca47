package randomworld

import "container/heap"

// KNN is a k-NN nonconformity measure: the score of a query row against a
// label bucket is the sum of distances to its k nearest neighbours within
// that bucket (fewer than k if the bucket is small).
type KNN struct {
	k        int
	distance Distance

	nLabels    int
	trained    bool
	calibrated bool

	train *Store
	calib *Store

	// calibScores[y] holds the calibration scores for label y, each
	// computed once (at Calibrate time) against the fixed training
	// store.
	calibScores [][]float64
}

// NewKNN constructs a k-NN nonconformity measure with k neighbours and the
// Euclidean metric.
func NewKNN(k int) *KNN {
	return NewKNNWithDistance(k, Euclidean)
}

// NewKNNWithDistance constructs a k-NN nonconformity measure with a custom
// distance metric.
func NewKNNWithDistance(k int, distance Distance) *KNN {
	if k < 1 {
		panic(Wrapper(ErrNCM, "NewKNN: k must be at least 1"))
	}

	return &KNN{k: k, distance: distance}
}

func (n *KNN) Name() string { return "knn" }

func (n *KNN) Train(inputs [][]float64, targets []int, nLabels int) error {
	if n.trained {
		panic(Wrapper(ErrNCM, "KNN: train() called twice"))
	}

	n.nLabels = nLabels
	n.train = Split(inputs, targets, nLabels)
	n.trained = true

	return nil
}

func (n *KNN) Calibrate(inputs [][]float64, targets []int) error {
	if !n.trained {
		panic(Wrapper(ErrNCM, "KNN: calibrate() called before train()"))
	}
	if n.calibrated {
		panic(Wrapper(ErrNCM, "KNN: calibrate() called twice"))
	}

	n.calib = Split(inputs, targets, n.nLabels)
	n.calibScores = make([][]float64, n.nLabels)

	for y := 0; y < n.nLabels; y++ {
		bucket := n.calib.RowsOf(y)
		trainBucket := n.train.RowsOf(y)
		scores := make([]float64, len(bucket))

		for i, r := range bucket {
			scores[i] = n.scoreAgainstBucket(r, trainBucket, -1)
		}

		n.calibScores[y] = scores
	}

	n.calibrated = true

	return nil
}

func (n *KNN) Update(inputs [][]float64, targets []int) error {
	if !n.trained {
		panic(Wrapper(ErrNCM, "KNN: update() called before train()"))
	}

	n.train.Append(inputs, targets)

	return nil
}

// ScoreAugmented returns the nonconformity scores of the label-y training
// bucket as if (x,y) had been appended to it, plus the score of (x,y)
// itself as the last entry. The training store is never mutated.
func (n *KNN) ScoreAugmented(x []float64, y int) ([]float64, error) {
	if !n.trained {
		return nil, Wrapper(ErrNCM, "KNN: score requested before train()")
	}

	bucket := n.train.RowsOf(y)
	augmented := make([][]float64, len(bucket)+1)
	copy(augmented, bucket)
	augmented[len(bucket)] = x

	scores := make([]float64, len(augmented))
	for i, r := range augmented {
		scores[i] = n.scoreAgainstBucket(r, augmented, i)
	}

	return scores, nil
}

// ScoreCalibration returns the precomputed calibration scores for label y
// plus the test score of x against the (fixed) training store, as the
// last entry.
func (n *KNN) ScoreCalibration(x []float64, y int) ([]float64, error) {
	if !n.calibrated {
		return nil, Wrapper(ErrNCM, "KNN: calibration score requested before calibrate()")
	}

	testScore := n.scoreAgainstBucket(x, n.train.RowsOf(y), -1)

	out := make([]float64, len(n.calibScores[y])+1)
	copy(out, n.calibScores[y])
	out[len(out)-1] = testScore

	return out, nil
}

// scoreAgainstBucket sums the distances from x to its k (or fewer) nearest
// neighbours within bucket, excluding the row at excludeIdx (pass -1 if x
// is not itself a member of bucket).
func (n *KNN) scoreAgainstBucket(x []float64, bucket [][]float64, excludeIdx int) float64 {
	dists := make([]float64, 0, len(bucket))

	for i, r := range bucket {
		if i == excludeIdx {
			continue
		}
		dists = append(dists, n.distance(x, r))
	}

	kk := n.k
	if kk > len(dists) {
		kk = len(dists)
	}

	return kSmallestSum(dists, kk)
}

// floatMaxHeap is a bounded max-heap used to select the k smallest values
// from a stream of distances without a full sort.
type floatMaxHeap []float64

func (h floatMaxHeap) Len() int            { return len(h) }
func (h floatMaxHeap) Less(i, j int) bool  { return h[i] > h[j] }
func (h floatMaxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *floatMaxHeap) Push(x interface{}) { *h = append(*h, x.(float64)) }
func (h *floatMaxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]

	return v
}

// kSmallestSum returns the sum of the k smallest values in dists, using a
// bounded max-heap of size k so only O(n log k) comparisons are made.
func kSmallestSum(dists []float64, k int) float64 {
	if k <= 0 {
		return 0
	}

	h := make(floatMaxHeap, 0, k)
	heap.Init(&h)

	for _, d := range dists {
		if h.Len() < k {
			heap.Push(&h, d)
		} else if d < h[0] {
			heap.Pop(&h)
			heap.Push(&h, d)
		}
	}

	var sum float64
	for _, d := range h {
		sum += d
	}

	return sum
}
