package randomworld

import "fmt"

// Store is a label-partitioned family of training (or calibration) rows.
// Store[y] holds every row with label y, in insertion order.
type Store struct {
	d    int           // row width, fixed once the first row is seen
	rows [][][]float64 // rows[y] is the bucket of rows for label y
}

// NewStore creates an empty Store sized for nLabels labels and row width d.
func NewStore(nLabels, d int) *Store {
	if nLabels < 1 {
		panic(Wrapper(ErrStore, "NewStore: nLabels must be at least 1"))
	}
	if d < 1 {
		panic(Wrapper(ErrStore, "NewStore: d must be at least 1"))
	}

	s := &Store{d: d, rows: make([][][]float64, nLabels)}
	for y := range s.rows {
		s.rows[y] = make([][]float64, 0)
	}

	return s
}

// Split buckets rows by label into a new Store, preserving input order
// within each bucket.
func Split(rows [][]float64, labels []int, nLabels int) *Store {
	if len(rows) != len(labels) {
		panic(Wrapper(ErrStore, "Split: rows/labels length mismatch"))
	}

	d := 0
	if len(rows) > 0 {
		d = len(rows[0])
	} else {
		d = 1
	}

	s := NewStore(nLabels, d)
	for i, r := range rows {
		s.appendOne(r, labels[i])
	}

	return s
}

// Append appends each (x,y) pair into the matching label bucket.
// O(len(rows)*d) amortised.
func (s *Store) Append(rows [][]float64, labels []int) {
	if len(rows) != len(labels) {
		panic(Wrapper(ErrStore, "Append: rows/labels length mismatch"))
	}

	for i, r := range rows {
		s.appendOne(r, labels[i])
	}
}

func (s *Store) appendOne(row []float64, y int) {
	if y < 0 || y >= len(s.rows) {
		panic(Wrapper(ErrStore, fmt.Sprintf("label %d out of range [0,%d)", y, len(s.rows))))
	}
	if len(row) != s.d {
		panic(Wrapper(ErrStore, fmt.Sprintf("dimension mismatch: got %d, want %d", len(row), s.d)))
	}

	cp := make([]float64, s.d)
	copy(cp, row)
	s.rows[y] = append(s.rows[y], cp)
}

// RowsOf returns a view of the rows stored under label y. The slice must
// not be mutated by callers.
func (s *Store) RowsOf(y int) [][]float64 {
	if y < 0 || y >= len(s.rows) {
		panic(Wrapper(ErrStore, fmt.Sprintf("label %d out of range [0,%d)", y, len(s.rows))))
	}

	return s.rows[y]
}

// NLabels returns the number of label buckets.
func (s *Store) NLabels() int { return len(s.rows) }

// Dim returns the fixed row width.
func (s *Store) Dim() int { return s.d }

// Size returns the total number of rows across all labels.
func (s *Store) Size() int {
	n := 0
	for _, b := range s.rows {
		n += len(b)
	}

	return n
}

// AllRows calls fn for every (row, label) pair across all buckets, in
// label-major, insertion order within each label.
func (s *Store) AllRows(fn func(row []float64, label int)) {
	for y, b := range s.rows {
		for _, r := range b {
			fn(r, y)
		}
	}
}
