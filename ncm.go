package randomworld

// NCM is the minimum capability set any nonconformity measure must
// provide. The CP engine is polymorphic over this interface.
type NCM interface {
	// Name identifies the NCM for diagnostics/logging.
	Name() string

	// Train trains the NCM on (inputs, targets) for nLabels labels. May
	// only be called once.
	Train(inputs [][]float64, targets []int, nLabels int) error

	// Calibrate populates a calibration store for ICP use. May only be
	// called once, and only after Train.
	Calibrate(inputs [][]float64, targets []int) error

	// Update appends more training rows after Train.
	Update(inputs [][]float64, targets []int) error

	// ScoreAugmented returns the nonconformity scores of every training
	// row under label y plus the score of the hypothetical pair (x,y),
	// as if (x,y) had been appended to the label-y training bucket. The
	// last entry of the returned slice is the score of (x,y) itself.
	// The underlying store is left unmodified on return.
	ScoreAugmented(x []float64, y int) ([]float64, error)

	// ScoreCalibration returns the calibration scores for label y
	// together with the test score of x against the (fixed) training
	// store, for ICP use. The last entry is the test score.
	ScoreCalibration(x []float64, y int) ([]float64, error)
}

// KDE is a placeholder nonconformity measure, declared to satisfy the NCM
// interface and referenced by the CLI's "kde" sub-command, but not
// implemented — mirroring the source crate's unimplemented!() KDE NCM.
type KDE struct {
	Kernel    string
	Bandwidth float64
}

// NewKDE constructs a KDE NCM stub. Every method returns an error wrapping
// ErrNCM; there is no supported use of this type beyond satisfying NCM.
func NewKDE(kernel string, bandwidth float64) *KDE {
	return &KDE{Kernel: kernel, Bandwidth: bandwidth}
}

func (k *KDE) Name() string { return "kde" }

func (k *KDE) notImplemented() error {
	return Wrapper(ErrNCM, "KDE nonconformity measure is not implemented")
}

func (k *KDE) Train(_ [][]float64, _ []int, _ int) error            { return k.notImplemented() }
func (k *KDE) Calibrate(_ [][]float64, _ []int) error               { return k.notImplemented() }
func (k *KDE) Update(_ [][]float64, _ []int) error                  { return k.notImplemented() }
func (k *KDE) ScoreAugmented(_ []float64, _ int) ([]float64, error) { return nil, k.notImplemented() }
func (k *KDE) ScoreCalibration(_ []float64, _ int) ([]float64, error) {
	return nil, k.notImplemented()
}
