// Command icp-predict runs Inductive Conformal Prediction over a CSV
// training file and a CSV test file, writing either a p-value matrix or
// a region matrix to an output CSV file. There is no on-line mode: if the
// TEST argument is omitted, the command trains and calibrates, then exits
// with an error.
//
// The training file supplies both the proper training set and the
// calibration set: rows are split deterministically, the last third (by
// insertion order within each label, preserving §3's ordering invariant)
// becoming the calibration set and the rest the proper training set.
// original_source/src/bin/icp-predict.rs is truncated exactly where it
// would have shown its own split policy, so this is a documented design
// decision (see DESIGN.md) rather than a port of specific source lines.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	rw "github.com/invertedv/randomworld"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

type opts struct {
	epsilon   float64
	hasEps    bool
	smooth    bool
	seed      int64
	knn       int
	nLabels   int
	kernel    string
	bandwidth float64
	hasBW     bool
	verbose   bool
}

func main() {
	o := &opts{}

	root := &cobra.Command{
		Use:   "icp-predict",
		Short: "Predict data using Inductive Conformal Prediction",
	}
	root.PersistentFlags().Float64VarP(&o.epsilon, "epsilon", "e", 0, "significance level; if set, output is a region matrix")
	root.PersistentFlags().BoolVarP(&o.smooth, "smooth", "s", false, "use smooth CP")
	root.PersistentFlags().Int64Var(&o.seed, "seed", 0, "PRNG seed (only used with --smooth)")
	root.PersistentFlags().IntVar(&o.nLabels, "n-labels", 0, "override inferred label count")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "verbose logging")

	knnCmd := &cobra.Command{
		Use:   "knn OUT TRAIN [TEST]",
		Short: "k-NN nonconformity measure",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.hasEps = cmd.Flags().Changed("epsilon")
			return runKNN(o, args)
		},
	}
	knnCmd.Flags().IntVarP(&o.knn, "knn", "k", 5, "number of neighbors")

	kdeCmd := &cobra.Command{
		Use:   "kde OUT TRAIN [TEST]",
		Short: "KDE nonconformity measure (reserved, unimplemented)",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.hasEps = cmd.Flags().Changed("epsilon")
			o.hasBW = cmd.Flags().Changed("bandwidth")
			return runKDE(o, args)
		},
	}
	kdeCmd.Flags().StringVar(&o.kernel, "kernel", "", "KDE kernel (reserved)")
	kdeCmd.Flags().Float64Var(&o.bandwidth, "bandwidth", 0, "KDE bandwidth (reserved)")

	root.AddCommand(knnCmd, kdeCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runKNN(o *opts, args []string) error {
	ncm, err := rw.BuildNCM("knn", o.knn, "", nil)
	if err != nil {
		return errors.Wrap(err, "icp-predict knn")
	}

	return predict(o, ncm, args)
}

func runKDE(o *opts, args []string) error {
	var bw *float64
	if o.hasBW {
		bw = &o.bandwidth
	}

	ncm, err := rw.BuildNCM("kde", 0, o.kernel, bw)
	if err != nil {
		return errors.Wrap(err, "icp-predict kde")
	}

	return predict(o, ncm, args)
}

func predict(o *opts, ncm rw.NCM, args []string) error {
	outFile, trainFile := args[0], args[1]

	var testFile string
	if len(args) == 3 {
		testFile = args[2]
	}

	rw.Verbose = o.verbose
	if o.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	allX, allY, err := rw.LoadExamples(trainFile)
	if err != nil {
		return errors.Wrap(err, "loading training data")
	}

	nLabels := o.nLabels
	if nLabels == 0 {
		nLabels = rw.CountLabels(allY)
	}

	trainX, trainY, calX, calY := splitCalibration(allX, allY, nLabels)

	var epsPtr *float64
	if o.hasEps {
		epsPtr = &o.epsilon
	}

	var cp *rw.CP
	if o.smooth {
		cp = rw.NewSmoothInductiveCP(ncm, nLabels, epsPtr, o.seed)
	} else {
		cp = rw.NewInductiveCP(ncm, nLabels, epsPtr)
	}

	log.Debug().Int("train_rows", len(trainX)).Int("cal_rows", len(calX)).Int("n_labels", nLabels).Msg("training")

	if err := cp.Train(trainX, trainY); err != nil {
		return errors.Wrap(err, "training")
	}

	if err := cp.Calibrate(calX, calY); err != nil {
		return errors.Wrap(err, "calibrating")
	}

	if testFile == "" {
		return fmt.Errorf("icp-predict: on-line mode requires a fixed calibration set; TEST is required")
	}

	testX, _, err := rw.LoadExamples(testFile)
	if err != nil {
		return errors.Wrap(err, "loading test data")
	}

	log.Info().Int("test_rows", len(testX)).Str("out", outFile).Msg("predicting")

	if epsPtr != nil {
		R, err := cp.Predict(testX)
		if err != nil {
			return errors.Wrap(err, "predicting regions")
		}

		return errors.Wrap(rw.WriteRegions(outFile, R), "writing output")
	}

	P, err := cp.PredictConfidence(testX)
	if err != nil {
		return errors.Wrap(err, "predicting p-values")
	}

	return errors.Wrap(rw.WritePredictions(outFile, P), "writing output")
}

// splitCalibration partitions rows by label (preserving insertion order,
// per spec §3) and assigns the last third of each label's rows to
// calibration, the rest to training. Labels with fewer than 3 rows
// contribute everything to training and nothing to calibration.
func splitCalibration(X [][]float64, y []int, nLabels int) (trainX [][]float64, trainY []int, calX [][]float64, calY []int) {
	byLabel := make([][]int, nLabels)
	for i, label := range y {
		byLabel[label] = append(byLabel[label], i)
	}

	for label, idx := range byLabel {
		nCal := len(idx) / 3
		split := len(idx) - nCal

		for _, i := range idx[:split] {
			trainX = append(trainX, X[i])
			trainY = append(trainY, label)
		}
		for _, i := range idx[split:] {
			calX = append(calX, X[i])
			calY = append(calY, label)
		}
	}

	return trainX, trainY, calX, calY
}
