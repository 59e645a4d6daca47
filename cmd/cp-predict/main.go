// Command cp-predict runs Transductive Conformal Prediction over a CSV
// training (and optional test) file, writing either a p-value matrix or a
// region matrix to an output CSV file.
//
// If no testing file is given, the command runs in on-line mode: test rows
// are read one at a time from stdin, predicted, then folded into the
// training set via Update before the next row is read.
package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

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
		Use:   "cp-predict",
		Short: "Predict data using Transductive Conformal Prediction",
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
		return errors.Wrap(err, "cp-predict knn")
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
		return errors.Wrap(err, "cp-predict kde")
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

	trainX, trainY, err := rw.LoadExamples(trainFile)
	if err != nil {
		return errors.Wrap(err, "loading training data")
	}

	nLabels := o.nLabels
	if nLabels == 0 {
		nLabels = rw.CountLabels(trainY)
	}

	var epsPtr *float64
	if o.hasEps {
		epsPtr = &o.epsilon
	}

	var cp *rw.CP
	if o.smooth {
		cp = rw.NewSmoothCP(ncm, nLabels, epsPtr, o.seed)
	} else {
		cp = rw.NewCP(ncm, nLabels, epsPtr)
	}

	log.Debug().Int("rows", len(trainX)).Int("n_labels", nLabels).Msg("training")

	if err := cp.Train(trainX, trainY); err != nil {
		return errors.Wrap(err, "training")
	}

	if testFile == "" {
		return runOnline(cp, outFile, epsPtr)
	}

	testX, _, err := rw.LoadExamples(testFile)
	if err != nil {
		return errors.Wrap(err, "loading test data")
	}

	log.Info().Int("test_rows", len(testX)).Str("out", outFile).Msg("predicting")

	return writeResult(cp, testX, outFile, epsPtr)
}

func writeResult(cp *rw.CP, testX [][]float64, outFile string, epsPtr *float64) error {
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

// runOnline reads test rows one at a time from stdin (CSV, label column
// required so the format matches training data), predicts each against
// the CP as it stood before that row arrived, then folds the row into
// the training set via Update before reading the next one. Results for
// all rows are accumulated and written once, in arrival order, to
// outFile.
func runOnline(cp *rw.CP, outFile string, epsPtr *float64) error {
	scanner := bufio.NewScanner(os.Stdin)

	var pvalues [][]float64
	var regions [][]bool

	for scanner.Scan() {
		row, label, perr := parseOnlineRow(scanner.Text())
		if perr != nil {
			return errors.Wrap(perr, "parsing online row")
		}

		if epsPtr != nil {
			r, err := cp.Predict([][]float64{row})
			if err != nil {
				return errors.Wrap(err, "predicting regions")
			}
			regions = append(regions, r[0])
		} else {
			p, err := cp.PredictConfidence([][]float64{row})
			if err != nil {
				return errors.Wrap(err, "predicting p-values")
			}
			pvalues = append(pvalues, p[0])
		}

		if err := cp.Update([][]float64{row}, []int{label}); err != nil {
			return errors.Wrap(err, "online update")
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	if epsPtr != nil {
		return errors.Wrap(rw.WriteRegions(outFile, regions), "writing output")
	}

	return errors.Wrap(rw.WritePredictions(outFile, pvalues), "writing output")
}

// parseOnlineRow parses a single CSV line "label,x1,x2,..." as used by
// LoadExamples, for on-line mode where rows arrive one at a time.
func parseOnlineRow(line string) (row []float64, label int, err error) {
	r := csv.NewReader(strings.NewReader(line))
	record, rerr := r.Read()
	if rerr != nil {
		return nil, 0, rerr
	}

	label, err = strconv.Atoi(record[0])
	if err != nil {
		return nil, 0, err
	}

	row = make([]float64, len(record)-1)
	for i, v := range record[1:] {
		x, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return nil, 0, ferr
		}
		row[i] = x
	}

	return row, label, nil
}
