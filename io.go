package randomworld

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
)

// LoadExamples reads a CSV file with no header, one row per example:
//
//	label, x1, x2, ..., xd
//
// label parses as a non-negative integer, x1..xd as reals. Every record
// must share the same arity d; a mismatch is a data error, returned (not
// panicked) per spec §7.2.
func LoadExamples(path string) (inputs [][]float64, targets []int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, Wrapper(ErrIO, err.Error())
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	d := -1

	for {
		record, rerr := r.Read()
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				break
			}
			return nil, nil, Wrapper(ErrIO, "LoadExamples: "+rerr.Error())
		}

		if d == -1 {
			d = len(record) - 1
		} else if len(record)-1 != d {
			return nil, nil, Wrapper(ErrIO, "LoadExamples: inconsistent row width")
		}

		label, perr := strconv.Atoi(record[0])
		if perr != nil || label < 0 {
			return nil, nil, Wrapper(ErrIO, "LoadExamples: bad label "+record[0])
		}

		row := make([]float64, d)
		for i, v := range record[1:] {
			x, ferr := strconv.ParseFloat(v, 64)
			if ferr != nil {
				return nil, nil, Wrapper(ErrIO, "LoadExamples: bad feature value "+v)
			}
			row[i] = x
		}

		inputs = append(inputs, row)
		targets = append(targets, label)
	}

	return inputs, targets, nil
}

// WritePredictions writes a p-value (or other real-valued) matrix, one
// row per test object, one column per label.
func WritePredictions(path string, matrix [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return Wrapper(ErrIO, err.Error())
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	for _, row := range matrix {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if werr := w.Write(record); werr != nil {
			return Wrapper(ErrIO, werr.Error())
		}
	}

	return nil
}

// WriteRegions writes a boolean region matrix, one row per test object,
// one column per label.
func WriteRegions(path string, matrix [][]bool) error {
	f, err := os.Create(path)
	if err != nil {
		return Wrapper(ErrIO, err.Error())
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	for _, row := range matrix {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = strconv.FormatBool(v)
		}
		if werr := w.Write(record); werr != nil {
			return Wrapper(ErrIO, werr.Error())
		}
	}

	return nil
}

// LoadPValues reads back a matrix written by WritePredictions.
func LoadPValues(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Wrapper(ErrIO, err.Error())
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var out [][]float64

	for {
		record, rerr := r.Read()
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				break
			}
			return nil, Wrapper(ErrIO, "LoadPValues: "+rerr.Error())
		}

		row := make([]float64, len(record))
		for i, v := range record {
			x, ferr := strconv.ParseFloat(v, 64)
			if ferr != nil {
				return nil, Wrapper(ErrIO, "LoadPValues: bad value "+v)
			}
			row[i] = x
		}

		out = append(out, row)
	}

	return out, nil
}
