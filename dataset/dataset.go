// Package dataset loads delimited numeric tables and splits them into a
// feature matrix and a target vector for training.
//
// A Dataset is immutable once loaded. Split keeps the file's column order
// for the features and keeps rows aligned between X and Y, so the column
// order used at prediction time is FeatureNames.
//
//	ds, err := dataset.LoadCSV("homeprices.csv")
//	if err != nil {
//		return err
//	}
//	split, err := ds.Split("price")
//	if err != nil {
//		return err
//	}
//	err = lr.Fit(split.X, split.Y)
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/olsfit/pkg/errors"
)

// Dataset is an in-memory table of float64 values with named columns.
type Dataset struct {
	Columns []string
	Rows    [][]float64
}

// Split is a Dataset separated into features and a target.
type Split struct {
	FeatureNames []string
	Target       string
	X            *mat.Dense
	Y            *mat.VecDense
}

// LoadCSV reads a comma separated file with a header row.
func LoadCSV(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer func() { _ = file.Close() }()

	ds, err := ReadCSV(file)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return ds, nil
}

// ReadCSV parses comma separated data with a header row from r. Every cell
// after the header must parse as a float64.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewModelError("ReadCSV", "missing header row", errors.ErrEmptyData)
	}
	if err != nil {
		return nil, errors.NewModelError("ReadCSV", "invalid header row", malformed(err))
	}

	columns, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{Columns: columns}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewModelError("ReadCSV", "invalid record", malformed(err))
		}

		line, _ := reader.FieldPos(0)
		row := make([]float64, len(record))
		for j, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errors.NewModelError("ReadCSV",
					fmt.Sprintf("line %d, column %q: cannot parse %q as a number", line, columns[j], cell),
					errors.ErrMalformedData)
			}
			row[j] = v
		}
		ds.Rows = append(ds.Rows, row)
	}

	if len(ds.Rows) == 0 {
		return nil, errors.NewModelError("ReadCSV", "no data rows", errors.ErrEmptyData)
	}

	return ds, nil
}

func parseHeader(header []string) ([]string, error) {
	columns := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == "" {
			return nil, errors.NewModelError("ReadCSV",
				fmt.Sprintf("header column %d is empty", i+1), errors.ErrMalformedData)
		}
		if _, ok := seen[name]; ok {
			return nil, errors.NewModelError("ReadCSV",
				fmt.Sprintf("duplicate header column %q", name), errors.ErrMalformedData)
		}
		seen[name] = struct{}{}
		columns[i] = name
	}
	return columns, nil
}

// malformed classifies csv parse errors, which already carry line and
// column positions, as ErrMalformedData.
func malformed(err error) error {
	return errors.Mark(err, errors.ErrMalformedData)
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// ColumnIndex returns the position of the named column.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	for i, c := range d.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Column returns a copy of the named column's values.
func (d *Dataset) Column(name string) ([]float64, error) {
	idx, ok := d.ColumnIndex(name)
	if !ok {
		return nil, columnNotFound("Dataset.Column", name)
	}
	col := make([]float64, len(d.Rows))
	for i, row := range d.Rows {
		col[i] = row[idx]
	}
	return col, nil
}

// Split separates target from the remaining columns. Feature columns keep
// their order in the dataset.
func (d *Dataset) Split(target string) (*Split, error) {
	idx, ok := d.ColumnIndex(target)
	if !ok {
		return nil, columnNotFound("Dataset.Split", target)
	}

	nFeatures := len(d.Columns) - 1
	if nFeatures == 0 {
		return nil, errors.NewModelError("Dataset.Split",
			fmt.Sprintf("no feature columns besides target %q", target), errors.ErrEmptyData)
	}

	names := make([]string, 0, nFeatures)
	for i, c := range d.Columns {
		if i != idx {
			names = append(names, c)
		}
	}

	n := len(d.Rows)
	if n == 0 {
		return nil, errors.NewModelError("Dataset.Split", "no data rows", errors.ErrEmptyData)
	}
	X := mat.NewDense(n, nFeatures, nil)
	Y := mat.NewVecDense(n, nil)
	for i, row := range d.Rows {
		j := 0
		for k, v := range row {
			if k == idx {
				Y.SetVec(i, v)
				continue
			}
			X.Set(i, j, v)
			j++
		}
	}

	return &Split{FeatureNames: names, Target: target, X: X, Y: Y}, nil
}

func columnNotFound(op, name string) error {
	return errors.NewValueErrorWrap(op, fmt.Sprintf("column %q not found", name), errors.ErrColumnNotFound)
}
