package trainer

import (
	"strconv"
	"strings"

	"github.com/ezoic/olsfit/pkg/errors"
)

// Config describes one training run.
type Config struct {
	// DataPath is the CSV file with a header row.
	DataPath string
	// TargetColumn names the column to predict. Every other column is a feature.
	TargetColumn string
	// BeforePath and AfterPath receive the gob artifacts written before and
	// after Fit. Existing files are overwritten.
	BeforePath string
	AfterPath  string
	// PredictRow holds one value per feature, in the file's column order.
	PredictRow   []float64
	FitIntercept bool

	// Optional outputs, skipped when empty.
	ExportJSONPath string
	PlotPath       string
	ReportPath     string
}

// DefaultConfig returns the home price example: predict price from area
// for a 3300 square foot home.
func DefaultConfig() *Config {
	return &Config{
		DataPath:     "homeprices.csv",
		TargetColumn: "price",
		BeforePath:   "model_b4_training",
		AfterPath:    "model_after_training",
		PredictRow:   []float64{3300},
		FitIntercept: true,
	}
}

// Validate checks c and returns the config to run with. A nil Config
// validates to DefaultConfig.
func (c *Config) Validate() (*Config, error) {
	if c == nil {
		return DefaultConfig(), nil
	}

	switch {
	case c.DataPath == "":
		return nil, errors.NewValidationError("DataPath", "must not be empty", c.DataPath)
	case c.TargetColumn == "":
		return nil, errors.NewValidationError("TargetColumn", "must not be empty", c.TargetColumn)
	case c.BeforePath == "":
		return nil, errors.NewValidationError("BeforePath", "must not be empty", c.BeforePath)
	case c.AfterPath == "":
		return nil, errors.NewValidationError("AfterPath", "must not be empty", c.AfterPath)
	case len(c.PredictRow) == 0:
		return nil, errors.NewValidationError("PredictRow", "must hold at least one value", c.PredictRow)
	}

	out := *c
	out.PredictRow = append([]float64(nil), c.PredictRow...)
	return &out, nil
}

// ParseRow parses a comma separated list of feature values such as "3300"
// or "4, 5".
func ParseRow(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.NewValidationError("row", "must hold at least one value", s)
	}

	fields := strings.Split(s, ",")
	row := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, errors.NewValidationError("row", "value "+strconv.Itoa(i+1)+" is not a number", s)
		}
		row[i] = v
	}
	return row, nil
}
