package model

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/ezoic/olsfit/pkg/errors"
)

// SKLearnFormatVersion is the only envelope version understood by this package.
const SKLearnFormatVersion = "1.0"

// SKLearnModelSpec describes the model carried in an SKLearnModel envelope.
type SKLearnModelSpec struct {
	Name           string `json:"name"`
	FormatVersion  string `json:"format_version"`
	SKLearnVersion string `json:"sklearn_version,omitempty"`
}

// SKLearnLinearRegressionParams are the learned parameters of a LinearRegression.
// FitIntercept is nil in envelopes written before the field existed.
type SKLearnLinearRegressionParams struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	NFeatures    int       `json:"n_features"`
	FeatureNames []string  `json:"feature_names_in,omitempty"`
	FitIntercept *bool     `json:"fit_intercept,omitempty"`
}

// SKLearnModel is a JSON envelope exchanged with scikit-learn tooling.
// Params is decoded lazily according to ModelSpec.Name.
type SKLearnModel struct {
	ModelSpec SKLearnModelSpec `json:"model_spec"`
	Params    json.RawMessage  `json:"params"`
}

// LoadSKLearnModelFromFile reads an SKLearnModel envelope from filename.
func LoadSKLearnModelFromFile(filename string) (*SKLearnModel, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return LoadSKLearnModelFromReader(file)
}

// LoadSKLearnModelFromReader decodes and validates an SKLearnModel envelope.
func LoadSKLearnModelFromReader(r io.Reader) (*SKLearnModel, error) {
	var model SKLearnModel
	if err := json.NewDecoder(r).Decode(&model); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	if model.ModelSpec.FormatVersion == "" {
		return nil, errors.NewValueError("LoadSKLearnModel", "format_version is required")
	}
	if model.ModelSpec.FormatVersion != SKLearnFormatVersion {
		return nil, errors.NewValueError("LoadSKLearnModel",
			fmt.Sprintf("unsupported format version: %s", model.ModelSpec.FormatVersion))
	}
	if model.ModelSpec.Name == "" {
		return nil, errors.NewValueError("LoadSKLearnModel", "model name is required")
	}

	return &model, nil
}

// LoadLinearRegressionParams extracts LinearRegression parameters from model.
func LoadLinearRegressionParams(model *SKLearnModel) (*SKLearnLinearRegressionParams, error) {
	if model.ModelSpec.Name != "LinearRegression" {
		return nil, errors.NewValueError("LoadLinearRegressionParams",
			fmt.Sprintf("expected LinearRegression, got %s", model.ModelSpec.Name))
	}

	var params SKLearnLinearRegressionParams
	if err := json.Unmarshal(model.Params, &params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal params: %w", err)
	}

	if len(params.Coefficients) == 0 {
		return nil, errors.NewValueError("LoadLinearRegressionParams",
			"coefficients cannot be empty")
	}
	if params.NFeatures != len(params.Coefficients) {
		return nil, errors.NewValueError("LoadLinearRegressionParams",
			fmt.Sprintf("n_features (%d) does not match coefficients length (%d)",
				params.NFeatures, len(params.Coefficients)))
	}
	if len(params.FeatureNames) > 0 && len(params.FeatureNames) != params.NFeatures {
		return nil, errors.NewValueError("LoadLinearRegressionParams",
			fmt.Sprintf("feature_names_in (%d) does not match n_features (%d)",
				len(params.FeatureNames), params.NFeatures))
	}

	return &params, nil
}

// ExportSKLearnModel writes params wrapped in an SKLearnModel envelope to w.
func ExportSKLearnModel(modelName string, params interface{}, w io.Writer) error {
	model := SKLearnModel{
		ModelSpec: SKLearnModelSpec{
			Name:          modelName,
			FormatVersion: SKLearnFormatVersion,
		},
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}
	model.Params = paramsJSON

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&model); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	return nil
}
