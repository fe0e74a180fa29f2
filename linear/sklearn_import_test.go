package linear_test

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/olsfit/core/model"
	"github.com/ezoic/olsfit/linear"
)

func encodeSKLearn(t *testing.T, params model.SKLearnLinearRegressionParams) *bytes.Buffer {
	t.Helper()

	skModel := model.SKLearnModel{
		ModelSpec: model.SKLearnModelSpec{
			Name:           "LinearRegression",
			FormatVersion:  "1.0",
			SKLearnVersion: "1.3.0",
		},
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("Failed to marshal params: %v", err)
	}
	skModel.Params = paramsJSON

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(&skModel); err != nil {
		t.Fatalf("Failed to encode model: %v", err)
	}
	return &buf
}

func TestLinearRegression_LoadFromSKLearn(t *testing.T) {
	buf := encodeSKLearn(t, model.SKLearnLinearRegressionParams{
		Coefficients: []float64{2.0, 3.0, -1.0},
		Intercept:    5.0,
		NFeatures:    3,
		FeatureNames: []string{"area", "bedrooms", "age"},
	})

	lr := linear.NewLinearRegression()
	if err := lr.LoadFromSKLearnReader(buf); err != nil {
		t.Fatalf("Failed to load from sklearn: %v", err)
	}

	if lr.NFeatures != 3 {
		t.Errorf("Expected NFeatures=3, got %d", lr.NFeatures)
	}
	if lr.Intercept != 5.0 {
		t.Errorf("Expected Intercept=5.0, got %f", lr.Intercept)
	}
	expectedWeights := []float64{2.0, 3.0, -1.0}
	for i, w := range lr.GetWeights() {
		if w != expectedWeights[i] {
			t.Errorf("Weight[%d]: expected %f, got %f", i, expectedWeights[i], w)
		}
	}
	if !lr.IsFitted() {
		t.Error("Model should be fitted after loading from sklearn")
	}

	// 2*1 + 3*2 - 1*3 + 5 = 10
	got, err := lr.PredictRow([]float64{1, 2, 3})
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}
	if math.Abs(got-10) > 1e-12 {
		t.Errorf("PredictRow = %v, want 10", got)
	}
}

func TestLinearRegression_ExportRoundTrip(t *testing.T) {
	lr := linear.NewLinearRegression(linear.WithFeatureNames([]string{"area"}))
	X := mat.NewDense(5, 1, []float64{2600, 3000, 3200, 3600, 4000})
	y := mat.NewVecDense(5, []float64{550000, 565000, 610000, 680000, 725000})
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := lr.ExportToSKLearn(path); err != nil {
		t.Fatalf("Failed to export: %v", err)
	}

	skModel, err := model.LoadSKLearnModelFromFile(path)
	if err != nil {
		t.Fatalf("Failed to read envelope: %v", err)
	}
	if skModel.ModelSpec.Name != "LinearRegression" || skModel.ModelSpec.FormatVersion != "1.0" {
		t.Errorf("unexpected model spec: %+v", skModel.ModelSpec)
	}

	loaded := linear.NewLinearRegression()
	if err := loaded.LoadFromSKLearn(path); err != nil {
		t.Fatalf("Failed to load: %v", err)
	}

	want, _ := lr.PredictRow([]float64{3300})
	got, err := loaded.PredictRow([]float64{3300})
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("round trip prediction = %v, want %v", got, want)
	}
	if len(loaded.FeatureNames) != 1 || loaded.FeatureNames[0] != "area" {
		t.Errorf("feature names = %v, want [area]", loaded.FeatureNames)
	}
}

func TestLinearRegression_ExportRoundTripNoIntercept(t *testing.T) {
	lr := linear.NewLinearRegression(linear.WithFitIntercept(false))
	if err := lr.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewVecDense(3, []float64{2, 4, 6})); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	var buf bytes.Buffer
	if err := lr.ExportToSKLearnWriter(&buf); err != nil {
		t.Fatalf("Failed to export: %v", err)
	}

	loaded := linear.NewLinearRegression()
	if err := loaded.LoadFromSKLearnReader(&buf); err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if loaded.FitIntercept {
		t.Error("FitIntercept = true after importing a model fitted without intercept")
	}
	if got := loaded.GetParams()["fit_intercept"]; got != false {
		t.Errorf("GetParams fit_intercept = %v, want false", got)
	}

	out, err := loaded.MarshalJSON()
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if !strings.Contains(string(out), `"fit_intercept":false`) {
		t.Errorf("MarshalJSON = %s, want fit_intercept false", out)
	}
}

func TestLinearRegression_LoadFromSKLearnWithoutFitIntercept(t *testing.T) {
	tests := []struct {
		name      string
		intercept float64
		want      bool
	}{
		{name: "zero intercept", intercept: 0, want: false},
		{name: "non-zero intercept", intercept: 5, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := encodeSKLearn(t, model.SKLearnLinearRegressionParams{
				Coefficients: []float64{2},
				Intercept:    tt.intercept,
				NFeatures:    1,
			})

			lr := linear.NewLinearRegression(linear.WithFitIntercept(!tt.want))
			if err := lr.LoadFromSKLearnReader(buf); err != nil {
				t.Fatalf("Failed to load: %v", err)
			}
			if lr.FitIntercept != tt.want {
				t.Errorf("FitIntercept = %v, want %v", lr.FitIntercept, tt.want)
			}
		})
	}
}

func TestLinearRegression_ExportNotFitted(t *testing.T) {
	var buf bytes.Buffer
	if err := linear.NewLinearRegression().ExportToSKLearnWriter(&buf); err == nil {
		t.Error("Expected error when exporting an unfitted model")
	}
}

func TestLinearRegression_InvalidSKLearnData(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		contains string
	}{
		{
			name:     "invalid json",
			json:     `{not json`,
			contains: "failed to decode JSON",
		},
		{
			name:     "missing format version",
			json:     `{"model_spec":{"name":"LinearRegression"},"params":{}}`,
			contains: "format_version is required",
		},
		{
			name:     "unsupported format version",
			json:     `{"model_spec":{"name":"LinearRegression","format_version":"2.0"},"params":{}}`,
			contains: "unsupported format version",
		},
		{
			name:     "wrong model",
			json:     `{"model_spec":{"name":"Ridge","format_version":"1.0"},"params":{}}`,
			contains: "expected LinearRegression",
		},
		{
			name:     "empty coefficients",
			json:     `{"model_spec":{"name":"LinearRegression","format_version":"1.0"},"params":{"coefficients":[],"intercept":1,"n_features":0}}`,
			contains: "coefficients cannot be empty",
		},
		{
			name:     "n_features mismatch",
			json:     `{"model_spec":{"name":"LinearRegression","format_version":"1.0"},"params":{"coefficients":[1,2],"intercept":1,"n_features":3}}`,
			contains: "does not match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := linear.NewLinearRegression()
			err := lr.LoadFromSKLearnReader(strings.NewReader(tt.json))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.contains)
			}
			if lr.IsFitted() {
				t.Error("Model should not be fitted after a failed load")
			}
		})
	}
}
