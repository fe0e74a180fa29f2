package model

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelWeightsValidate(t *testing.T) {
	testData := map[string]struct {
		weights *ModelWeights
		errMsg  string
	}{
		"valid": {
			weights: &ModelWeights{ModelType: "LinearRegression", Version: "1.0.0", Coefficients: []float64{2}, IsFitted: true},
		},
		"missing type": {
			weights: &ModelWeights{Version: "1.0.0"},
			errMsg:  "model_type",
		},
		"missing version": {
			weights: &ModelWeights{ModelType: "LinearRegression"},
			errMsg:  "version",
		},
		"unfitted with coefficients": {
			weights: &ModelWeights{ModelType: "LinearRegression", Version: "1.0.0", Coefficients: []float64{1}},
			errMsg:  "unfitted",
		},
		"fitted without coefficients": {
			weights: &ModelWeights{ModelType: "LinearRegression", Version: "1.0.0", IsFitted: true},
			errMsg:  "must have coefficients",
		},
		"feature name mismatch": {
			weights: &ModelWeights{
				ModelType: "LinearRegression", Version: "1.0.0", IsFitted: true,
				Coefficients: []float64{1, 2}, Features: []string{"area"},
			},
			errMsg: "features",
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			err := td.weights.Validate()
			if td.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), td.errMsg)
		})
	}
}

func TestModelWeightsJSONAndClone(t *testing.T) {
	w := &ModelWeights{
		ModelType:       "LinearRegression",
		Version:         "1.0.0",
		Coefficients:    []float64{135.78767123},
		Intercept:       180616.43835616,
		Features:        []string{"area"},
		Hyperparameters: map[string]interface{}{"fit_intercept": true},
		IsFitted:        true,
	}

	data, err := w.ToJSON()
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte(`"model_type": "LinearRegression"`)))

	var decoded ModelWeights
	require.NoError(t, decoded.FromJSON(data))
	assert.Equal(t, w.Coefficients, decoded.Coefficients)
	assert.Equal(t, w.Checksum(), decoded.Checksum())

	clone := w.Clone()
	clone.Coefficients[0] = 0
	clone.Hyperparameters["fit_intercept"] = false
	assert.NotEqual(t, w.Coefficients[0], clone.Coefficients[0])
	assert.Equal(t, true, w.Hyperparameters["fit_intercept"])
	assert.Len(t, strings.TrimSpace(w.Checksum()), 64)
}
