package trainer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/olsfit/core/model"
	"github.com/ezoic/olsfit/linear"
	"github.com/ezoic/olsfit/pkg/errors"
	"github.com/ezoic/olsfit/pkg/log"
)

const homePrices = "testdata/homeprices.csv"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testConfig(t *testing.T, dataPath string, row ...float64) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DataPath = dataPath
	cfg.BeforePath = filepath.Join(dir, "model_b4_training")
	cfg.AfterPath = filepath.Join(dir, "model_after_training")
	if len(row) > 0 {
		cfg.PredictRow = row
	}
	return cfg
}

func run(t *testing.T, cfg *Config) (*Result, error) {
	t.Helper()
	tr, err := New(cfg)
	require.NoError(t, err)
	return tr.Run()
}

func TestRunHomePrices(t *testing.T) {
	cfg := testConfig(t, homePrices)

	res, err := run(t, cfg)
	require.NoError(t, err)

	assert.InDelta(t, 628715.75342466, res.Prediction, 1e-6)
	require.Len(t, res.Coefficients, 1)
	assert.InDelta(t, 135.78767123, res.Coefficients[0], 1e-6)
	assert.InDelta(t, 180616.43835616, res.Intercept, 1e-6)
	assert.Equal(t, []string{"area"}, res.FeatureNames)
	assert.Equal(t, 5, res.NSamples)
	assert.NotEmpty(t, res.WeightHash)
	require.NotNil(t, res.Metrics)
	assert.Greater(t, res.Metrics.R2, 0.9)

	assert.FileExists(t, cfg.BeforePath)
	assert.FileExists(t, cfg.AfterPath)
}

func TestRunReloadArtifacts(t *testing.T) {
	cfg := testConfig(t, homePrices)
	res, err := run(t, cfg)
	require.NoError(t, err)

	after := linear.NewLinearRegression()
	require.NoError(t, model.LoadModel(after, cfg.AfterPath))
	pred, err := after.PredictRow(cfg.PredictRow)
	require.NoError(t, err)
	assert.Equal(t, res.Prediction, pred)
	assert.Equal(t, []string{"area"}, after.FeatureNames)

	before := linear.NewLinearRegression()
	require.NoError(t, model.LoadModel(before, cfg.BeforePath))
	_, err = before.PredictRow(cfg.PredictRow)
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))
}

func TestRunExactLinear(t *testing.T) {
	testData := map[string]struct {
		csv      string
		row      []float64
		expected float64
	}{
		"two rows": {
			csv:      "area,price\n1,5\n2,7\n",
			row:      []float64{3300},
			expected: 6603,
		},
		"target first": {
			csv:      "price,area\n5,1\n7,2\n9,3\n",
			row:      []float64{10},
			expected: 23,
		},
		"two features": {
			csv:      "a,b,price\n1,0,3\n0,1,4\n1,1,6\n2,3,14\n",
			row:      []float64{4, 5},
			expected: 24,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := run(t, testConfig(t, writeCSV(t, td.csv), td.row...))
			require.NoError(t, err)
			assert.InDelta(t, td.expected, res.Prediction, 1e-9)
		})
	}
}

func TestRunMissingTargetWritesNothing(t *testing.T) {
	cfg := testConfig(t, homePrices)
	cfg.TargetColumn = "cost"

	_, err := run(t, cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrColumnNotFound))

	assert.NoFileExists(t, cfg.BeforePath)
	assert.NoFileExists(t, cfg.AfterPath)
}

func TestRunLoadFailureWritesNothing(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing.csv"))

	_, err := run(t, cfg)
	require.Error(t, err)
	assert.NoFileExists(t, cfg.BeforePath)
}

func TestRunPredictRowLength(t *testing.T) {
	testData := map[string][]float64{
		"too long":  {3300, 1},
		"too short": {},
	}

	for name, row := range testData {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(t, homePrices)
			cfg.PredictRow = row

			tr, err := New(cfg)
			if len(row) == 0 {
				var ve *errors.ValidationError
				assert.True(t, errors.As(err, &ve))
				return
			}
			require.NoError(t, err)

			_, err = tr.Run()
			var dimErr *errors.DimensionError
			require.True(t, errors.As(err, &dimErr))
			assert.Equal(t, 1, dimErr.Expected)
			assert.Equal(t, 2, dimErr.Got)

			// Both artifacts are written before prediction fails.
			assert.FileExists(t, cfg.BeforePath)
			assert.FileExists(t, cfg.AfterPath)
		})
	}
}

func TestRunFitFailureKeepsBeforeArtifact(t *testing.T) {
	cfg := testConfig(t, writeCSV(t, "a,b,price\n1,2,3\n"), 1, 2)

	_, err := run(t, cfg)
	assert.True(t, errors.Is(err, errors.ErrSingularMatrix))

	assert.FileExists(t, cfg.BeforePath)
	assert.NoFileExists(t, cfg.AfterPath)
}

func TestRunOverwritesArtifacts(t *testing.T) {
	cfg := testConfig(t, homePrices)
	require.NoError(t, os.WriteFile(cfg.BeforePath, []byte("stale"), 0o600))
	require.NoError(t, os.WriteFile(cfg.AfterPath, []byte("stale"), 0o600))

	_, err := run(t, cfg)
	require.NoError(t, err)

	reg := linear.NewLinearRegression()
	require.NoError(t, model.LoadModel(reg, cfg.AfterPath))
	assert.True(t, reg.IsFitted())
}

func TestRunOptionalOutputs(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, homePrices)
	cfg.ExportJSONPath = filepath.Join(dir, "weights.json")
	cfg.PlotPath = filepath.Join(dir, "fit.png")
	cfg.ReportPath = filepath.Join(dir, "report.html")

	res, err := run(t, cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.ExportJSONPath)
	require.NoError(t, err)
	var envelope model.SKLearnModel
	require.NoError(t, json.Unmarshal(data, &envelope))
	assert.Equal(t, "LinearRegression", envelope.ModelSpec.Name)

	imported := linear.NewLinearRegression()
	require.NoError(t, imported.LoadFromSKLearn(cfg.ExportJSONPath))
	pred, err := imported.PredictRow(cfg.PredictRow)
	require.NoError(t, err)
	assert.InDelta(t, res.Prediction, pred, 1e-6)

	assert.FileExists(t, cfg.PlotPath)
	html, err := os.ReadFile(cfg.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Predicted")
}

func TestRunLogsStepsInOrder(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf, "info")
	t.Cleanup(func() { log.SetOutput(os.Stderr, "info") })

	_, err := run(t, testConfig(t, homePrices))
	require.NoError(t, err)

	var steps []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if step, ok := entry[log.StepKey].(string); ok && entry["message"] == "Step completed" {
			steps = append(steps, step)
		}
	}

	assert.Equal(t, []string{
		StepLoad, StepSplit, StepConstruct, StepPersistBefore,
		StepFit, StepPersistAfter, StepPredict, StepExport,
	}, steps)
}
