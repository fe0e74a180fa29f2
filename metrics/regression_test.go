package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	olsErrors "github.com/ezoic/olsfit/pkg/errors"
)

func TestRegressionMetrics(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	yPred := mat.NewVecDense(4, []float64{0.8, 2.2, 2.9, 4.3})

	testData := map[string]struct {
		fn       func(a, b *mat.VecDense) (float64, error)
		expected float64
	}{
		"mse":  {MSE, (0.04 + 0.04 + 0.01 + 0.09) / 4},
		"rmse": {RMSE, math.Sqrt((0.04 + 0.04 + 0.01 + 0.09) / 4)},
		"mae":  {MAE, (0.2 + 0.2 + 0.1 + 0.3) / 4},
		"r2":   {R2Score, 1 - 0.18/5},
		"mape": {MAPE, (0.2/1 + 0.2/2 + 0.1/3 + 0.3/4) / 4 * 100},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			got, err := td.fn(yTrue, yPred)
			require.NoError(t, err)
			assert.InDelta(t, td.expected, got, 1e-12)
		})
	}
}

func TestExplainedVarianceIgnoresBias(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{1, 2, 3})
	yPred := mat.NewVecDense(3, []float64{2, 3, 4})

	evs, err := ExplainedVarianceScore(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, evs, 1e-12)

	r2, err := R2Score(yTrue, yPred)
	require.NoError(t, err)
	assert.Less(t, r2, 1.0)
}

func TestMetricErrors(t *testing.T) {
	empty := &mat.VecDense{}
	a := mat.NewVecDense(2, []float64{1, 2})
	b := mat.NewVecDense(3, []float64{1, 2, 3})

	_, err := MSE(empty, empty)
	assert.True(t, olsErrors.Is(err, olsErrors.ErrEmptyData))

	_, err = MAE(a, b)
	var dimErr *olsErrors.DimensionError
	assert.True(t, olsErrors.As(err, &dimErr))

	constant := mat.NewVecDense(2, []float64{5, 5})
	_, err = R2Score(constant, a)
	assert.Error(t, err)

	_, err = MAPE(mat.NewVecDense(2, []float64{0, 0}), a)
	assert.Error(t, err)

	_, err = MSEMatrix(mat.NewDense(2, 2, nil), mat.NewDense(2, 2, nil))
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	report, err := Evaluate(mat.NewVecDense(2, []float64{5, 5}), mat.NewVecDense(2, []float64{5, 6}))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, report.MSE, 1e-12)
	assert.InDelta(t, 0.5, report.MAE, 1e-12)
	assert.True(t, math.IsNaN(report.R2))
}
