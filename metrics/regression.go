// Package metrics provides evaluation metrics for regression models.
//
//   - MSE, RMSE: squared error, sensitive to outliers
//   - MAE: absolute error
//   - R2Score: coefficient of determination
//   - MAPE: mean absolute percentage error
//   - ExplainedVarianceScore: variance explained, ignoring constant bias
//
// All functions take true and predicted values as *mat.VecDense of equal
// length. Empty input is a ValueError and a length mismatch is a
// DimensionError.
//
//	r2, err := metrics.R2Score(yTrue, yPred)
//	if err != nil {
//		return err
//	}
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	olsErrors "github.com/ezoic/olsfit/pkg/errors"
)

// Report bundles the regression metrics of one set of predictions.
type Report struct {
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

// residuals validates the inputs and returns yTrue - yPred.
func residuals(op string, yTrue, yPred *mat.VecDense) ([]float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, olsErrors.NewValueErrorWrap(op, "empty vector", olsErrors.ErrEmptyData)
	}
	if yPred.Len() != n {
		return nil, olsErrors.NewDimensionError(op, n, yPred.Len(), 0)
	}

	diff := mat.Col(nil, 0, yTrue)
	floats.Sub(diff, mat.Col(nil, 0, yPred))
	return diff, nil
}

// MSE calculates the Mean Squared Error between true and predicted values.
//
// Example:
//
//	mse, err := metrics.MSE(yTrue, yPred)
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	diff, err := residuals("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return floats.Dot(diff, diff) / float64(len(diff)), nil
}

// MSEMatrix calculates MSE for n×1 column matrices.
func MSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 || cTrue == 0 {
		return 0, olsErrors.NewValueErrorWrap("MSEMatrix", "empty matrix", olsErrors.ErrEmptyData)
	}
	if rTrue != rPred {
		return 0, olsErrors.NewDimensionError("MSEMatrix", rTrue, rPred, 0)
	}
	if cTrue != 1 || cPred != 1 {
		return 0, olsErrors.NewValueError("MSEMatrix", "inputs must be column vectors")
	}

	return MSE(mat.NewVecDense(rTrue, mat.Col(nil, 0, yTrue)), mat.NewVecDense(rPred, mat.Col(nil, 0, yPred)))
}

// RMSE calculates the Root Mean Squared Error, in the units of the target.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE calculates the Mean Absolute Error between true and predicted values.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	diff, err := residuals("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return floats.Norm(diff, 1) / float64(len(diff)), nil
}

// R2Score calculates the coefficient of determination.
//
// 1 is a perfect fit, 0 is no better than predicting the mean, and
// negative values are worse than the mean. R² is undefined when yTrue has
// no variance, which is reported as a ValueError.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	diff, err := residuals("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	y := mat.Col(nil, 0, yTrue)
	mean := stat.Mean(y, nil)
	var tss float64
	for _, v := range y {
		tss += (v - mean) * (v - mean)
	}
	if tss == 0 {
		return 0, olsErrors.NewValueError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}

	return 1 - floats.Dot(diff, diff)/tss, nil
}

// MAPE calculates the Mean Absolute Percentage Error as a percentage.
// Samples whose true value is zero are skipped.
func MAPE(yTrue, yPred *mat.VecDense) (float64, error) {
	diff, err := residuals("MAPE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	valid := 0
	for i, d := range diff {
		if t := yTrue.AtVec(i); t != 0 {
			sum += math.Abs(d) / math.Abs(t)
			valid++
		}
	}
	if valid == 0 {
		return 0, olsErrors.NewValueError("MAPE", "all yTrue values are zero")
	}

	return sum / float64(valid) * 100, nil
}

// ExplainedVarianceScore returns 1 - Var(yTrue - yPred) / Var(yTrue).
func ExplainedVarianceScore(yTrue, yPred *mat.VecDense) (float64, error) {
	diff, err := residuals("ExplainedVarianceScore", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	_, varTrue := stat.PopMeanVariance(mat.Col(nil, 0, yTrue), nil)
	if varTrue == 0 {
		return 0, olsErrors.NewValueError("ExplainedVarianceScore", "no variance in yTrue")
	}
	_, varDiff := stat.PopMeanVariance(diff, nil)

	return 1 - varDiff/varTrue, nil
}

// Evaluate computes MSE, RMSE, MAE and R² together. R² is NaN when yTrue
// has no variance; the other metrics are still reported.
func Evaluate(yTrue, yPred *mat.VecDense) (*Report, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return nil, err
	}
	mae, err := MAE(yTrue, yPred)
	if err != nil {
		return nil, err
	}

	r2, err := R2Score(yTrue, yPred)
	if err != nil {
		r2 = math.NaN()
	}

	return &Report{MSE: mse, RMSE: math.Sqrt(mse), MAE: mae, R2: r2}, nil
}
