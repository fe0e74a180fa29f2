// Package linear provides ordinary least squares linear regression.
//
// LinearRegression fits y = X·w + b by solving the least squares problem
// with a QR decomposition of the design matrix (gonum/mat), which is more
// stable than inverting XᵀX. Models start untrained, are trained in place
// by Fit, and can be persisted at any point with core/model.SaveModel:
//
//	lr := linear.NewLinearRegression()
//	if err := lr.Fit(X, y); err != nil {
//		log.Fatal(err)
//	}
//	price, err := lr.PredictRow([]float64{3300})
//
// Learned parameters can also be exchanged as scikit-learn style JSON with
// ExportToSKLearn and LoadFromSKLearn.
package linear

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/olsfit/core/model"
	"github.com/ezoic/olsfit/core/parallel"
	"github.com/ezoic/olsfit/metrics"
	olsErrors "github.com/ezoic/olsfit/pkg/errors"
	"github.com/ezoic/olsfit/pkg/log"
)

const (
	modelType    = "LinearRegression"
	modelVersion = "1.0.0"

	// Row count below which the design matrix is filled sequentially.
	parallelThreshold = 1000

	// A diagonal entry of the scaled R at or below max(rankTolerance,
	// max(rows, cols)·eps) times the largest one marks the design matrix as
	// rank deficient.
	rankTolerance = 1e-12
	eps           = 0x1p-52
)

// LinearRegression is an ordinary least squares regression model.
// Exported fields are encoded by gob through GobEncode; the logger is not.
type LinearRegression struct {
	State        *model.StateManager
	Weights      *mat.VecDense // coefficients, one per feature
	Intercept    float64
	NFeatures    int
	FitIntercept bool
	FeatureNames []string

	logger log.Logger
}

var _ model.Regressor = (*LinearRegression)(nil)

// Option configures a LinearRegression.
type Option func(*LinearRegression)

// WithFitIntercept sets whether an intercept is learned. Defaults to true.
func WithFitIntercept(fit bool) Option {
	return func(lr *LinearRegression) {
		lr.FitIntercept = fit
	}
}

// WithFeatureNames records the training column names. Fit rejects data
// whose column count does not match.
func WithFeatureNames(names []string) Option {
	return func(lr *LinearRegression) {
		lr.FeatureNames = append([]string(nil), names...)
	}
}

// NewLinearRegression creates an untrained model. By default it fits an
// intercept and applies no regularization.
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{
		State:        model.NewStateManager(),
		FitIntercept: true,
	}
	for _, opt := range opts {
		opt(lr)
	}

	lr.logger = newLogger()

	return lr
}

func newLogger() log.Logger {
	return log.GetLoggerWithName("linear").With(
		log.ModelNameKey, modelType,
		log.ComponentKey, "linear",
	)
}

// Fit trains the model in place on X (n_samples × n_features) and the
// column vector y (n_samples × 1).
//
// Errors:
//   - ErrEmptyData: X has no rows or no columns
//   - DimensionError: X and y have different row counts
//   - ValueError: y is not a column vector, or feature names do not match X
//   - ErrSingularMatrix: fewer samples than unknowns, or the design matrix
//     is rank deficient or too ill-conditioned to solve
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer olsErrors.Recover(&err, "LinearRegression.Fit")

	startTime := time.Now()
	r, c := X.Dims()
	ry, cy := y.Dims()

	lr.logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)

	if r == 0 || c == 0 {
		return olsErrors.NewModelError("LinearRegression.Fit", "empty data", olsErrors.ErrEmptyData)
	}
	if ry != r {
		return olsErrors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return olsErrors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}
	if len(lr.FeatureNames) > 0 && len(lr.FeatureNames) != c {
		return olsErrors.NewValueError("LinearRegression.Fit",
			fmt.Sprintf("got %d feature names for %d columns", len(lr.FeatureNames), c))
	}

	offset := 0
	if lr.FitIntercept {
		offset = 1
	}
	unknowns := c + offset
	if r < unknowns {
		return olsErrors.NewModelError("LinearRegression.Fit",
			fmt.Sprintf("underdetermined system: %d samples for %d unknowns", r, unknowns),
			olsErrors.ErrSingularMatrix)
	}

	// design = [1 | X] when fitting an intercept
	design := mat.NewDense(r, unknowns, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if offset == 1 {
				design.Set(i, 0, 1.0)
			}
			for j := 0; j < c; j++ {
				design.Set(i, j+offset, X.At(i, j))
			}
		}
	})

	// Columns are scaled to unit norm so the rank test does not depend on
	// feature magnitudes. The solution is unscaled below.
	norms := make([]float64, unknowns)
	for j := 0; j < unknowns; j++ {
		norms[j] = floats.Norm(mat.Col(nil, j, design), 2)
		if norms[j] == 0 {
			return rankDeficient(j, offset)
		}
	}
	design.Apply(func(_, j int, v float64) float64 {
		return v / norms[j]
	}, design)

	var qr mat.QR
	qr.Factorize(design)
	if col, ok := rankDeficientColumn(&qr, r, unknowns); ok {
		return rankDeficient(col, offset)
	}

	var solution mat.Dense
	if err := qr.SolveTo(&solution, false, y); err != nil {
		lr.logger.Error("Least squares solve failed", err,
			log.OperationKey, log.OperationFit,
		)
		return olsErrors.NewModelError("LinearRegression.Fit",
			fmt.Sprintf("cannot solve least squares: %v", err), olsErrors.ErrSingularMatrix)
	}

	lr.Intercept = 0
	if offset == 1 {
		lr.Intercept = solution.At(0, 0) / norms[0]
	}
	lr.Weights = mat.NewVecDense(c, nil)
	for j := 0; j < c; j++ {
		lr.Weights.SetVec(j, solution.At(j+offset, 0)/norms[j+offset])
	}
	lr.NFeatures = c

	lr.State.SetFitted()
	lr.State.SetDimensions(c, r)

	lr.logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)

	return nil
}

// rankDeficientColumn reports the first design column whose R diagonal is
// negligible relative to the largest one. R must come from a design matrix
// with unit-norm columns.
func rankDeficientColumn(qr *mat.QR, rows, n int) (int, bool) {
	var r mat.Dense
	qr.RTo(&r)

	maxDiag := 0.0
	for i := 0; i < n; i++ {
		maxDiag = math.Max(maxDiag, math.Abs(r.At(i, i)))
	}
	tol := math.Max(rankTolerance, float64(max(rows, n))*eps) * maxDiag
	for i := 0; i < n; i++ {
		if math.Abs(r.At(i, i)) <= tol {
			return i, true
		}
	}
	return 0, false
}

func rankDeficient(col, offset int) error {
	name := "intercept"
	if col >= offset {
		name = fmt.Sprintf("feature %d", col-offset)
	}
	return olsErrors.NewModelError("LinearRegression.Fit",
		fmt.Sprintf("rank deficient design matrix at %s", name),
		olsErrors.ErrSingularMatrix)
}

// Predict returns an n_samples × 1 matrix of X·w + b.
//
// Errors:
//   - NotFittedError: the model has not been trained
//   - DimensionError: X has a different number of columns than the training data
func (lr *LinearRegression) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer olsErrors.Recover(&err, "LinearRegression.Predict")
	if !lr.IsFitted() {
		return nil, olsErrors.NewNotFittedError(modelType, "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, olsErrors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	lr.logger.Debug("Prediction started",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)

	var out mat.VecDense
	out.MulVec(X, lr.Weights)
	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		predictions.Set(i, 0, out.AtVec(i)+lr.Intercept)
	}

	lr.logger.Debug("Prediction completed",
		log.OperationKey, log.OperationPredict,
		log.PredsKey, r,
	)

	return predictions, nil
}

// PredictRow predicts a single sample. row must have exactly one value per
// training feature, in training column order.
func (lr *LinearRegression) PredictRow(row []float64) (_ float64, err error) {
	defer olsErrors.Recover(&err, "LinearRegression.PredictRow")
	if !lr.IsFitted() {
		return 0, olsErrors.NewNotFittedError(modelType, "PredictRow")
	}
	if len(row) != lr.NFeatures {
		return 0, olsErrors.NewDimensionError("LinearRegression.PredictRow", lr.NFeatures, len(row), 1)
	}

	return mat.Dot(mat.NewVecDense(len(row), append([]float64(nil), row...)), lr.Weights) + lr.Intercept, nil
}

// Score returns the coefficient of determination (R²) of the predictions on X.
func (lr *LinearRegression) Score(X, y mat.Matrix) (_ float64, err error) {
	defer olsErrors.Recover(&err, "LinearRegression.Score")
	if !lr.IsFitted() {
		return 0, olsErrors.NewNotFittedError(modelType, "Score")
	}

	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	r, _ := y.Dims()
	return metrics.R2Score(mat.NewVecDense(r, mat.Col(nil, 0, y)), mat.NewVecDense(r, mat.Col(nil, 0, yPred)))
}

// GetWeights returns a copy of the learned coefficients.
func (lr *LinearRegression) GetWeights() []float64 {
	if lr.Weights == nil {
		return nil
	}
	return mat.Col(nil, 0, lr.Weights)
}

// GetIntercept returns the learned intercept, or 0 before Fit.
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// IsFitted returns whether the model has been fitted.
func (lr *LinearRegression) IsFitted() bool {
	return lr.State != nil && lr.State.IsFitted()
}

// GetParams returns the model's hyperparameters.
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"fit_intercept": lr.FitIntercept,
		"n_features":    lr.NFeatures,
		"fitted":        lr.IsFitted(),
	}
}

// SetParams sets the model's hyperparameters. Only fit_intercept is settable.
func (lr *LinearRegression) SetParams(params map[string]interface{}) error {
	if v, ok := params["fit_intercept"]; ok {
		b, ok := v.(bool)
		if !ok {
			return olsErrors.NewValidationError("fit_intercept", "must be a bool", v)
		}
		lr.FitIntercept = b
	}
	return nil
}

// ExportWeights returns the learned parameters as ModelWeights.
func (lr *LinearRegression) ExportWeights() (*model.ModelWeights, error) {
	if !lr.IsFitted() {
		return nil, olsErrors.NewNotFittedError(modelType, "ExportWeights")
	}

	_, nSamples := lr.State.Dimensions()
	weights := &model.ModelWeights{
		ModelType:    modelType,
		Version:      modelVersion,
		Coefficients: lr.GetWeights(),
		Intercept:    lr.Intercept,
		Features:     append([]string(nil), lr.FeatureNames...),
		IsFitted:     true,
		Hyperparameters: map[string]interface{}{
			"fit_intercept": lr.FitIntercept,
		},
		Metadata: map[string]interface{}{
			"n_features": lr.NFeatures,
			"n_samples":  nSamples,
		},
	}
	weights.Metadata["checksum"] = weights.Checksum()

	return weights, nil
}

// ImportWeights restores learned parameters produced by ExportWeights.
func (lr *LinearRegression) ImportWeights(weights *model.ModelWeights) error {
	if weights == nil {
		return olsErrors.NewValueError("LinearRegression.ImportWeights", "weights cannot be nil")
	}
	if weights.ModelType != modelType {
		return olsErrors.NewValueError("LinearRegression.ImportWeights",
			fmt.Sprintf("model type mismatch: expected %s, got %s", modelType, weights.ModelType))
	}
	if err := weights.Validate(); err != nil {
		return olsErrors.Wrap(err, "invalid weights")
	}
	if sum, ok := weights.Metadata["checksum"].(string); ok && sum != weights.Checksum() {
		return olsErrors.NewValueError("LinearRegression.ImportWeights", "checksum mismatch: weights may be corrupted")
	}
	if err := lr.SetParams(weights.Hyperparameters); err != nil {
		return err
	}

	lr.NFeatures = len(weights.Coefficients)
	lr.Weights = mat.NewVecDense(lr.NFeatures, append([]float64(nil), weights.Coefficients...))
	lr.Intercept = weights.Intercept
	lr.FeatureNames = append([]string(nil), weights.Features...)

	nSamples := 0
	switch v := weights.Metadata["n_samples"].(type) {
	case int:
		nSamples = v
	case float64:
		nSamples = int(v)
	}

	lr.State.SetFitted()
	lr.State.SetDimensions(lr.NFeatures, nSamples)
	return nil
}

// GetWeightHash returns a SHA-256 over the coefficients and intercept, or ""
// when the model is not fitted.
func (lr *LinearRegression) GetWeightHash() string {
	weights, err := lr.ExportWeights()
	if err != nil {
		return ""
	}
	return weights.Checksum()
}

// String returns the string representation of the model
func (lr *LinearRegression) String() string {
	if !lr.IsFitted() {
		return fmt.Sprintf("LinearRegression(fit_intercept=%t)", lr.FitIntercept)
	}
	return fmt.Sprintf("LinearRegression(fit_intercept=%t, n_features=%d, fitted=true)",
		lr.FitIntercept, lr.NFeatures)
}

// LoadFromSKLearn loads parameters from a scikit-learn style JSON file.
func (lr *LinearRegression) LoadFromSKLearn(filename string) (err error) {
	defer olsErrors.Recover(&err, "LinearRegression.LoadFromSKLearn")
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return lr.LoadFromSKLearnReader(file)
}

// LoadFromSKLearnReader loads parameters from scikit-learn style JSON in r.
func (lr *LinearRegression) LoadFromSKLearnReader(r io.Reader) (err error) {
	defer olsErrors.Recover(&err, "LinearRegression.LoadFromSKLearnReader")
	skModel, err := model.LoadSKLearnModelFromReader(r)
	if err != nil {
		return fmt.Errorf("failed to load sklearn model: %w", err)
	}

	params, err := model.LoadLinearRegressionParams(skModel)
	if err != nil {
		return fmt.Errorf("failed to load linear regression params: %w", err)
	}

	lr.NFeatures = params.NFeatures
	lr.Intercept = params.Intercept
	lr.Weights = mat.NewVecDense(len(params.Coefficients), params.Coefficients)
	lr.FeatureNames = append([]string(nil), params.FeatureNames...)
	if params.FitIntercept != nil {
		lr.FitIntercept = *params.FitIntercept
	} else {
		lr.FitIntercept = lr.Intercept != 0
	}

	lr.State.SetFitted()
	// sample count is not part of the JSON envelope
	lr.State.SetDimensions(lr.NFeatures, 0)

	lr.logger.Info("Model loaded",
		log.OperationKey, log.OperationLoad,
		log.PhaseKey, log.PhasePersistence,
		log.FeaturesKey, lr.NFeatures,
	)

	return nil
}

// ExportToSKLearn writes the model as scikit-learn style JSON to filename.
func (lr *LinearRegression) ExportToSKLearn(filename string) (err error) {
	defer olsErrors.Recover(&err, "LinearRegression.ExportToSKLearn")
	if !lr.IsFitted() {
		return olsErrors.NewNotFittedError(modelType, "ExportToSKLearn")
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	return lr.ExportToSKLearnWriter(file)
}

// ExportToSKLearnWriter writes the model as scikit-learn style JSON to w.
func (lr *LinearRegression) ExportToSKLearnWriter(w io.Writer) (err error) {
	defer olsErrors.Recover(&err, "LinearRegression.ExportToSKLearnWriter")
	if !lr.IsFitted() {
		return olsErrors.NewNotFittedError(modelType, "ExportToSKLearnWriter")
	}

	fitIntercept := lr.FitIntercept
	params := model.SKLearnLinearRegressionParams{
		Coefficients: lr.GetWeights(),
		Intercept:    lr.Intercept,
		NFeatures:    lr.NFeatures,
		FeatureNames: lr.FeatureNames,
		FitIntercept: &fitIntercept,
	}

	return model.ExportSKLearnModel(modelType, params, w)
}

// linearRegressionGob is the gob wire form of LinearRegression.
type linearRegressionGob struct {
	State        *model.StateManager
	Weights      *mat.VecDense
	Intercept    float64
	NFeatures    int
	FitIntercept bool
	FeatureNames []string
}

// GobEncode implements gob.GobEncoder.
func (lr *LinearRegression) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(linearRegressionGob{
		State:        lr.State,
		Weights:      lr.Weights,
		Intercept:    lr.Intercept,
		NFeatures:    lr.NFeatures,
		FitIntercept: lr.FitIntercept,
		FeatureNames: lr.FeatureNames,
	})
	return buf.Bytes(), err
}

// GobDecode implements gob.GobDecoder. gob omits zero values, so the
// artifact is decoded into a fresh value and replaces every field of lr.
// Only the logger is kept.
func (lr *LinearRegression) GobDecode(data []byte) error {
	var w linearRegressionGob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}

	logger := lr.logger
	*lr = LinearRegression{
		State:        w.State,
		Weights:      w.Weights,
		Intercept:    w.Intercept,
		NFeatures:    w.NFeatures,
		FitIntercept: w.FitIntercept,
		FeatureNames: w.FeatureNames,
		logger:       logger,
	}
	if lr.State == nil {
		lr.State = model.NewStateManager()
	}
	if lr.logger == nil {
		lr.logger = newLogger()
	}
	return nil
}

// MarshalJSON renders the learned parameters for diagnostics.
func (lr *LinearRegression) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Fitted       bool      `json:"fitted"`
		FitIntercept bool      `json:"fit_intercept"`
		Coefficients []float64 `json:"coefficients,omitempty"`
		Intercept    float64   `json:"intercept"`
		Features     []string  `json:"features,omitempty"`
	}{
		Fitted:       lr.IsFitted(),
		FitIntercept: lr.FitIntercept,
		Coefficients: lr.GetWeights(),
		Intercept:    lr.GetIntercept(),
		Features:     lr.FeatureNames,
	})
}
