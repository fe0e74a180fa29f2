package model

import "gonum.org/v1/gonum/mat"

// Fitter is a model that learns from training data.
type Fitter interface {
	Fit(X, y mat.Matrix) error
}

// Predictor is a model that produces predictions for a feature matrix.
type Predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Estimator is a trainable model that tracks its fitted state.
type Estimator interface {
	Fitter
	IsFitted() bool
}

// Scorer computes a goodness-of-fit score, R² for regressors.
type Scorer interface {
	Score(X, y mat.Matrix) (float64, error)
}

// Regressor combines interfaces for regression models.
type Regressor interface {
	Estimator
	Predictor
	Scorer
}
