// Package model provides the shared building blocks for olsfit estimators.
//
// It contains:
//
//   - StateManager: fitted-state tracking that models hold by composition
//   - Estimator interfaces (Fitter, Predictor, Estimator, Regressor)
//   - Model persistence with encoding/gob (SaveModel, LoadModel)
//   - ModelWeights: a portable JSON view of learned parameters
//   - scikit-learn style JSON import/export envelopes
//
// Models keep a *StateManager as an exported field so that the fitted flag
// survives a gob round trip:
//
//	type MyModel struct {
//		State *model.StateManager
//	}
//
//	func (m *MyModel) Fit(X, y mat.Matrix) error {
//		// training logic
//		m.State.SetFitted()
//		return nil
//	}
package model

import "sync"

// EstimatorState represents the learning state of a model
type EstimatorState int

const (
	// NotFitted indicates the model is not yet trained
	NotFitted EstimatorState = iota
	// Fitted indicates the model has been trained
	Fitted
)

func (s EstimatorState) String() string {
	if s == Fitted {
		return "fitted"
	}
	return "not_fitted"
}

// StateManager tracks whether a model has been trained and the shape of
// the data it was trained on. Fields are exported for gob encoding; use the
// methods for concurrent access.
type StateManager struct {
	State     EstimatorState
	NFeatures int
	NSamples  int

	mu sync.RWMutex
}

// NewStateManager returns a StateManager in the NotFitted state.
func NewStateManager() *StateManager {
	return &StateManager{State: NotFitted}
}

// IsFitted reports whether SetFitted has been called since the last Reset.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.State == Fitted
}

// SetFitted marks the model as trained.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	s.State = Fitted
	s.mu.Unlock()
}

// SetDimensions records the training data shape.
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.mu.Lock()
	s.NFeatures = nFeatures
	s.NSamples = nSamples
	s.mu.Unlock()
}

// Dimensions returns the recorded feature and sample counts.
func (s *StateManager) Dimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NFeatures, s.NSamples
}

// Reset returns the manager to its initial untrained state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	s.State = NotFitted
	s.NFeatures = 0
	s.NSamples = 0
	s.mu.Unlock()
}
