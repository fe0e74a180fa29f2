package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateManager(t *testing.T) {
	s := NewStateManager()
	assert.False(t, s.IsFitted())

	s.SetFitted()
	s.SetDimensions(3, 10)
	assert.True(t, s.IsFitted())
	nf, ns := s.Dimensions()
	assert.Equal(t, 3, nf)
	assert.Equal(t, 10, ns)

	s.Reset()
	assert.False(t, s.IsFitted())
	nf, ns = s.Dimensions()
	assert.Zero(t, nf)
	assert.Zero(t, ns)
}

func ExampleStateManager() {
	state := NewStateManager()
	fmt.Printf("Initially: %s\n", state.State)

	state.SetFitted()
	fmt.Printf("After SetFitted: %s\n", state.State)

	state.Reset()
	fmt.Printf("After Reset: %s\n", state.State)

	// Output: Initially: not_fitted
	// After SetFitted: fitted
	// After Reset: not_fitted
}
