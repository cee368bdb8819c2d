package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateBilinear(t *testing.T) {
	// v(t, x) = t + 10 x
	v := &ProcessedVariable{
		Name: "plane",
		Axes: [][]float64{{0, 1, 2}, {0, 0.5, 1}},
	}
	for _, tk := range v.Axes[0] {
		for _, x := range v.Axes[1] {
			v.Data = append(v.Data, tk+10*x)
		}
	}

	got, err := v.Evaluate([]float64{0.5, 1.5}, []float64{0.25, 0.75, 1})
	require.NoError(t, err)
	want := []float64{3, 8, 10.5, 4, 9, 11.5}
	assert.InDeltaSlice(t, want, got, 1e-12)

	// clamped outside the grid
	at, err := v.At(5, -1)
	require.NoError(t, err)
	assert.InDelta(t, 2, at, 1e-12)

	_, err = v.Evaluate([]float64{0})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestEvaluateNonFinite(t *testing.T) {
	v := &ProcessedVariable{
		Name: "line",
		Axes: [][]float64{{0, 1}, {0, 1, 2}},
		Data: []float64{0, 1, 2, 3, 4, 5},
	}
	for _, q := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := v.At(q, 0.5)
		assert.ErrorIs(t, err, ErrInvalidQuery, "t=%g", q)
		_, err = v.Evaluate([]float64{0.5}, []float64{1, q})
		assert.ErrorIs(t, err, ErrInvalidQuery, "x=%g", q)
	}
}

func TestEvaluateSingleTime(t *testing.T) {
	v := &ProcessedVariable{Axes: [][]float64{{0}}, Data: []float64{7}}
	got, err := v.Evaluate([]float64{0, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 7}, got)
	assert.Equal(t, 0, v.Dims())
}

func TestConservationError(t *testing.T) {
	assert.Equal(t, 0.0, conservationError(1, 1, 0.5))
	assert.InDelta(t, 10, conservationError(0, 10, 9), 1e-12)
}
