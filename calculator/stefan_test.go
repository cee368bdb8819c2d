package calculator

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcm/mesh"
	"pcm/model"
)

// unit properties with Stefan number one
func unitStefanParams() model.ParameterValues {
	return model.ParameterValues{
		model.SolidConductivity:   1,
		model.LiquidConductivity:  1,
		model.SolidDensity:        1,
		model.LiquidDensity:       1,
		model.SolidHeatCapacity:   1,
		model.LiquidHeatCapacity:  1,
		model.LatentHeat:          1,
		model.MeltingTemperature:  1,
		model.BoundaryTemperature: 2,
		model.Radius:              1,
		model.InitialTemperature:  1,
	}
}

// neumannLambda solves lambda exp(lambda^2) erf(lambda) = St/sqrt(pi).
func neumannLambda(st float64) float64 {
	f := func(l float64) float64 {
		return l*math.Exp(l*l)*math.Erf(l) - st/math.Sqrt(math.Pi)
	}
	lo, hi := 0.0, 2.0
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if f(mid) > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	return (lo + hi) / 2
}

func TestNeumannLambda(t *testing.T) {
	assert.InDelta(t, 0.6201, neumannLambda(1), 1e-4)
}

func TestStefanInterfacePosition(t *testing.T) {
	opts := Options{
		TimeStep:      1e-4,
		EndTime:       0.1,
		OutputPoints:  11,
		Tolerance:     1e-8,
		MaxIterations: 50,
		VarPts:        mesh.VarPts{R: 200},
	}
	sol, err := NewStefan().Solve(context.Background(), unitStefanParams(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1000, sol.Steps)

	pos, err := sol.Variable(model.InterfacePosition)
	require.NoError(t, err)

	lambda := neumannLambda(1)
	for k, tk := range sol.Times {
		if k < 5 {
			continue
		}
		exact := 1 - 2*lambda*math.Sqrt(tk)
		depth := 1 - exact
		assert.InDelta(t, exact, pos.Data[k], 0.05*depth, "t=%g", tk)
	}
	// the front only moves inwards
	for k := 1; k < len(pos.Data); k++ {
		assert.LessOrEqual(t, pos.Data[k], pos.Data[k-1]+1e-12)
	}
}

func TestStefanVariables(t *testing.T) {
	opts := Options{
		TimeStep:      1e-3,
		EndTime:       0.05,
		OutputPoints:  6,
		Tolerance:     1e-8,
		MaxIterations: 50,
		VarPts:        mesh.VarPts{R: 40},
	}
	sol, err := NewStefan().Solve(context.Background(), unitStefanParams(), opts)
	require.NoError(t, err)

	temp, err := sol.Variable(model.Temp)
	require.NoError(t, err)
	assert.Equal(t, []int{6, 41}, temp.Shape())

	// the boundary holds the imposed temperature
	tb, err := temp.At(0.05, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2, tb, 1e-12)

	// the far end has not heated above the melting temperature
	tc, err := temp.At(0.05, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1, tc, 1e-9)

	frac, err := sol.Variable(model.LiquidFraction)
	require.NoError(t, err)
	for _, f := range frac.Data {
		assert.GreaterOrEqual(t, f, 0.0)
		assert.LessOrEqual(t, f, 1.0)
	}

	_, err = sol.Variable(model.OutletTemperature)
	assert.ErrorIs(t, err, ErrUnknownVariable)
	assert.Contains(t, sol.Variables(), model.Enthalpy)
}

func TestStefanMissingParameter(t *testing.T) {
	p := unitStefanParams()
	delete(p, model.BoundaryTemperature)
	_, err := NewStefan().Solve(context.Background(), p, Options{
		TimeStep: 1e-3, EndTime: 1e-2, OutputPoints: 2, Tolerance: 1e-6, MaxIterations: 10,
	})
	assert.ErrorIs(t, err, model.ErrMissingParameter)
}

func TestStefanConfigDefaults(t *testing.T) {
	opts, err := DefaultConfig().Options()
	require.NoError(t, err)
	opts.EndTime = 0.02
	opts.TimeStep = 1e-3
	opts.OutputPoints = 3

	sol, err := NewStefan().Solve(context.Background(), unitStefanParams(), opts)
	require.NoError(t, err)
	assert.Len(t, sol.R(), DefaultVarPts)
	assert.Equal(t, mesh.Cartesian, sol.radial.Coord)
}
