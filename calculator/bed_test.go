package calculator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcm/mesh"
	"pcm/model"
)

func bedParams(t *testing.T) model.ParameterValues {
	t.Helper()
	p, err := model.GetParameterValues("Nallusamy2007")
	require.NoError(t, err)
	return p
}

func bedOptions() Options {
	return Options{
		TimeStep:      2,
		EndTime:       1200,
		OutputPoints:  13,
		Workers:       3,
		Tolerance:     1e-8,
		MaxIterations: 50,
		VarPts:        mesh.VarPts{R: 6, X: 12},
	}
}

func TestBedEnergyConservation(t *testing.T) {
	for _, m := range []Model{NewReducedModel(), NewFullModel()} {
		t.Run(m.Name(), func(t *testing.T) {
			sol, err := m.Solve(context.Background(), bedParams(t), bedOptions())
			require.NoError(t, err)

			errs, err := sol.Variable(model.ConservationError)
			require.NoError(t, err)
			assert.Equal(t, 0.0, errs.Data[0])
			for k, e := range errs.Data {
				assert.Less(t, e, 1e-6, "t=%g", sol.Times[k])
			}
		})
	}
}

func TestBedCharges(t *testing.T) {
	p := bedParams(t)
	t0, tin := p[model.InitialTemperature], p[model.InletTemperature]
	for _, m := range []Model{NewReducedModel(), NewFullModel()} {
		t.Run(m.Name(), func(t *testing.T) {
			sol, err := m.Solve(context.Background(), p, bedOptions())
			require.NoError(t, err)

			soc, err := sol.Variable(model.StateOfCharge)
			require.NoError(t, err)
			assert.Equal(t, 0.0, soc.Data[0])
			for k := 1; k < len(soc.Data); k++ {
				assert.GreaterOrEqual(t, soc.Data[k], soc.Data[k-1]-1e-12)
			}
			assert.Greater(t, soc.Data[len(soc.Data)-1], 0.0)

			outlet, err := sol.Variable(model.OutletTemperature)
			require.NoError(t, err)
			for _, v := range outlet.Data {
				assert.GreaterOrEqual(t, v, t0-1e-9)
				assert.LessOrEqual(t, v, tin+1e-9)
			}

			htf, err := sol.Variable(model.HTFTemperature)
			require.NoError(t, err)
			in, err := htf.At(600, 0)
			require.NoError(t, err)
			assert.InDelta(t, tin, in, 1e-12)

			outletC, err := sol.Variable(model.OutletTemperatureC)
			require.NoError(t, err)
			for k, v := range outlet.Data {
				assert.InDelta(t, v-model.ZeroCelsius, outletC.Data[k], 1e-9)
			}
		})
	}
}

func TestReducedMatchesFull(t *testing.T) {
	p := bedParams(t)
	full, err := NewFullModel().Solve(context.Background(), p, bedOptions())
	require.NoError(t, err)
	reduced, err := NewReducedModel().Solve(context.Background(), p, bedOptions())
	require.NoError(t, err)
	assert.True(t, reduced.Reduced())
	assert.False(t, full.Reduced())

	fs, err := full.Variable(model.StateOfCharge)
	require.NoError(t, err)
	rs, err := reduced.Variable(model.StateOfCharge)
	require.NoError(t, err)
	last := len(fs.Data) - 1
	assert.InDelta(t, fs.Data[last], rs.Data[last], 0.05)

	// both expose the same radial grid of PCM temperature
	ft, err := full.Variable(model.PCMTemperature)
	require.NoError(t, err)
	rt, err := reduced.Variable(model.PCMTemperature)
	require.NoError(t, err)
	assert.Equal(t, ft.Shape(), rt.Shape())
	assert.Equal(t, []int{13, 12, 8}, ft.Shape())
}

func TestBedObserver(t *testing.T) {
	var mu sync.Mutex
	var frames []model.Frame
	opts := bedOptions()
	opts.Observer = func(f model.Frame) {
		mu.Lock()
		defer mu.Unlock()
		frames = append(frames, f)
	}
	_, err := NewReducedModel().Solve(context.Background(), bedParams(t), opts)
	require.NoError(t, err)

	require.Len(t, frames, opts.OutputPoints)
	for k, f := range frames {
		assert.Equal(t, k, f.Index)
		assert.Len(t, f.HTF, opts.VarPts.X)
		assert.Equal(t, "Reduced model", f.Model)
	}
	assert.InDelta(t, opts.EndTime, frames[len(frames)-1].Time, 1e-9)
}

func TestBedCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFullModel().Solve(ctx, bedParams(t), bedOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	var simErr *SimulationError
	require.True(t, errors.As(err, &simErr))
	assert.Equal(t, "Full model", simErr.Model)
}

func TestBedInvalidParameters(t *testing.T) {
	p := bedParams(t)
	p[model.Porosity] = 1.2
	_, err := NewReducedModel().Solve(context.Background(), p, bedOptions())
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = NewReducedModel().Solve(context.Background(), bedParams(t), Options{})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestSphericalCapsules(t *testing.T) {
	opts := bedOptions()
	opts.CoordSys = mesh.Spherical
	sol, err := NewFullModel().Solve(context.Background(), bedParams(t), opts)
	require.NoError(t, err)
	errs, err := sol.Variable(model.ConservationError)
	require.NoError(t, err)
	for _, e := range errs.Data {
		assert.Less(t, e, 1e-6)
	}
}

func TestNewModel(t *testing.T) {
	for name, want := range map[string]string{
		"stefan":  "Stefan problem (enthalpy)",
		"Reduced": "Reduced model",
		"full":    "Full model",
	} {
		m, err := NewModel(name)
		require.NoError(t, err)
		assert.Equal(t, want, m.Name())
	}
	_, err := NewModel("spm")
	assert.ErrorIs(t, err, ErrUnknownModel)
}
