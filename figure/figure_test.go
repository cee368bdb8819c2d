package figure

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcm/calculator"
	"pcm/dataset"
	"pcm/mesh"
	"pcm/model"
)

var pngMagic = []byte("\x89PNG")

func TestSetFormat(t *testing.T) {
	require.NoError(t, SetFormat("paper"))
	assert.Equal(t, "paper", CurrentFormat().Name)
	require.NoError(t, SetFormat("presentation"))
	assert.Equal(t, "presentation", CurrentFormat().Name)

	err := SetFormat("poster")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, "presentation", CurrentFormat().Name)
}

func solve(t *testing.T, m calculator.Model) *calculator.Solution {
	t.Helper()
	p, err := model.GetParameterValues("Nallusamy2007")
	require.NoError(t, err)
	sol, err := m.Solve(context.Background(), p, calculator.Options{
		TimeStep:      5,
		EndTime:       300,
		OutputPoints:  7,
		Workers:       2,
		Tolerance:     1e-6,
		MaxIterations: 50,
		VarPts:        mesh.VarPts{R: 4, X: 6},
	})
	require.NoError(t, err)
	return sol
}

func render(t *testing.T, f *Figure) {
	t.Helper()
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestCompareFigures(t *testing.T) {
	reduced := solve(t, calculator.NewReducedModel())
	full := solve(t, calculator.NewFullModel())
	sols := []*calculator.Solution{full, reduced}

	f, err := Compare0D(sols, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Rows)
	render(t, f)

	f, err = Compare1D(sols, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.Rows)
	render(t, f)

	f, err = Compare2D(sols, "", "", []float64{0, 100, 200}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Rows)
	assert.Equal(t, "t = 100 s", f.Panel(1).Title.Text)
	render(t, f)

	_, err = Compare1D(sols, []string{model.OutletTemperature}, nil, nil)
	assert.ErrorIs(t, err, calculator.ErrDimensionMismatch)

	_, err = Compare0D(nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoSolution)
}

func TestComparisonData(t *testing.T) {
	sol := solve(t, calculator.NewReducedModel())
	data := dataset.Datasets{
		dataset.HTF: {{Name: "HTF_1", Kind: dataset.HTF, Time: []float64{0, 2, 4}, Temperature: []float64{32, 50, 65}}},
		dataset.PCM: {{Name: "PCM_1", Kind: dataset.PCM, Time: []float64{0, 2, 4}, Temperature: []float64{32, 40, 55}}},
	}
	f, err := ComparisonData(sol, data, nil)
	require.NoError(t, err)
	assert.Equal(t, "(a) Model", f.Panels[0][0].Title.Text)
	assert.Equal(t, "(b) Experimental data", f.Panels[0][1].Title.Text)
	require.NoError(t, f.Save(filepath.Join(t.TempDir(), "comparison.png")))
}

func TestConvergenceFigures(t *testing.T) {
	f, err := ConvergenceConservation(0, []Series{
		{Name: "Reduced model", Values: []float64{1e-2, 5e-3, 2.5e-3}},
		{Name: "Full model", Values: []float64{0, 0, 0}},
	})
	require.NoError(t, err)
	render(t, f)

	f, err = ConvergenceVariables(1, []Panel{
		{Title: "HTF temperature [K]", Series: []Series{{Name: "Reduced model", Values: []float64{1e-3, 4e-4}}}},
		{Title: "PCM temperature [K]", Series: []Series{{Name: "Reduced model", Values: []float64{2e-3, 6e-4}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, f.Cols)
	render(t, f)
}

func TestConvergenceDegenerateRanges(t *testing.T) {
	// one refinement level left after the finest
	f, err := ConvergenceVariables(0, []Panel{
		{Title: "HTF temperature [K]", Series: []Series{{Name: "Reduced model", Values: []float64{3e-3}}}},
	})
	require.NoError(t, err)
	render(t, f)
	assert.InDelta(t, 1.5e-3, f.Panels[0][0].Y.Min, 1e-15)
	assert.InDelta(t, 0.5, f.Panels[0][0].X.Min, 1e-15)

	f, err = ConvergenceConservation(2, []Series{{Name: "Full model", Values: []float64{4e-7}}})
	require.NoError(t, err)
	render(t, f)

	// equal errors on every level
	f, err = ConvergenceConservation(0, []Series{{Name: "Reduced model", Values: []float64{1e-9, 1e-9, 1e-9}}})
	require.NoError(t, err)
	render(t, f)
	assert.InDelta(t, 2e-9, f.Panels[0][0].Y.Max, 1e-20)
}
