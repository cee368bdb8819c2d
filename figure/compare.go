package figure

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/plot/palette/moreland"

	"pcm/calculator"
	"pcm/dataset"
	"pcm/model"
)

var ErrNoSolution = errors.New("no solution to plot")

// DefaultPositions are the measurement positions as fractions of the pipe length.
var DefaultPositions = []float64{0.25, 0.5, 0.75, 1}

var (
	Default0D = []string{
		model.OutletTemperatureC,
		model.StateOfCharge,
		model.StoredEnergy,
		model.ConservationError,
	}
	Default0DNames = []string{
		"Outlet temperature [°C]",
		"State of charge",
		"Stored energy per unit area [J m⁻²]",
		"Relative error in energy conservation [%]",
	}
	Default1D = []string{
		model.HTFTemperatureC,
		model.PCMSurfaceTempC,
	}
	Default1DNames = []string{
		"HTF temperature [°C]",
		"PCM surface temperature [°C]",
	}
)

const (
	Default2D     = model.PCMEnthalpy
	Default2DName = "Phase-change material enthalpy [J m⁻³]"
)

func letter(i int) string {
	return fmt.Sprintf("(%c)", 'a'+i)
}

func rowsFor(n int) int {
	return (n + 1) / 2
}

// evenly spaces n values on [0, end].
func evenly(end float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if n > 1 {
			out[i] = end * float64(i) / float64(n-1)
		}
	}
	return out
}

func endTime(sol *calculator.Solution) float64 {
	return sol.Times[len(sol.Times)-1]
}

// ComparisonData draws the model HTF and PCM temperatures next to the
// measured ones. xs are positions as fractions of the pipe length; PCM
// temperatures are taken at r = 0.8 R.
func ComparisonData(sol *calculator.Solution, data dataset.Datasets, xs []float64) (*Figure, error) {
	if sol == nil {
		return nil, ErrNoSolution
	}
	if xs == nil {
		xs = DefaultPositions
	}
	length, err := sol.Params.Get(model.PipeLength)
	if err != nil {
		return nil, err
	}
	radius, err := sol.Params.Get(model.CapsuleRadius)
	if err != nil {
		return nil, err
	}
	htf, err := sol.Variable(model.HTFTemperatureC)
	if err != nil {
		return nil, err
	}
	pcm, err := sol.Variable(model.PCMTemperatureC)
	if err != nil {
		return nil, err
	}

	f := newFigure(2, 2, 3.5)
	for i, x := range xs {
		label := fmt.Sprintf("%.2fL", x)
		ys, err := htf.Evaluate(sol.Times, []float64{x * length})
		if err != nil {
			return nil, err
		}
		if err := f.addLine(f.Panels[0][0], sol.Times, ys, lineStyle{color: colour(i)}, label); err != nil {
			return nil, err
		}
		ys, err = pcm.Evaluate(sol.Times, []float64{x * length}, []float64{0.8 * radius})
		if err != nil {
			return nil, err
		}
		if err := f.addLine(f.Panels[1][0], sol.Times, ys, lineStyle{color: colour(i)}, ""); err != nil {
			return nil, err
		}
	}
	for row, kind := range []dataset.Kind{dataset.HTF, dataset.PCM} {
		for i, s := range data[kind] {
			if i >= len(xs) {
				break
			}
			label := fmt.Sprintf("%.2fL", xs[i])
			st := lineStyle{color: colour(i), points: true}
			if err := f.addLine(f.Panels[row][1], s.Seconds(), s.Temperature, st, label); err != nil {
				return nil, err
			}
		}
	}

	f.Panels[0][0].Title.Text = letter(0) + " Model"
	f.Panels[0][1].Title.Text = letter(1) + " Experimental data"
	f.Panels[1][0].Title.Text = letter(2)
	f.Panels[1][1].Title.Text = letter(3)
	f.Panels[0][0].Y.Label.Text = "HTF temperature [°C]"
	f.Panels[1][0].Y.Label.Text = "PCM temperature [°C]"
	for _, p := range f.Panels[1] {
		p.X.Label.Text = "Time [s]"
	}
	// shared y range per row
	for _, row := range f.Panels {
		lo := math.Min(row[0].Y.Min, row[1].Y.Min)
		hi := math.Max(row[0].Y.Max, row[1].Y.Max)
		for _, p := range row {
			p.Y.Min, p.Y.Max = lo, hi
		}
	}
	return f, nil
}

// Compare0D plots time traces, one panel per variable. A second solution is
// drawn dashed in black.
func Compare0D(sols []*calculator.Solution, vars, names []string) (*Figure, error) {
	if len(sols) == 0 {
		return nil, ErrNoSolution
	}
	if vars == nil {
		vars = Default0D
		if names == nil {
			names = Default0DNames
		}
	}
	if names == nil {
		names = vars
	}

	f := newFigure(rowsFor(len(vars)), 2, 0.5+1.5*float64(rowsFor(len(vars))))
	for i, name := range vars {
		p := f.Panel(i)
		for s := len(sols) - 1; s >= 0; s-- {
			sol := sols[s]
			v, err := sol.Variable(name)
			if err != nil {
				return nil, err
			}
			st := lineStyle{color: colour(0)}
			if s > 0 {
				st = lineStyle{color: black, dashed: true}
			}
			label := ""
			if i == 0 {
				label = sol.ModelName
			}
			if err := f.addLine(p, sol.Times, v.Data, st, label); err != nil {
				return nil, err
			}
		}
		p.X.Label.Text = "Time [s]"
		p.Y.Label.Text = names[i]
	}
	f.hideUnused(len(vars))
	return f, nil
}

// Compare1D plots axial profiles at the given times. A nil times draws five
// evenly spaced profiles.
func Compare1D(sols []*calculator.Solution, vars, names []string, times []float64) (*Figure, error) {
	if len(sols) == 0 {
		return nil, ErrNoSolution
	}
	if vars == nil {
		vars = Default1D
		if names == nil {
			names = Default1DNames
		}
	}
	if names == nil {
		names = vars
	}
	if times == nil {
		times = evenly(endTime(sols[0]), 5)
	}
	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(0)
	cmap.SetMax(1)

	f := newFigure(rowsFor(len(vars)), 2, 0.5+1.5*float64(rowsFor(len(vars))))
	for i, name := range vars {
		p := f.Panel(i)
		for s := len(sols) - 1; s >= 0; s-- {
			sol := sols[s]
			v, err := sol.Variable(name)
			if err != nil {
				return nil, err
			}
			if v.Dims() != 1 {
				return nil, fmt.Errorf("%w: %s is not an axial profile", calculator.ErrDimensionMismatch, name)
			}
			xs := v.Axes[1]
			label := ""
			if i == 0 {
				label = sol.ModelName
			}
			for k, t := range times {
				ys, err := v.Evaluate([]float64{t}, xs)
				if err != nil {
					return nil, err
				}
				st := lineStyle{color: black, dashed: true}
				if s == 0 {
					c, err := cmap.At(0.9 * float64(k) / math.Max(1, float64(len(times)-1)))
					if err != nil {
						return nil, err
					}
					st = lineStyle{color: c}
				}
				if err := f.addLine(p, xs, ys, st, label); err != nil {
					return nil, err
				}
				label = ""
			}
		}
		p.X.Label.Text = model.XM
		p.Y.Label.Text = names[i]
	}
	f.hideUnused(len(vars))
	return f, nil
}

// Compare2D plots radial profiles of one variable, one panel per time. The
// first solution is drawn at mid length, a second one in light grey at every
// position in xs. Nil times or xs take four and five evenly spaced values.
func Compare2D(sols []*calculator.Solution, variable, name string, times, xs []float64) (*Figure, error) {
	if len(sols) == 0 {
		return nil, ErrNoSolution
	}
	if variable == "" {
		variable = Default2D
		if name == "" {
			name = Default2DName
		}
	}
	if name == "" {
		name = variable
	}
	length, err := sols[0].Params.Get(model.PipeLength)
	if err != nil {
		return nil, err
	}
	if times == nil {
		times = evenly(endTime(sols[0]), 4)
	}
	if xs == nil {
		xs = evenly(length, 5)
	}

	f := newFigure(rowsFor(len(times)), 2, 0.5+1.5*float64(rowsFor(len(times))))
	profile := func(sol *calculator.Solution, t, x float64) ([]float64, []float64, error) {
		v, err := sol.Variable(variable)
		if err != nil {
			return nil, nil, err
		}
		if v.Dims() != 2 {
			return nil, nil, fmt.Errorf("%w: %s is not a radial field", calculator.ErrDimensionMismatch, variable)
		}
		rs := v.Axes[2]
		ys, err := v.Evaluate([]float64{t}, []float64{x}, rs)
		if err != nil {
			return nil, nil, err
		}
		mm := make([]float64, len(rs))
		for i, r := range rs {
			mm[i] = 1e3 * r
		}
		return mm, ys, nil
	}

	for i, t := range times {
		p := f.Panel(i)
		if len(sols) > 1 {
			label := ""
			if i == 0 {
				label = sols[1].ModelName
			}
			for _, x := range xs {
				rs, ys, err := profile(sols[1], t, x)
				if err != nil {
					return nil, err
				}
				if err := f.addLine(p, rs, ys, lineStyle{color: lightGray}, label); err != nil {
					return nil, err
				}
				label = ""
			}
		}
		rs, ys, err := profile(sols[0], t, length/2)
		if err != nil {
			return nil, err
		}
		label := ""
		if i == 0 {
			label = sols[0].ModelName
		}
		if err := f.addLine(p, rs, ys, lineStyle{color: colour(0)}, label); err != nil {
			return nil, err
		}
		p.Title.Text = fmt.Sprintf("t = %.0f s", t)
		p.X.Label.Text = model.RMM
		p.Y.Label.Text = name
	}
	f.hideUnused(len(times))
	return f, nil
}
