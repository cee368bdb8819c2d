package figure

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
)

// Series is one line of a convergence plot.
type Series struct {
	Name   string
	Values []float64
}

// Panel is a titled set of convergence lines.
type Panel struct {
	Title  string
	Series []Series
}

func refinementFactors(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(int(1) << i)
	}
	return out
}

func (f *Figure) logLog(p *plot.Plot, factors []float64, series []Series, legend bool) error {
	xr, yr := newSpan(), newSpan()
	for i, s := range series {
		xs, ys := make([]float64, 0, len(s.Values)), make([]float64, 0, len(s.Values))
		// zero cannot be shown on a log axis
		for j, v := range s.Values {
			if v > 0 && j < len(factors) {
				xs = append(xs, factors[j])
				ys = append(ys, v)
				xr.add(factors[j])
				yr.add(v)
			}
		}
		label := ""
		if legend {
			label = s.Name
		}
		if err := f.addLine(p, xs, ys, lineStyle{color: colour(i), points: true}, label); err != nil {
			return err
		}
	}
	// an empty log axis cannot be normalised
	if !xr.empty() {
		xr.bound(&p.X)
		yr.bound(&p.Y)
		p.X.Scale = plot.LogScale{}
		p.Y.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	p.X.Label.Text = "Mesh refinement factor"
	return nil
}

type span struct{ min, max float64 }

func newSpan() span { return span{min: math.Inf(1), max: math.Inf(-1)} }

func (s *span) add(v float64) {
	s.min = math.Min(s.min, v)
	s.max = math.Max(s.max, v)
}

func (s span) empty() bool { return s.min > s.max }

// bound widens a single value to a factor of two each side. Left alone,
// plot pads it by one unit, which can reach zero on a log axis.
func (s span) bound(a *plot.Axis) {
	if s.min == s.max {
		a.Min, a.Max = s.min/2, 2*s.max
	}
}

// ConvergenceConservation plots the mean energy conservation error of each
// model against the refinement factor 2^l, levels starting at minLevel.
func ConvergenceConservation(minLevel int, series []Series) (*Figure, error) {
	f := newFigure(1, 1, 2)
	f.Width /= 2
	n := 0
	for _, s := range series {
		if len(s.Values) > n {
			n = len(s.Values)
		}
	}
	factors := shift(refinementFactors(minLevel+n), minLevel)
	p := f.Panels[0][0]
	if err := f.logLog(p, factors, series, true); err != nil {
		return nil, fmt.Errorf("conservation plot: %w", err)
	}
	p.Y.Label.Text = "Relative error in energy conservation [%]"
	return f, nil
}

// ConvergenceVariables draws one log-log panel per variable. Values are the
// relative errors of every level but the finest.
func ConvergenceVariables(minLevel int, panels []Panel) (*Figure, error) {
	if len(panels) == 0 {
		return nil, ErrNoSolution
	}
	f := newFigure(1, len(panels), 2)
	for i, pn := range panels {
		n := 0
		for _, s := range pn.Series {
			if len(s.Values) > n {
				n = len(s.Values)
			}
		}
		factors := shift(refinementFactors(minLevel+n), minLevel)
		p := f.Panels[0][i]
		if err := f.logLog(p, factors, pn.Series, i == 0); err != nil {
			return nil, fmt.Errorf("%s: %w", pn.Title, err)
		}
		p.Title.Text = pn.Title
		p.Y.Label.Text = "Relative error"
	}
	return f, nil
}

func shift(xs []float64, from int) []float64 {
	if from > len(xs) {
		return nil
	}
	return xs[from:]
}
