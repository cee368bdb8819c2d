package calculator

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"pcm/material"
	"pcm/mesh"
	"pcm/model"
)

// Stefan is the enthalpy formulation of the one dimensional Stefan problem:
// dH/dt = div(k(H) grad T(H)) on [0, R] with zero flux at r = 0 and a fixed
// temperature at r = R.
type Stefan struct{}

func NewStefan() *Stefan { return &Stefan{} }

func (s *Stefan) Name() string { return "Stefan problem (enthalpy)" }

// DefaultVarPts is the default number of cells.
const DefaultVarPts = 50

func (s *Stefan) Solve(ctx context.Context, param model.ParameterValues, opts Options) (*Solution, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	m, err := material.FromParameters(param)
	if err != nil {
		return nil, err
	}
	radius, err := param.Get(model.Radius)
	if err != nil {
		return nil, err
	}
	tb, err := param.Get(model.BoundaryTemperature)
	if err != nil {
		return nil, err
	}
	h0, ok := param[model.InitialEnthalpy]
	if !ok {
		t0, err := param.Get(model.InitialTemperature)
		if err != nil {
			return nil, fmt.Errorf("%w: need %q or %q", ErrInvalidParameter, model.InitialEnthalpy, model.InitialTemperature)
		}
		h0 = m.Enthalpy(t0)
	}

	n := opts.VarPts.R
	if n < 1 {
		n = DefaultVarPts
	}
	sub, err := mesh.Uniform(0, radius, n, opts.coordSys(mesh.Cartesian))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	col := newColumn(m, sub, opts.Tolerance, opts.MaxIterations)
	bc := boundary{kind: dirichlet, value: tb}

	h := make([]float64, n)
	for i := range h {
		h[i] = h0
	}
	times := opts.OutputTimes()
	out := make([][]float64, len(times))
	out[0] = append([]float64(nil), h...)

	step := 0
	for k := 1; k < len(times); k++ {
		nsteps, dt := steps(times[k]-times[k-1], opts.TimeStep)
		for i := 0; i < nsteps; i++ {
			if err := ctx.Err(); err != nil {
				return nil, &SimulationError{Model: s.Name(), Step: step, Time: times[k-1] + float64(i)*dt, Wrapped: err}
			}
			if err := col.advance(h, dt, bc); err != nil {
				return nil, &SimulationError{Model: s.Name(), Step: step, Time: times[k-1] + float64(i)*dt, Wrapped: err}
			}
			step++
		}
		out[k] = append([]float64(nil), h...)
	}

	sol := &Solution{
		ModelName:  s.Name(),
		Params:     param,
		Times:      times,
		Steps:      step,
		SolveTime:  time.Since(start),
		material:   m,
		radial:     sub,
		enthalpy1D: out,
		boundaryT:  tb,
	}
	sol.registerStefan()
	log.WithFields(log.Fields{
		"model":     s.Name(),
		"cells":     n,
		"steps":     step,
		"solveTime": sol.SolveTime,
	}).Debug("solved")
	return sol, nil
}

// interfacePosition locates where the liquid fraction crosses one half,
// walking inwards from the boundary at r = R.
func interfacePosition(m *material.Material, sub *mesh.Submesh, h []float64, tb float64) float64 {
	n := len(h)
	rs := make([]float64, 0, n+2)
	fs := make([]float64, 0, n+2)
	rs = append(rs, sub.Max())
	fs = append(fs, m.LiquidFraction(m.Enthalpy(tb)))
	for i := n - 1; i >= 0; i-- {
		rs = append(rs, sub.Nodes[i])
		fs = append(fs, m.LiquidFraction(h[i]))
	}
	rs = append(rs, sub.Min())
	fs = append(fs, fs[len(fs)-1])

	for i := 1; i < len(rs); i++ {
		a, b := fs[i-1]-0.5, fs[i]-0.5
		if a == 0 {
			return rs[i-1]
		}
		if a*b < 0 {
			w := a / (a - b)
			return rs[i-1] + w*(rs[i]-rs[i-1])
		}
	}
	return sub.Min()
}
