package calculator

import (
	"context"

	log "github.com/sirupsen/logrus"

	"pcm/mesh"
	"pcm/model"
)

// FullModel resolves every capsule radially: at each axial cell the capsule
// enthalpy obeys dH/dt = (1/r) d/dr (r k dT/dr) with a convective surface.
type FullModel struct{}

func NewFullModel() *FullModel { return &FullModel{} }

func (f *FullModel) Name() string { return "Full model" }

type fullCapsules struct {
	cols []*column
	h    [][]float64
	heff float64
}

func (c *fullCapsules) bc(tf float64) boundary {
	return boundary{kind: robin, value: tf, h: c.heff}
}

func (c *fullCapsules) advance(j int, dt, tf float64) error {
	return c.cols[j].advance(c.h[j], dt, c.bc(tf))
}

func (c *fullCapsules) mean(j int) float64 {
	return c.cols[j].mean(c.h[j])
}

func (c *fullCapsules) surface(j int, tf float64) float64 {
	return c.cols[j].surfaceTemperature(c.h[j], c.bc(tf))
}

func (f *FullModel) Solve(ctx context.Context, param model.ParameterValues, opts Options) (*Solution, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	b, err := newBed(param, opts.coordSys(mesh.Cylindrical))
	if err != nil {
		return nil, err
	}
	pts := varPts(opts.VarPts)
	x, err := mesh.Uniform(0, b.length, pts.X, mesh.Cartesian)
	if err != nil {
		return nil, err
	}
	r, err := mesh.Uniform(0, b.radius, pts.R, b.coord)
	if err != nil {
		return nil, err
	}

	h0 := b.mat.Enthalpy(b.t0)
	caps := &fullCapsules{
		cols: make([]*column, pts.X),
		h:    make([][]float64, pts.X),
		heff: b.h,
	}
	tf := make([]float64, pts.X)
	for j := range caps.cols {
		caps.cols[j] = newColumn(b.mat, r, opts.Tolerance, opts.MaxIterations)
		caps.h[j] = make([]float64, pts.R)
		for i := range caps.h[j] {
			caps.h[j][i] = h0
		}
		tf[j] = b.t0
	}
	state := &bedState{bed: b, x: x, pcm: caps, tf: tf}

	nt := opts.OutputPoints
	fields := make([][][]float64, nt)
	rec, nsteps, elapsed, err := runBed(ctx, f.Name(), state, opts, func(k int) {
		fields[k] = make([][]float64, pts.X)
		for j := range caps.h {
			fields[k][j] = append([]float64(nil), caps.h[j]...)
		}
	})
	if err != nil {
		return nil, err
	}

	sol := &Solution{
		ModelName: f.Name(),
		Params:    param,
		Times:     opts.OutputTimes(),
		Steps:     nsteps,
		SolveTime: elapsed,
		material:  b.mat,
		bed:       b,
		axial:     x,
		radial:    r,
		record:    rec,
		enthalpy:  fields,
	}
	sol.registerBed()
	log.WithFields(log.Fields{
		"model":     f.Name(),
		"varPts":    pts,
		"steps":     nsteps,
		"solveTime": elapsed,
	}).Debug("solved")
	return sol, nil
}

func varPts(p mesh.VarPts) mesh.VarPts {
	def := mesh.BasePoints
	if p.R < 1 {
		p.R = def.R
	}
	if p.X < 1 {
		p.X = def.X
	}
	return p
}

