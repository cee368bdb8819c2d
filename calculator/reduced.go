package calculator

import (
	"context"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"pcm/material"
	"pcm/mesh"
	"pcm/model"
)

// ReducedModel lumps each capsule into its mean enthalpy. The temperature
// inside the capsule is taken as the quasi-steady parabolic profile, which
// adds a conduction resistance R/((d+2)k) in series with the film.
type ReducedModel struct{}

func NewReducedModel() *ReducedModel { return &ReducedModel{} }

func (r *ReducedModel) Name() string { return "Reduced model" }

type reducedCapsules struct {
	b     *bed
	h     []float64
	tol   float64
	iters int
}

// exchange returns the overall heat transfer coefficient and the surface
// heat flux for a capsule with mean enthalpy h in fluid at tf.
func exchange(b *bed, m *material.Material, h, tf float64) (u, q float64) {
	if b.h <= 0 {
		return 0, 0
	}
	k := m.Conductivity(h)
	u = 1 / (1/b.h + b.radius/((b.dim+2)*k))
	return u, u * (m.Temperature(h) - tf)
}

func (c *reducedCapsules) advance(j int, dt, tf float64) error {
	return c.advanceDepth(j, dt, tf, 0)
}

func (c *reducedCapsules) advanceDepth(j int, dt, tf float64, depth int) error {
	err := c.step(j, dt, tf)
	if err == nil || depth >= maxHalvings {
		return err
	}
	if err := c.advanceDepth(j, dt/2, tf, depth+1); err != nil {
		return err
	}
	return c.advanceDepth(j, dt/2, tf, depth+1)
}

func (c *reducedCapsules) step(j int, dt, tf float64) error {
	m := c.b.mat
	av := c.b.dim / c.b.radius
	old := c.h[j]
	hk := old
	for it := 0; it < c.iters; it++ {
		s := m.Slope(hk)
		lin := m.Temperature(hk) - s*hk
		u, _ := exchange(c.b, m, hk, tf)
		next := (old - dt*av*u*(lin-tf)) / (1 + dt*av*u*s)
		diff := math.Abs(next - hk)
		hk = next
		if diff <= c.tol {
			c.h[j] = hk
			return nil
		}
	}
	return fmt.Errorf("%w after %d iterations", ErrNotConverged, c.iters)
}

func (c *reducedCapsules) mean(j int) float64 {
	return c.h[j]
}

func (c *reducedCapsules) surface(j int, tf float64) float64 {
	return reducedSurface(c.b, c.h[j], tf)
}

func reducedSurface(b *bed, h, tf float64) float64 {
	m := b.mat
	_, q := exchange(b, m, h, tf)
	return m.Temperature(h) - q*b.radius/((b.dim+2)*m.Conductivity(h))
}

// reducedProfile is the parabolic temperature at radius r.
func reducedProfile(b *bed, h, tf, r float64) float64 {
	m := b.mat
	_, q := exchange(b, m, h, tf)
	ts := m.Temperature(h) - q*b.radius/((b.dim+2)*m.Conductivity(h))
	rr := r / b.radius
	return ts + q*b.radius/(2*m.Conductivity(h))*(1-rr*rr)
}

func (r *ReducedModel) Solve(ctx context.Context, param model.ParameterValues, opts Options) (*Solution, error) {
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
	// the radial mesh only places the reconstructed profile
	rm, err := mesh.Uniform(0, b.radius, pts.R, b.coord)
	if err != nil {
		return nil, err
	}

	caps := &reducedCapsules{
		b:     b,
		h:     make([]float64, pts.X),
		tol:   opts.Tolerance * b.mat.RhoSolid * b.mat.Latent,
		iters: opts.MaxIterations,
	}
	tf := make([]float64, pts.X)
	for j := range caps.h {
		caps.h[j] = b.mat.Enthalpy(b.t0)
		tf[j] = b.t0
	}
	state := &bedState{bed: b, x: x, pcm: caps, tf: tf}

	rec, nsteps, elapsed, err := runBed(ctx, r.Name(), state, opts, nil)
	if err != nil {
		return nil, err
	}
	sol := &Solution{
		ModelName: r.Name(),
		Params:    param,
		Times:     opts.OutputTimes(),
		Steps:     nsteps,
		SolveTime: elapsed,
		material:  b.mat,
		bed:       b,
		axial:     x,
		radial:    rm,
		record:    rec,
		reduced:   true,
	}
	sol.registerBed()
	log.WithFields(log.Fields{
		"model":     r.Name(),
		"varPts":    pts,
		"steps":     nsteps,
		"solveTime": elapsed,
	}).Debug("solved")
	return sol, nil
}
