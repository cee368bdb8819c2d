package calculator

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"pcm/material"
	"pcm/mesh"
)

const maxHalvings = 8

type boundaryKind int

const (
	dirichlet boundaryKind = iota // T = value at the outer face
	robin                         // flux h (T - value) leaves the outer face
)

type boundary struct {
	kind  boundaryKind
	value float64
	h     float64
}

// column advances the enthalpy of one radial column with backward Euler.
// T(H) is linearised around the current iterate and the tridiagonal system
// in H is solved until the enthalpy update falls below the tolerance.
type column struct {
	mat   *material.Material
	mesh  *mesh.Submesh
	tol   float64
	iters int

	vol  []float64 // cell volumes
	area []float64 // face areas, edge i sits between cells i-1 and i
	dr   float64

	// scratch
	old, hk, next []float64
	c, s, k       []float64
	dl, d, du     []float64
	rhs           []float64
}

func newColumn(m *material.Material, sub *mesh.Submesh, tol float64, iters int) *column {
	n := sub.Npts()
	col := &column{
		mat:   m,
		mesh:  sub,
		tol:   tol * m.RhoSolid * m.Latent,
		iters: iters,
		vol:   make([]float64, n),
		area:  make([]float64, n+1),
		dr:    sub.Step(),
		old:   make([]float64, n),
		hk:    make([]float64, n),
		next:  make([]float64, n),
		c:     make([]float64, n),
		s:     make([]float64, n),
		k:     make([]float64, n),
		dl:    make([]float64, n),
		d:     make([]float64, n),
		du:    make([]float64, n),
		rhs:   make([]float64, n),
	}
	for i := 0; i < n; i++ {
		col.vol[i] = sub.Volume(i)
	}
	for i := 0; i <= n; i++ {
		col.area[i] = sub.Area(i)
	}
	return col
}

// boundaryConductance couples the last cell to the outer face value.
func (col *column) boundaryConductance(bc boundary, kLast float64) float64 {
	n := len(col.vol)
	half := col.dr / 2
	switch bc.kind {
	case robin:
		if bc.h <= 0 {
			return 0
		}
		return col.area[n] / (1/bc.h + half/kLast)
	}
	return col.area[n] * kLast / half
}

// advance moves h forward by dt, halving the step when the iteration stalls.
func (col *column) advance(h []float64, dt float64, bc boundary) error {
	return col.advanceDepth(h, dt, bc, 0)
}

func (col *column) advanceDepth(h []float64, dt float64, bc boundary, depth int) error {
	err := col.step(h, dt, bc)
	if err == nil {
		return nil
	}
	if depth >= maxHalvings {
		return err
	}
	if err := col.advanceDepth(h, dt/2, bc, depth+1); err != nil {
		return err
	}
	return col.advanceDepth(h, dt/2, bc, depth+1)
}

// step writes the new enthalpy into h only when the iteration converges.
func (col *column) step(h []float64, dt float64, bc boundary) error {
	n := len(h)
	copy(col.old, h)
	copy(col.hk, h)

	for it := 0; it < col.iters; it++ {
		for i := 0; i < n; i++ {
			hi := col.hk[i]
			col.s[i] = col.mat.Slope(hi)
			col.c[i] = col.mat.Temperature(hi) - col.s[i]*hi
			col.k[i] = col.mat.Conductivity(hi)

			col.d[i] = col.vol[i] / dt
			col.rhs[i] = col.vol[i] / dt * col.old[i]
			col.dl[i], col.du[i] = 0, 0
		}
		for f := 1; f < n; f++ {
			i, j := f-1, f
			g := col.area[f] * faceConductivity(col.k[i], col.k[j]) / col.dr
			col.d[i] += g * col.s[i]
			col.du[i] = -g * col.s[j]
			col.rhs[i] += g * (col.c[j] - col.c[i])

			col.d[j] += g * col.s[j]
			col.dl[i] = -g * col.s[i]
			col.rhs[j] += g * (col.c[i] - col.c[j])
		}
		last := n - 1
		gb := col.boundaryConductance(bc, col.k[last])
		col.d[last] += gb * col.s[last]
		col.rhs[last] += gb * (bc.value - col.c[last])

		if err := col.solve(); err != nil {
			return err
		}
		diff := maxAbsDiff(col.next, col.hk)
		copy(col.hk, col.next)
		if diff <= col.tol {
			copy(h, col.hk)
			return nil
		}
	}
	return fmt.Errorf("%w after %d iterations", ErrNotConverged, col.iters)
}

func (col *column) solve() error {
	n := len(col.d)
	if n == 1 {
		col.next[0] = col.rhs[0] / col.d[0]
		return nil
	}
	a := mat.NewTridiag(n, col.dl[:n-1], col.d, col.du[:n-1])
	dst := mat.NewVecDense(n, col.next)
	return a.SolveVecTo(dst, false, mat.NewVecDense(n, col.rhs))
}

// boundaryFlux is the heat flux through the outer face per unit face area,
// positive outwards.
func (col *column) boundaryFlux(h []float64, bc boundary) float64 {
	last := len(h) - 1
	k := col.mat.Conductivity(h[last])
	g := col.boundaryConductance(bc, k) / col.area[len(h)]
	return g * (col.mat.Temperature(h[last]) - bc.value)
}

// surfaceTemperature extrapolates the last cell to the outer face.
func (col *column) surfaceTemperature(h []float64, bc boundary) float64 {
	last := len(h) - 1
	if bc.kind == dirichlet {
		return bc.value
	}
	k := col.mat.Conductivity(h[last])
	return col.mat.Temperature(h[last]) - col.boundaryFlux(h, bc)*col.dr/(2*k)
}

// mean is the volume averaged enthalpy of the column.
func (col *column) mean(h []float64) float64 {
	sum := 0.0
	for i, v := range h {
		sum += v * col.vol[i]
	}
	return sum / col.mesh.TotalVolume()
}
