package calculator

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"pcm/material"
	"pcm/mesh"
	"pcm/model"
)

// Solution holds the stored output of a model run. Variables are built
// lazily on first request and cached.
type Solution struct {
	ModelName string
	Params    model.ParameterValues
	Times     []float64
	Steps     int
	SolveTime time.Duration

	material *material.Material
	radial   *mesh.Submesh
	axial    *mesh.Submesh

	// capsule bed runs
	bed      *bed
	record   *bedRecord
	enthalpy [][][]float64 // [t][x][r], full model only
	reduced  bool

	// Stefan runs
	enthalpy1D [][]float64 // [t][r]
	boundaryT  float64

	mu        sync.Mutex
	builders  map[string]func() *ProcessedVariable
	variables map[string]*ProcessedVariable
}

// Variable returns the named output variable.
func (s *Solution) Variable(name string) (*ProcessedVariable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.variables[name]; ok {
		return v, nil
	}
	build, ok := s.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q for %s", ErrUnknownVariable, name, s.ModelName)
	}
	v := build()
	v.Name = name
	s.variables[name] = v
	return v, nil
}

// Variables lists the names that Variable accepts.
func (s *Solution) Variables() []string {
	names := make([]string, 0, len(s.builders))
	for name := range s.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// X returns the axial cell centres, nil for a Stefan run.
func (s *Solution) X() []float64 {
	if s.axial == nil {
		return nil
	}
	return s.axial.Nodes
}

// R returns the radial cell centres.
func (s *Solution) R() []float64 {
	return s.radial.Nodes
}

// Reduced reports whether the capsules were lumped.
func (s *Solution) Reduced() bool {
	return s.reduced
}

func (s *Solution) register(name string, build func() *ProcessedVariable) {
	if s.builders == nil {
		s.builders = make(map[string]func() *ProcessedVariable)
		s.variables = make(map[string]*ProcessedVariable)
	}
	s.builders[name] = build
}

// timeVariable maps a value per stored time.
func (s *Solution) timeVariable(f func(k int) float64) func() *ProcessedVariable {
	return func() *ProcessedVariable {
		data := make([]float64, len(s.Times))
		for k := range data {
			data[k] = f(k)
		}
		return &ProcessedVariable{Axes: [][]float64{s.Times}, Data: data}
	}
}

// field maps a value per stored time and node.
func (s *Solution) field(nodes []float64, f func(k, i int) float64) func() *ProcessedVariable {
	return func() *ProcessedVariable {
		n := len(nodes)
		data := make([]float64, len(s.Times)*n)
		for k := range s.Times {
			for i := 0; i < n; i++ {
				data[k*n+i] = f(k, i)
			}
		}
		return &ProcessedVariable{Axes: [][]float64{s.Times, nodes}, Data: data}
	}
}

// field3 maps a value per stored time, axial node and radial node.
func (s *Solution) field3(xs, rs []float64, f func(k, j, i int) float64) func() *ProcessedVariable {
	return func() *ProcessedVariable {
		nx, nr := len(xs), len(rs)
		data := make([]float64, len(s.Times)*nx*nr)
		for k := range s.Times {
			for j := 0; j < nx; j++ {
				for i := 0; i < nr; i++ {
					data[(k*nx+j)*nr+i] = f(k, j, i)
				}
			}
		}
		return &ProcessedVariable{Axes: [][]float64{s.Times, xs, rs}, Data: data}
	}
}

func (s *Solution) registerTime() {
	s.register(model.TimeS, s.timeVariable(func(k int) float64 { return s.Times[k] }))
	s.register(model.TimeMin, s.timeVariable(func(k int) float64 { return s.Times[k] / 60 }))
}

func (s *Solution) registerStefan() {
	m, r := s.material, s.radial
	n := r.Npts()
	// boundary value appended at r = R
	rs := append(append([]float64(nil), r.Nodes...), r.Max())

	s.registerTime()
	s.register(model.XM, s.field(r.Nodes, func(_, i int) float64 { return r.Nodes[i] }))
	s.register(model.Enthalpy, s.field(r.Nodes, func(k, i int) float64 {
		return s.enthalpy1D[k][i]
	}))
	s.register(model.Temp, s.field(rs, func(k, i int) float64 {
		if i == n {
			return s.boundaryT
		}
		return m.Temperature(s.enthalpy1D[k][i])
	}))
	s.register(model.LiquidFraction, s.field(r.Nodes, func(k, i int) float64 {
		return m.LiquidFraction(s.enthalpy1D[k][i])
	}))
	s.register(model.InterfacePosition, s.timeVariable(func(k int) float64 {
		return interfacePosition(m, r, s.enthalpy1D[k], s.boundaryT)
	}))
}

func (s *Solution) registerBed() {
	b, m, rec := s.bed, s.material, s.record
	x, r := s.axial, s.radial
	nx, nr := x.Npts(), r.Npts()

	// inlet and outlet appended to the axial nodes
	xs := make([]float64, 0, nx+2)
	xs = append(append(append(xs, x.Min()), x.Nodes...), x.Max())
	// centre and surface appended to the radial nodes
	rs := make([]float64, 0, nr+2)
	rs = append(append(append(rs, r.Min()), r.Nodes...), r.Max())

	htf := func(k, j int) float64 {
		switch j {
		case 0:
			return b.tIn
		case nx + 1:
			return rec.outlet[k]
		}
		return rec.tf[k][j-1]
	}
	pcmT := func(k, j, i int) float64 {
		tf := rec.tf[k][j]
		if s.reduced {
			return reducedProfile(b, rec.hMean[k][j], tf, rs[i])
		}
		switch i {
		case 0:
			return m.Temperature(s.enthalpy[k][j][0])
		case nr + 1:
			return rec.surface[k][j]
		}
		return m.Temperature(s.enthalpy[k][j][i-1])
	}

	s.registerTime()
	s.register(model.XM, s.field(x.Nodes, func(_, j int) float64 { return x.Nodes[j] }))
	s.register(model.RM, s.field3(x.Nodes, r.Nodes, func(_, _, i int) float64 { return r.Nodes[i] }))
	s.register(model.RMM, s.field3(x.Nodes, r.Nodes, func(_, _, i int) float64 { return 1e3 * r.Nodes[i] }))

	s.register(model.HTFTemperature, s.field(xs, htf))
	s.register(model.HTFTemperatureC, s.field(xs, func(k, j int) float64 { return celsius(htf(k, j)) }))
	s.register(model.PCMTemperature, s.field3(x.Nodes, rs, pcmT))
	s.register(model.PCMTemperatureC, s.field3(x.Nodes, rs, func(k, j, i int) float64 {
		return celsius(pcmT(k, j, i))
	}))
	s.register(model.PCMEnthalpy, s.field3(x.Nodes, r.Nodes, func(k, j, i int) float64 {
		if s.reduced {
			return rec.hMean[k][j]
		}
		return s.enthalpy[k][j][i]
	}))
	s.register(model.PCMSurfaceTemperature, s.field(x.Nodes, func(k, j int) float64 {
		return rec.surface[k][j]
	}))
	s.register(model.PCMSurfaceTempC, s.field(x.Nodes, func(k, j int) float64 {
		return celsius(rec.surface[k][j])
	}))
	s.register(model.OutletTemperature, s.timeVariable(func(k int) float64 { return rec.outlet[k] }))
	s.register(model.OutletTemperatureC, s.timeVariable(func(k int) float64 { return celsius(rec.outlet[k]) }))
	s.register(model.StateOfCharge, s.timeVariable(func(k int) float64 { return rec.soc[k] }))
	s.register(model.StoredEnergy, s.timeVariable(func(k int) float64 { return rec.energy[k] }))
	s.register(model.ConservationError, s.timeVariable(func(k int) float64 {
		return conservationError(rec.energy[0], rec.energy[k], rec.work[k])
	}))
}

// conservationError is the relative mismatch, in percent, between the
// change of stored energy and the energy that crossed the boundary.
func conservationError(e0, e, work float64) float64 {
	if e == e0 {
		return 0
	}
	return 100 * math.Abs(e-e0-work) / math.Abs(e-e0)
}
