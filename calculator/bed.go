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

// bed holds the capsule bed parameters shared by the reduced and full models.
// Quantities are per unit cross sectional area of the bed.
type bed struct {
	mat *material.Material

	radius   float64 // capsule radius
	length   float64 // pipe length
	porosity float64
	h        float64 // heat transfer coefficient
	rhoF     float64 // HTF density
	cpF      float64 // HTF heat capacity
	u        float64 // HTF velocity
	tIn      float64 // inlet temperature
	t0       float64 // initial temperature

	coord mesh.CoordSys
	dim   float64 // 1 slab, 2 cylinder, 3 sphere
}

func newBed(param model.ParameterValues, coord mesh.CoordSys) (*bed, error) {
	m, err := material.FromParameters(param)
	if err != nil {
		return nil, err
	}
	b := &bed{mat: m, coord: coord}
	fields := []struct {
		name string
		dst  *float64
	}{
		{model.CapsuleRadius, &b.radius},
		{model.PipeLength, &b.length},
		{model.Porosity, &b.porosity},
		{model.HeatTransferCoefficient, &b.h},
		{model.HTFDensity, &b.rhoF},
		{model.HTFHeatCapacity, &b.cpF},
		{model.HTFVelocity, &b.u},
		{model.InletTemperature, &b.tIn},
		{model.InitialTemperature, &b.t0},
	}
	for _, f := range fields {
		v, err := param.Get(f.name)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	switch {
	case !(b.radius > 0), !(b.length > 0):
		return nil, fmt.Errorf("%w: capsule radius and pipe length must be positive", ErrInvalidParameter)
	case !(b.porosity > 0 && b.porosity < 1):
		return nil, fmt.Errorf("%w: porosity %g not in (0, 1)", ErrInvalidParameter, b.porosity)
	case b.u < 0:
		return nil, fmt.Errorf("%w: negative HTF velocity %g", ErrInvalidParameter, b.u)
	case b.h < 0:
		return nil, fmt.Errorf("%w: negative heat transfer coefficient %g", ErrInvalidParameter, b.h)
	case !(b.rhoF > 0 && b.cpF > 0):
		return nil, fmt.Errorf("%w: HTF density and heat capacity must be positive", ErrInvalidParameter)
	}
	switch coord {
	case mesh.Cartesian:
		b.dim = 1
	case mesh.Spherical:
		b.dim = 3
	default:
		b.dim = 2
	}
	return b, nil
}

// heat capacity of the fluid per unit bed volume
func (b *bed) fluidCapacity() float64 {
	return b.porosity * b.rhoF * b.cpF
}

// capsuleState is what a model must provide about the capsules at one axial cell.
type capsuleState interface {
	// advance the capsules by dt with the fluid temperature held at tf.
	advance(j int, dt, tf float64) error
	// capsule mean enthalpy
	mean(j int) float64
	// surface temperature for fluid temperature tf
	surface(j int, tf float64) float64
}

// bedState is the evolving state of a capsule bed run.
type bedState struct {
	*bed
	x   *mesh.Submesh
	pcm capsuleState
	tf  []float64 // fluid temperature per axial cell

	hMean0  []float64 // capsule mean enthalpy at t = 0
	hCharge float64   // enthalpy of a capsule at the inlet temperature
	work    float64 // energy that entered through the inlet and outlet
}

func (s *bedState) energy() float64 {
	dx := s.x.Step()
	e := 0.0
	for j, tf := range s.tf {
		e += dx * (s.fluidCapacity()*tf + (1-s.porosity)*s.pcm.mean(j))
	}
	return e
}

func (s *bedState) stateOfCharge() float64 {
	sum := 0.0
	for j := range s.tf {
		den := s.hCharge - s.hMean0[j]
		if den != 0 {
			sum += (s.pcm.mean(j) - s.hMean0[j]) / den
		}
	}
	return sum / float64(len(s.tf))
}

// step advances the capsules with the fluid frozen, then the fluid with
// the heat each capsule released as a source.
func (s *bedState) step(e *executor, dt float64, released []float64) error {
	_, err := e.dispatchTask(len(s.tf), func(start, end int) error {
		for j := start; j < end; j++ {
			before := s.pcm.mean(j)
			if err := s.pcm.advance(j, dt, s.tf[j]); err != nil {
				return fmt.Errorf("axial cell %d: %w", j, err)
			}
			released[j] = (1 - s.porosity) * (before - s.pcm.mean(j)) / dt
		}
		return nil
	})
	if err != nil {
		return err
	}

	c := s.fluidCapacity()
	adv := c * s.u / s.x.Step()
	upstream := s.tIn
	for j := range s.tf {
		s.tf[j] = (c/dt*s.tf[j] + adv*upstream + released[j]) / (c/dt + adv)
		upstream = s.tf[j]
	}
	s.work += dt * c * s.u * (s.tIn - s.tf[len(s.tf)-1])
	return nil
}

// bedRecord collects the stored outputs of a bed run.
type bedRecord struct {
	tf      [][]float64
	surface [][]float64
	hMean   [][]float64
	outlet  []float64
	soc     []float64
	energy  []float64
	work    []float64
}

func newBedRecord(nt int) *bedRecord {
	return &bedRecord{
		tf:      make([][]float64, nt),
		surface: make([][]float64, nt),
		hMean:   make([][]float64, nt),
		outlet:  make([]float64, nt),
		soc:     make([]float64, nt),
		energy:  make([]float64, nt),
		work:    make([]float64, nt),
	}
}

func (r *bedRecord) store(k int, s *bedState) {
	n := len(s.tf)
	r.tf[k] = append([]float64(nil), s.tf...)
	r.surface[k] = make([]float64, n)
	r.hMean[k] = make([]float64, n)
	for j := 0; j < n; j++ {
		r.surface[k][j] = s.pcm.surface(j, s.tf[j])
		r.hMean[k][j] = s.pcm.mean(j)
	}
	r.outlet[k] = s.tf[n-1]
	r.soc[k] = s.stateOfCharge()
	r.energy[k] = s.energy()
	r.work[k] = s.work
}

func (r *bedRecord) frame(k int, t float64, name string, x []float64) model.Frame {
	return model.Frame{
		Model:         name,
		Index:         k,
		Time:          t,
		X:             x,
		HTF:           r.tf[k],
		Surface:       r.surface[k],
		Outlet:        r.outlet[k],
		StateOfCharge: r.soc[k],
		StoredEnergy:  r.energy[k],
	}
}

// runBed integrates a capsule bed and records it at the output times.
// onStore is called after each record so models can keep their own fields.
func runBed(ctx context.Context, name string, s *bedState, opts Options, onStore func(k int)) (*bedRecord, int, time.Duration, error) {
	start := time.Now()
	times := opts.OutputTimes()

	s.hMean0 = make([]float64, len(s.tf))
	for j := range s.tf {
		s.hMean0[j] = s.pcm.mean(j)
	}
	s.hCharge = s.mat.Enthalpy(s.tIn)

	e := newExecutor(opts.workers())
	e.run()
	defer e.close()

	rec := newBedRecord(len(times))
	released := make([]float64, len(s.tf))
	record := func(k int) {
		rec.store(k, s)
		if onStore != nil {
			onStore(k)
		}
		if opts.Observer != nil {
			opts.Observer(rec.frame(k, times[k], name, s.x.Nodes))
		}
	}
	record(0)

	step := 0
	for k := 1; k < len(times); k++ {
		nsteps, dt := steps(times[k]-times[k-1], opts.TimeStep)
		for i := 0; i < nsteps; i++ {
			if err := ctx.Err(); err != nil {
				return nil, step, time.Since(start), &SimulationError{Model: name, Step: step, Time: times[k-1] + float64(i)*dt, Wrapped: err}
			}
			if err := s.step(e, dt, released); err != nil {
				return nil, step, time.Since(start), &SimulationError{Model: name, Step: step, Time: times[k-1] + float64(i)*dt, Wrapped: err}
			}
			step++
		}
		record(k)
		log.WithFields(log.Fields{
			"model":  name,
			"time":   times[k],
			"outlet": rec.outlet[k],
			"soc":    rec.soc[k],
		}).Trace("output")
	}
	return rec, step, time.Since(start), nil
}
