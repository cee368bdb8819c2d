package calculator

import (
	"context"
	"fmt"
	"strings"

	"pcm/mesh"
	"pcm/model"
)

// Model is a physical model that can be solved for a parameter set.
type Model interface {
	Name() string
	Solve(ctx context.Context, param model.ParameterValues, opts Options) (*Solution, error)
}

// Observer receives a frame at every output time of a capsule bed run.
type Observer func(frame model.Frame)

type Options struct {
	TimeStep      float64 // [s]
	EndTime       float64 // [s]
	OutputPoints  int
	Workers       int
	Tolerance     float64 // relative to the latent enthalpy
	MaxIterations int
	VarPts        mesh.VarPts
	CoordSys      mesh.CoordSys // empty selects the model default
	Observer      Observer
}

func (o Options) Validate() error {
	switch {
	case !(o.TimeStep > 0):
		return fmt.Errorf("%w: time step %g", ErrInvalidOptions, o.TimeStep)
	case !(o.EndTime > 0):
		return fmt.Errorf("%w: end time %g", ErrInvalidOptions, o.EndTime)
	case o.OutputPoints < 2:
		return fmt.Errorf("%w: %d output points", ErrInvalidOptions, o.OutputPoints)
	case !(o.Tolerance > 0):
		return fmt.Errorf("%w: tolerance %g", ErrInvalidOptions, o.Tolerance)
	case o.MaxIterations < 1:
		return fmt.Errorf("%w: %d iterations", ErrInvalidOptions, o.MaxIterations)
	}
	return nil
}

// OutputTimes returns the times at which the solution is stored.
func (o Options) OutputTimes() []float64 {
	return mesh.Linspace(0, o.EndTime, o.OutputPoints)
}

func (o Options) workers() int {
	if o.Workers < 1 {
		return 1
	}
	return o.Workers
}

func (o Options) coordSys(def mesh.CoordSys) mesh.CoordSys {
	if o.CoordSys == "" {
		return def
	}
	return o.CoordSys
}

// NewModel returns a model by name: "stefan", "reduced" or "full".
func NewModel(name string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "stefan", "enthalpy":
		return NewStefan(), nil
	case "reduced", "reduced model":
		return NewReducedModel(), nil
	case "full", "full model":
		return NewFullModel(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
}
