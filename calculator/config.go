package calculator

import (
	"fmt"
	"runtime"

	"gopkg.in/ini.v1"

	"pcm/mesh"
)

type Config struct {
	TimeStep      float64
	EndTime       float64
	OutputPoints  int
	Workers       int
	Tolerance     float64
	MaxIterations int
	RadialPoints  int
	AxialPoints   int
	CoordSys      string
}

func DefaultConfig() Config {
	return LoadConfig(ini.Empty())
}

// LoadConfig reads the [calculator] section. Missing keys take their defaults.
func LoadConfig(file *ini.File) Config {
	sec := file.Section("calculator")
	return Config{
		TimeStep:      sec.Key("TimeStep").MustFloat64(1),
		EndTime:       sec.Key("EndTime").MustFloat64(10000),
		OutputPoints:  sec.Key("OutputPoints").MustInt(201),
		Workers:       sec.Key("Workers").MustInt(runtime.NumCPU()),
		Tolerance:     sec.Key("Tolerance").MustFloat64(1e-6),
		MaxIterations: sec.Key("MaxIterations").MustInt(50),
		RadialPoints:  sec.Key("RadialPoints").MustInt(0),
		AxialPoints:   sec.Key("AxialPoints").MustInt(0),
		CoordSys:      sec.Key("CoordSys").String(),
	}
}

// Options converts the configuration into solver options.
func (c Config) Options() (Options, error) {
	opts := Options{
		TimeStep:      c.TimeStep,
		EndTime:       c.EndTime,
		OutputPoints:  c.OutputPoints,
		Workers:       c.Workers,
		Tolerance:     c.Tolerance,
		MaxIterations: c.MaxIterations,
		VarPts:        mesh.VarPts{R: c.RadialPoints, X: c.AxialPoints},
	}
	if c.CoordSys != "" {
		cs, err := mesh.ParseCoordSys(c.CoordSys)
		if err != nil {
			return opts, fmt.Errorf("calculator config: %w", err)
		}
		opts.CoordSys = cs
	}
	return opts, opts.Validate()
}
