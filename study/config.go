package study

import (
	"runtime"

	"gopkg.in/ini.v1"

	"pcm/model"
)

type Config struct {
	MinLevel                int
	MaxLevel                int
	RefineTimeStep          bool
	Parallel                int
	ParameterSet            string
	ParameterFile           string
	HeatTransferCoefficient float64 // overrides the parameter set when positive
	OutputDir               string
	PlotFormat              string
	EvalTimes               int
	EvalPoints              int
}

// LoadConfig reads the [study] section. Missing keys take their defaults.
func LoadConfig(file *ini.File) Config {
	sec := file.Section("study")
	return Config{
		MinLevel:                sec.Key("MinLevel").MustInt(0),
		MaxLevel:                sec.Key("MaxLevel").MustInt(4),
		RefineTimeStep:          sec.Key("RefineTimeStep").MustBool(false),
		Parallel:                sec.Key("Parallel").MustInt(runtime.NumCPU()),
		ParameterSet:            sec.Key("ParameterSet").MustString("Nallusamy2007"),
		ParameterFile:           sec.Key("ParameterFile").String(),
		HeatTransferCoefficient: sec.Key("HeatTransferCoefficient").MustFloat64(1000),
		OutputDir:               sec.Key("OutputDir").MustString("."),
		PlotFormat:              sec.Key("PlotFormat").MustString("paper"),
		EvalTimes:               sec.Key("EvalTimes").MustInt(500),
		EvalPoints:              sec.Key("EvalPoints").MustInt(100),
	}
}

// Parameters loads the configured parameter set with its overrides applied.
func (c Config) Parameters() (model.ParameterValues, error) {
	var (
		p   model.ParameterValues
		err error
	)
	if c.ParameterFile != "" {
		p, err = model.LoadParameterValues(c.ParameterFile)
	} else {
		p, err = model.GetParameterValues(c.ParameterSet)
	}
	if err != nil {
		return nil, err
	}
	if c.HeatTransferCoefficient > 0 {
		p[model.HeatTransferCoefficient] = c.HeatTransferCoefficient
	}
	return p, nil
}
