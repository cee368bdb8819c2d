package material

import (
	"errors"
	"fmt"
	"math"

	"pcm/model"
)

var ErrInvalidProperty = errors.New("invalid material property")

// Material holds the phase properties of a phase-change material.
// Enthalpy is volumetric [J.m-3] and zero for the solid at 0 K.
type Material struct {
	KSolid    float64 // conductivity
	KLiquid   float64
	RhoSolid  float64 // density
	RhoLiquid float64
	CpSolid   float64 // specific heat capacity
	CpLiquid  float64
	Latent    float64 // latent heat
	Tm        float64 // melting temperature
}

func FromParameters(p model.ParameterValues) (*Material, error) {
	m := &Material{}
	fields := []struct {
		name string
		dst  *float64
	}{
		{model.SolidConductivity, &m.KSolid},
		{model.LiquidConductivity, &m.KLiquid},
		{model.SolidDensity, &m.RhoSolid},
		{model.LiquidDensity, &m.RhoLiquid},
		{model.SolidHeatCapacity, &m.CpSolid},
		{model.LiquidHeatCapacity, &m.CpLiquid},
		{model.LatentHeat, &m.Latent},
		{model.MeltingTemperature, &m.Tm},
	}
	for _, f := range fields {
		v, err := p.Get(f.name)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Material) Validate() error {
	check := map[string]float64{
		"solid conductivity":   m.KSolid,
		"liquid conductivity":  m.KLiquid,
		"solid density":        m.RhoSolid,
		"liquid density":       m.RhoLiquid,
		"solid heat capacity":  m.CpSolid,
		"liquid heat capacity": m.CpLiquid,
		"latent heat":          m.Latent,
		"melting temperature":  m.Tm,
	}
	for name, v := range check {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s = %g", ErrInvalidProperty, name, v)
		}
	}
	return nil
}

// SolidusEnthalpy is the enthalpy at which melting starts.
func (m *Material) SolidusEnthalpy() float64 {
	return m.RhoSolid * m.CpSolid * m.Tm
}

// LiquidusEnthalpy is the enthalpy at which melting ends.
func (m *Material) LiquidusEnthalpy() float64 {
	return m.RhoSolid * (m.CpSolid*m.Tm + m.Latent)
}

// Temperature returns T(H): linear in the solid and the liquid, Tm in between.
func (m *Material) Temperature(h float64) float64 {
	solid := h / (m.RhoSolid * m.CpSolid)
	liquid := m.Tm + (h-m.LiquidusEnthalpy())/(m.RhoLiquid*m.CpLiquid)
	return math.Min(solid, m.Tm) + math.Max(liquid, m.Tm) - m.Tm
}

// Slope returns dT/dH.
func (m *Material) Slope(h float64) float64 {
	switch {
	case h < m.SolidusEnthalpy():
		return 1 / (m.RhoSolid * m.CpSolid)
	case h > m.LiquidusEnthalpy():
		return 1 / (m.RhoLiquid * m.CpLiquid)
	}
	return 0
}

// Enthalpy is the inverse of Temperature. Tm maps to the solidus.
func (m *Material) Enthalpy(t float64) float64 {
	if t <= m.Tm {
		return m.RhoSolid * m.CpSolid * t
	}
	return m.LiquidusEnthalpy() + m.RhoLiquid*m.CpLiquid*(t-m.Tm)
}

// Conductivity blends solid and liquid conductivity linearly across the mushy zone.
func (m *Material) Conductivity(h float64) float64 {
	hs, hl := m.SolidusEnthalpy(), m.LiquidusEnthalpy()
	switch {
	case h <= hs:
		return m.KSolid
	case h >= hl:
		return m.KLiquid
	}
	return (m.KLiquid-m.KSolid)/(m.RhoSolid*m.Latent)*(h-hs) + m.KSolid
}

// LiquidFraction is 0 below the solidus, 1 above the liquidus.
func (m *Material) LiquidFraction(h float64) float64 {
	f := (h - m.SolidusEnthalpy()) / (m.RhoSolid * m.Latent)
	return math.Max(0, math.Min(1, f))
}
