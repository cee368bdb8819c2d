package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcm/model"
)

func paraffin(t *testing.T) *Material {
	p, err := model.GetParameterValues("Nallusamy2007")
	require.NoError(t, err)
	m, err := FromParameters(p)
	require.NoError(t, err)
	return m
}

func TestTemperatureRegimes(t *testing.T) {
	m := paraffin(t)
	hs, hl := m.SolidusEnthalpy(), m.LiquidusEnthalpy()

	assert.InDelta(t, 300.0, m.Temperature(m.RhoSolid*m.CpSolid*300), 1e-9)
	assert.InDelta(t, m.Tm, m.Temperature(hs), 1e-9)
	assert.InDelta(t, m.Tm, m.Temperature((hs+hl)/2), 1e-9)
	assert.InDelta(t, m.Tm, m.Temperature(hl), 1e-9)
	assert.InDelta(t, m.Tm+10, m.Temperature(hl+10*m.RhoLiquid*m.CpLiquid), 1e-9)
}

func TestTemperatureMonotone(t *testing.T) {
	m := paraffin(t)
	prev := m.Temperature(0)
	for h := 0.0; h < 2*m.LiquidusEnthalpy(); h += m.LiquidusEnthalpy() / 500 {
		cur := m.Temperature(h)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestEnthalpyInverse(t *testing.T) {
	m := paraffin(t)
	for _, temp := range []float64{280, 305.15, 333.15, 340, 370} {
		assert.InDelta(t, temp, m.Temperature(m.Enthalpy(temp)), 1e-9)
	}
	assert.Equal(t, m.SolidusEnthalpy(), m.Enthalpy(m.Tm))
}

func TestConductivity(t *testing.T) {
	m := paraffin(t)
	hs, hl := m.SolidusEnthalpy(), m.LiquidusEnthalpy()
	assert.Equal(t, m.KSolid, m.Conductivity(hs-1))
	assert.Equal(t, m.KLiquid, m.Conductivity(hl+1))
	assert.InDelta(t, (m.KSolid+m.KLiquid)/2, m.Conductivity((hs+hl)/2), 1e-12)
	assert.InDelta(t, 0.5, m.LiquidFraction((hs+hl)/2), 1e-12)
	assert.Equal(t, 0.0, m.LiquidFraction(0))
	assert.Equal(t, 1.0, m.LiquidFraction(2*hl))
}

func TestSlope(t *testing.T) {
	m := paraffin(t)
	assert.Equal(t, 0.0, m.Slope((m.SolidusEnthalpy()+m.LiquidusEnthalpy())/2))
	assert.InDelta(t, 1/(m.RhoSolid*m.CpSolid), m.Slope(1), 1e-18)
	assert.InDelta(t, 1/(m.RhoLiquid*m.CpLiquid), m.Slope(2*m.LiquidusEnthalpy()), 1e-18)
}

func TestFromParametersInvalid(t *testing.T) {
	p, err := model.GetParameterValues("Nallusamy2007")
	require.NoError(t, err)
	p = p.Copy()
	p[model.LatentHeat] = 0
	_, err = FromParameters(p)
	assert.ErrorIs(t, err, ErrInvalidProperty)

	delete(p, model.MeltingTemperature)
	_, err = FromParameters(p)
	assert.ErrorIs(t, err, model.ErrMissingParameter)
}
