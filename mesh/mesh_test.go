package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniform(t *testing.T) {
	m, err := Uniform(0, 1, 4, Cartesian)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, m.Edges)
	assert.Equal(t, []float64{0.125, 0.375, 0.625, 0.875}, m.Nodes)
	assert.Equal(t, 4, m.Npts())
	assert.InDelta(t, 0.25, m.Step(), 1e-15)

	_, err = Uniform(0, 1, 0, Cartesian)
	assert.ErrorIs(t, err, ErrInvalidMesh)
	_, err = Uniform(1, 1, 3, Cartesian)
	assert.ErrorIs(t, err, ErrInvalidMesh)
}

func TestVolumesSumToTotal(t *testing.T) {
	for _, c := range []CoordSys{Cartesian, Cylindrical, Spherical} {
		m, err := Uniform(0, 2, 7, c)
		require.NoError(t, err)
		sum := 0.0
		for i := 0; i < m.Npts(); i++ {
			sum += m.Volume(i)
		}
		assert.InDelta(t, m.TotalVolume(), sum, 1e-12, string(c))
	}
	c, _ := Uniform(0, 2, 2, Cylindrical)
	assert.InDelta(t, 2.0, c.TotalVolume(), 1e-12)
	assert.InDelta(t, 1.0, c.Area(1), 1e-12)
}

func TestParseCoordSys(t *testing.T) {
	c, err := ParseCoordSys("cylindrical")
	require.NoError(t, err)
	assert.Equal(t, Cylindrical, c)
	_, err = ParseCoordSys("polar bear")
	assert.ErrorIs(t, err, ErrInvalidMesh)
}

func TestPoints(t *testing.T) {
	for level, want := range map[int]VarPts{
		0: {R: 10, X: 20},
		2: {R: 40, X: 80},
		4: {R: 160, X: 320},
	} {
		got, err := Points(level)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for _, level := range []int{-1, MaxLevel + 1, 50, 70} {
		_, err := Points(level)
		assert.ErrorIs(t, err, ErrInvalidMesh, "level %d", level)
	}
	assert.Equal(t, 8.0, RefinementFactor(3))
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 5, 10}, Linspace(0, 10, 3))
	assert.Equal(t, []float64{1}, Linspace(1, 2, 1))
	assert.Nil(t, Linspace(0, 1, 0))
}
