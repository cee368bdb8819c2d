package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "HTF_2.csv", "Time [min],HTF Temperature [degC]\n0,32\n10,60\n")
	writeFile(t, dir, "HTF_1.csv", "Time [min],HTF Temperature [degC]\n0,32\n10,70\n")
	writeFile(t, dir, "PCM_1.csv", "Time [min],PCM Temperature [degC]\n0,32\n5,45\n10,61\n")

	data, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, data[HTF], 2)
	require.Len(t, data[PCM], 1)

	assert.Equal(t, "HTF_1", data[HTF][0].Name)
	assert.Equal(t, []float64{32, 70}, data[HTF][0].Temperature)
	assert.Equal(t, []float64{0, 300, 600}, data[PCM][0].Seconds())
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrNoData)

	dir := t.TempDir()
	writeFile(t, dir, "HTF_1.csv", "Time [min],HTF Temperature [degC]\n0,32\n")
	_, err = Load(dir)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestLoadWrongColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "HTF_1.csv", "Time [min],PCM Temperature [degC]\n0,32\n")
	writeFile(t, dir, "PCM_1.csv", "Time [min],PCM Temperature [degC]\n0,32\n")
	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestRMSE(t *testing.T) {
	s := &Series{Name: "ramp", Time: []float64{0, 10}, Temperature: []float64{30, 40}}

	// exact model
	got, err := s.RMSE(func(sec float64) float64 { return 30 + sec/60 }, 600, 21)
	require.NoError(t, err)
	assert.InDelta(t, 0, got, 1e-12)

	// constant offset
	got, err = s.RMSE(func(sec float64) float64 { return 32 + sec/60 }, 600, 21)
	require.NoError(t, err)
	assert.InDelta(t, 2, got, 1e-12)

	// the overlap ends at the model end time
	got, err = s.RMSE(func(sec float64) float64 {
		if sec > 300 {
			return 1000
		}
		return 30 + sec/60
	}, 300, 11)
	require.NoError(t, err)
	assert.InDelta(t, 0, got, 1e-12)

	_, err = s.RMSE(func(float64) float64 { return 0 }, -1, 5)
	assert.ErrorIs(t, err, ErrNoData)
}
