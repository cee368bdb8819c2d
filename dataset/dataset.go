// Package dataset loads the experimental temperature traces that the
// models are compared against.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

var (
	ErrNoData      = errors.New("no experimental data")
	ErrInvalidData = errors.New("invalid experimental data")
)

// Kind is the measured quantity of a trace.
type Kind string

const (
	HTF Kind = "HTF"
	PCM Kind = "PCM"
)

// row is one line of a trace file. A file carries only one of the two
// temperature columns.
type row struct {
	TimeMin float64  `csv:"Time [min]"`
	HTF     *float64 `csv:"HTF Temperature [degC]"`
	PCM     *float64 `csv:"PCM Temperature [degC]"`
}

// Series is one measured temperature trace.
type Series struct {
	Name        string
	Kind        Kind
	Time        []float64 // [min]
	Temperature []float64 // [degC]
}

// Seconds returns the sample times in seconds.
func (s *Series) Seconds() []float64 {
	out := make([]float64, len(s.Time))
	floats.ScaleTo(out, 60, s.Time)
	return out
}

// Datasets holds the traces grouped by kind, each group sorted by file name.
type Datasets map[Kind][]*Series

// Load reads HTF*.csv and PCM*.csv from dir.
func Load(dir string) (Datasets, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	data := Datasets{}
	for _, kind := range []Kind{HTF, PCM} {
		files, err := filepath.Glob(filepath.Join(dir, string(kind)+"*.csv"))
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%w: no %s*.csv in %s", ErrNoData, kind, dir)
		}
		sort.Strings(files)
		for _, f := range files {
			s, err := readSeries(f, kind)
			if err != nil {
				return nil, err
			}
			data[kind] = append(data[kind], s)
		}
		log.WithFields(log.Fields{"kind": kind, "files": len(files)}).Debug("loaded experimental data")
	}
	return data, nil
}

func readSeries(path string, kind Kind) (*Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rows []*row
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidData, path, err)
	}
	s := &Series{
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Kind: kind,
	}
	for i, r := range rows {
		v := r.HTF
		if kind == PCM {
			v = r.PCM
		}
		if v == nil {
			return nil, fmt.Errorf("%w: %s: row %d has no %s temperature", ErrInvalidData, path, i+1, kind)
		}
		s.Time = append(s.Time, r.TimeMin)
		s.Temperature = append(s.Temperature, *v)
	}
	if len(s.Time) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoData, path)
	}
	return s, nil
}

// RMSE compares the trace with a model prediction over the overlap of
// their time ranges. The model is sampled at n evenly spaced times and the
// measurements are resampled there by linear interpolation.
func (s *Series) RMSE(predict func(seconds float64) float64, endTime float64, n int) (float64, error) {
	secs := s.Seconds()
	if len(secs) < 2 || n < 1 {
		return 0, fmt.Errorf("%w: %s needs at least two samples", ErrInvalidData, s.Name)
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(secs, s.Temperature); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidData, s.Name, err)
	}
	lo, hi := secs[0], math.Min(secs[len(secs)-1], endTime)
	if !(hi > lo) {
		return 0, fmt.Errorf("%w: %s does not overlap the model time range", ErrNoData, s.Name)
	}
	measured := make([]float64, n)
	modelled := make([]float64, n)
	for i := range measured {
		t := lo
		if n > 1 {
			t = lo + (hi-lo)*float64(i)/float64(n-1)
		}
		measured[i] = pl.Predict(t)
		modelled[i] = predict(t)
	}
	return floats.Distance(measured, modelled, 2) / math.Sqrt(float64(n)), nil
}
