// Package study runs mesh refinement convergence studies of the capsule
// bed models.
package study

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"pcm/calculator"
	"pcm/figure"
	"pcm/mesh"
	"pcm/model"
)

var ErrInvalidLevels = errors.New("invalid refinement levels")

// Study solves every model at every refinement level.
type Study struct {
	cfg    Config
	opts   calculator.Options
	params model.ParameterValues
	models []calculator.Model
}

func New(cfg Config, opts calculator.Options, params model.ParameterValues, models ...calculator.Model) (*Study, error) {
	if cfg.MinLevel < 0 || cfg.MaxLevel < cfg.MinLevel || cfg.MaxLevel > mesh.MaxLevel {
		return nil, fmt.Errorf("%w: %d..%d", ErrInvalidLevels, cfg.MinLevel, cfg.MaxLevel)
	}
	if len(models) == 0 {
		models = []calculator.Model{calculator.NewReducedModel(), calculator.NewFullModel()}
	}
	return &Study{cfg: cfg, opts: opts, params: params, models: models}, nil
}

func (s *Study) Levels() []int {
	var levels []int
	for l := s.cfg.MinLevel; l <= s.cfg.MaxLevel; l++ {
		levels = append(levels, l)
	}
	return levels
}

// Result is one row of the convergence table.
type Result struct {
	Model                 string        `csv:"model"`
	Level                 int           `csv:"level"`
	Factor                float64       `csv:"refinement factor"`
	RadialPoints          int           `csv:"r points"`
	AxialPoints           int           `csv:"x points"`
	TimeStep              float64       `csv:"time step [s]"`
	Steps                 int           `csv:"steps"`
	SolveTime             time.Duration `csv:"-"`
	SolveSeconds          float64       `csv:"solve time [s]"`
	MeanConservationError float64       `csv:"mean conservation error [%]"`
	HTFError              float64       `csv:"HTF temperature relative error"`
	PCMError              float64       `csv:"PCM temperature relative error"`
}

// Report holds the solutions and the errors of a study.
type Report struct {
	MinLevel  int
	Models    []string
	Solutions [][]*calculator.Solution // [model][level]
	Results   []*Result                // model major
}

func (s *Study) options(level int) (calculator.Options, error) {
	opts := s.opts
	pts, err := mesh.Points(level)
	if err != nil {
		return opts, err
	}
	opts.VarPts = pts
	if s.cfg.RefineTimeStep {
		opts.TimeStep /= mesh.RefinementFactor(level)
	}
	return opts, nil
}

// Run solves all models at all levels concurrently and evaluates the errors
// against the finest level.
func (s *Study) Run(ctx context.Context) (*Report, error) {
	levels := s.Levels()
	rep := &Report{
		MinLevel:  s.cfg.MinLevel,
		Models:    make([]string, len(s.models)),
		Solutions: make([][]*calculator.Solution, len(s.models)),
	}
	for i, m := range s.models {
		rep.Models[i] = m.Name()
		rep.Solutions[i] = make([]*calculator.Solution, len(levels))
	}

	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.Parallel > 0 {
		g.SetLimit(s.cfg.Parallel)
	}
	var mu sync.Mutex
	for i, m := range s.models {
		for j, level := range levels {
			i, j, m, level := i, j, m, level
			g.Go(func() error {
				opts, err := s.options(level)
				if err != nil {
					return err
				}
				sol, err := m.Solve(gctx, s.params, opts)
				if err != nil {
					return fmt.Errorf("%s level %d: %w", m.Name(), level, err)
				}
				log.WithFields(log.Fields{
					"model":     m.Name(),
					"level":     level,
					"varPts":    opts.VarPts,
					"solveTime": sol.SolveTime,
				}).Info("solved")
				mu.Lock()
				rep.Solutions[i][j] = sol
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range s.models {
		finest := rep.Solutions[i][len(levels)-1]
		htfRef, pcmRef, err := s.sample(finest)
		if err != nil {
			return nil, err
		}
		for j, level := range levels {
			sol := rep.Solutions[i][j]
			opts, err := s.options(level)
			if err != nil {
				return nil, err
			}
			res := &Result{
				Model:        rep.Models[i],
				Level:        level,
				Factor:       mesh.RefinementFactor(level),
				RadialPoints: opts.VarPts.R,
				AxialPoints:  opts.VarPts.X,
				TimeStep:     opts.TimeStep,
				Steps:        sol.Steps,
				SolveTime:    sol.SolveTime,
				SolveSeconds: sol.SolveTime.Seconds(),
				HTFError:     math.NaN(),
				PCMError:     math.NaN(),
			}
			cons, err := sol.Variable(model.ConservationError)
			if err != nil {
				return nil, err
			}
			res.MeanConservationError = stat.Mean(cons.Data, nil)
			if j < len(levels)-1 {
				htf, pcm, err := s.sample(sol)
				if err != nil {
					return nil, err
				}
				res.HTFError = RelativeError(htf, htfRef)
				res.PCMError = RelativeError(pcm, pcmRef)
			}
			rep.Results = append(rep.Results, res)
		}
	}
	return rep, nil
}

// sample evaluates the HTF and PCM temperatures on the common grid.
func (s *Study) sample(sol *calculator.Solution) (htf, pcm []float64, err error) {
	length, err := s.params.Get(model.PipeLength)
	if err != nil {
		return nil, nil, err
	}
	radius, err := s.params.Get(model.CapsuleRadius)
	if err != nil {
		return nil, nil, err
	}
	t := mesh.Linspace(0, s.opts.EndTime, s.cfg.EvalTimes)
	x := mesh.Linspace(0, length, s.cfg.EvalPoints)
	r := mesh.Linspace(0, radius, s.cfg.EvalPoints)

	v, err := sol.Variable(model.HTFTemperature)
	if err != nil {
		return nil, nil, err
	}
	if htf, err = v.Evaluate(t, x); err != nil {
		return nil, nil, err
	}
	v, err = sol.Variable(model.PCMTemperature)
	if err != nil {
		return nil, nil, err
	}
	if pcm, err = v.Evaluate(t, x, r); err != nil {
		return nil, nil, err
	}
	return htf, pcm, nil
}

// RelativeError is the root mean square difference relative to the root
// mean square of the benchmark.
func RelativeError(values, benchmark []float64) float64 {
	norm := floats.Norm(benchmark, 2)
	if norm == 0 {
		return math.NaN()
	}
	return floats.Distance(values, benchmark, 2) / norm
}

func (r *Report) results(model string) []*Result {
	var out []*Result
	for _, res := range r.Results {
		if res.Model == model {
			out = append(out, res)
		}
	}
	return out
}

// ConservationSeries is the mean conservation error per level of each model.
func (r *Report) ConservationSeries() []figure.Series {
	series := make([]figure.Series, len(r.Models))
	for i, name := range r.Models {
		series[i].Name = name
		for _, res := range r.results(name) {
			series[i].Values = append(series[i].Values, res.MeanConservationError)
		}
	}
	return series
}

// VariablePanels holds the relative errors of every level but the finest.
func (r *Report) VariablePanels() []figure.Panel {
	htf := figure.Panel{Title: "HTF temperature [K]"}
	pcm := figure.Panel{Title: "PCM temperature [K]"}
	for _, name := range r.Models {
		res := r.results(name)
		h := figure.Series{Name: name}
		p := figure.Series{Name: name}
		for _, v := range res[:len(res)-1] {
			h.Values = append(h.Values, v.HTFError)
			p.Values = append(p.Values, v.PCMError)
		}
		htf.Series = append(htf.Series, h)
		pcm.Series = append(pcm.Series, p)
	}
	return []figure.Panel{htf, pcm}
}

func (r *Report) WriteCSV(w io.Writer) error {
	return gocsv.Marshal(r.Results, w)
}

// Save writes convergence.csv and the two convergence figures to dir.
func (r *Report) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	file, err := os.Create(filepath.Join(dir, "convergence.csv"))
	if err != nil {
		return err
	}
	defer file.Close()
	if err := r.WriteCSV(file); err != nil {
		return fmt.Errorf("write convergence table: %w", err)
	}

	f, err := figure.ConvergenceConservation(r.MinLevel, r.ConservationSeries())
	if err != nil {
		return err
	}
	if err := f.Save(filepath.Join(dir, "convergence_conservation_error.png")); err != nil {
		return err
	}
	if len(r.Solutions) > 0 && len(r.Solutions[0]) < 2 {
		log.Warn("a single level has no variable convergence to plot")
		return nil
	}
	f, err = figure.ConvergenceVariables(r.MinLevel, r.VariablePanels())
	if err != nil {
		return err
	}
	return f.Save(filepath.Join(dir, "convergence_variables.png"))
}
