package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pcm/calculator"
	"pcm/dataset"
	"pcm/figure"
	"pcm/mesh"
	"pcm/model"
	"pcm/server"
	"pcm/study"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Solve one model and write its time traces",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("model")
		level, _ := cmd.Flags().GetInt("level")
		out, _ := cmd.Flags().GetString("out")

		m, err := calculator.NewModel(name)
		if err != nil {
			return err
		}
		params, err := parameters(cmd)
		if err != nil {
			return err
		}
		opts, err := solverOptions()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("level") {
			if opts.VarPts, err = mesh.Points(level); err != nil {
				return err
			}
		}
		sol, err := m.Solve(cmd.Context(), params, opts)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"model":       sol.ModelName,
			"steps":       sol.Steps,
			"radialCells": len(sol.R()),
			"axialCells":  len(sol.X()),
			"solveTime":   sol.SolveTime,
		}).Info("solved")

		if err := os.MkdirAll(out, 0o755); err != nil {
			return err
		}
		path := filepath.Join(out, strings.ReplaceAll(strings.ToLower(sol.ModelName), " ", "_")+".csv")
		return writeTraces(path, sol)
	},
}

var convergeCmd = &cobra.Command{
	Use:   "converge",
	Short: "Run the mesh refinement convergence study",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := study.LoadConfig(cfgFile)
		if plotFormat == "" {
			if err := figure.SetFormat(cfg.PlotFormat); err != nil {
				return err
			}
		}
		params, err := cfg.Parameters()
		if err != nil {
			return err
		}
		opts, err := solverOptions()
		if err != nil {
			return err
		}
		s, err := study.New(cfg, opts, params)
		if err != nil {
			return err
		}
		rep, err := s.Run(cmd.Context())
		if err != nil {
			return err
		}
		return rep.Save(cfg.OutputDir)
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the full and reduced models, and the data when given",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetInt("level")
		out, _ := cmd.Flags().GetString("out")
		dataDir, _ := cmd.Flags().GetString("data")

		params, err := parameters(cmd)
		if err != nil {
			return err
		}
		opts, err := solverOptions()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("level") {
			if opts.VarPts, err = mesh.Points(level); err != nil {
				return err
			}
		}
		var sols []*calculator.Solution
		for _, m := range []calculator.Model{calculator.NewFullModel(), calculator.NewReducedModel()} {
			sol, err := m.Solve(cmd.Context(), params, opts)
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{"model": sol.ModelName, "solveTime": sol.SolveTime}).Info("solved")
			sols = append(sols, sol)
		}
		if err := os.MkdirAll(out, 0o755); err != nil {
			return err
		}

		figures := map[string]func() (*figure.Figure, error){
			"compare_0D.png": func() (*figure.Figure, error) { return figure.Compare0D(sols, nil, nil) },
			"compare_1D.png": func() (*figure.Figure, error) { return figure.Compare1D(sols, nil, nil, nil) },
			"compare_2D.png": func() (*figure.Figure, error) { return figure.Compare2D(sols, "", "", nil, nil) },
		}
		if dataDir != "" {
			data, err := dataset.Load(dataDir)
			if err != nil {
				return err
			}
			figures["comparison_data.png"] = func() (*figure.Figure, error) {
				return figure.ComparisonData(sols[0], data, nil)
			}
			reportRMSE(sols[0], data)
		}
		for name, build := range figures {
			f, err := build()
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if err := f.Save(filepath.Join(out, name)); err != nil {
				return err
			}
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Push live runs to websocket clients on /ws",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := solverOptions()
		if err != nil {
			return err
		}
		upgrader := websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		}
		allowAll, _ := cmd.Flags().GetBool("any-origin")
		if allowAll {
			upgrader.CheckOrigin = func(r *http.Request) bool {
				return true
			}
		}
		return server.NewServer(server.LoadConfig(cfgFile), opts, upgrader).Serve(cmd.Context())
	},
}

func init() {
	for _, c := range []*cobra.Command{simulateCmd, compareCmd} {
		c.Flags().String("set", "Nallusamy2007", "built-in parameter set")
		c.Flags().String("params", "", "parameter file (.yaml or .json), overrides --set")
		c.Flags().Int("level", 0, "mesh refinement level")
		c.Flags().String("out", ".", "output directory")
	}
	simulateCmd.Flags().StringP("model", "m", "reduced", "model: stefan, reduced or full")
	compareCmd.Flags().String("data", "", "directory with HTF*.csv and PCM*.csv")
	serveCmd.Flags().Bool("any-origin", true, "accept websocket connections from any origin")

	rootCmd.AddCommand(simulateCmd, convergeCmd, compareCmd, serveCmd)
}

func parameters(cmd *cobra.Command) (model.ParameterValues, error) {
	if file, _ := cmd.Flags().GetString("params"); file != "" {
		return model.LoadParameterValues(file)
	}
	set, _ := cmd.Flags().GetString("set")
	return model.GetParameterValues(set)
}

type bedTrace struct {
	Time              float64 `csv:"Time [s]"`
	Outlet            float64 `csv:"Outlet temperature [degC]"`
	StateOfCharge     float64 `csv:"X-averaged state of charge"`
	StoredEnergy      float64 `csv:"Stored energy per unit area [J.m-2]"`
	ConservationError float64 `csv:"Relative error in energy conservation [%]"`
}

type stefanTrace struct {
	Time      float64 `csv:"Time [s]"`
	Interface float64 `csv:"Interface position [m]"`
}

func writeTraces(path string, sol *calculator.Solution) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	get := func(name string) ([]float64, error) {
		v, err := sol.Variable(name)
		if err != nil {
			return nil, err
		}
		return v.Data, nil
	}
	if sol.X() == nil {
		pos, err := get(model.InterfacePosition)
		if err != nil {
			return err
		}
		rows := make([]*stefanTrace, len(sol.Times))
		for k, t := range sol.Times {
			rows[k] = &stefanTrace{Time: t, Interface: pos[k]}
		}
		return gocsv.MarshalFile(&rows, file)
	}

	cols := make(map[string][]float64)
	for _, name := range []string{model.OutletTemperatureC, model.StateOfCharge, model.StoredEnergy, model.ConservationError} {
		if cols[name], err = get(name); err != nil {
			return err
		}
	}
	rows := make([]*bedTrace, len(sol.Times))
	for k, t := range sol.Times {
		rows[k] = &bedTrace{
			Time:              t,
			Outlet:            cols[model.OutletTemperatureC][k],
			StateOfCharge:     cols[model.StateOfCharge][k],
			StoredEnergy:      cols[model.StoredEnergy][k],
			ConservationError: cols[model.ConservationError][k],
		}
	}
	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return err
	}
	log.WithField("path", path).Info("traces written")
	return nil
}

// reportRMSE logs how far the model is from every measured trace.
func reportRMSE(sol *calculator.Solution, data dataset.Datasets) {
	length := sol.Params.GetOr(model.PipeLength, 0)
	radius := sol.Params.GetOr(model.CapsuleRadius, 0)
	end := sol.Times[len(sol.Times)-1]
	for kind, name := range map[dataset.Kind]string{dataset.HTF: model.HTFTemperatureC, dataset.PCM: model.PCMTemperatureC} {
		v, err := sol.Variable(name)
		if err != nil {
			log.WithError(err).Warn("rmse")
			continue
		}
		for i, s := range data[kind] {
			if i >= len(figure.DefaultPositions) {
				break
			}
			x := figure.DefaultPositions[i] * length
			rmse, err := s.RMSE(func(t float64) float64 {
				var y float64
				if kind == dataset.HTF {
					y, _ = v.At(t, x)
				} else {
					y, _ = v.At(t, x, 0.8*radius)
				}
				return y
			}, end, 200)
			if err != nil {
				log.WithError(err).WithField("series", s.Name).Warn("rmse")
				continue
			}
			log.WithFields(log.Fields{"series": s.Name, "model": sol.ModelName, "rmse": rmse}).Info("data comparison")
		}
	}
}
