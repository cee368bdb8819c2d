package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/ini.v1"

	"pcm/calculator"
	"pcm/figure"
)

var (
	configPath string
	logLevel   string
	plotFormat string

	cfgFile *ini.File
)

var rootCmd = &cobra.Command{
	Use:   "pcm",
	Short: "Phase-change material capsule storage simulator",
	Long: `pcm simulates charging of a packed bed of phase-change material capsules
with the reduced (lumped capsule) and full (radially resolved) models, runs
mesh refinement studies and compares the models with experimental data.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

		if _, err := os.Stat(configPath); err != nil {
			log.WithField("path", configPath).Warn("config file not found, using defaults")
		}
		cfgFile, err = ini.LooseLoad(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if plotFormat != "" {
			return figure.SetFormat(plotFormat)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "conf/config.ini", "ini configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&plotFormat, "format", "", "plotting format: presentation or paper")
}

// solverOptions reads the [calculator] section.
func solverOptions() (calculator.Options, error) {
	return calculator.LoadConfig(cfgFile).Options()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.WithError(err).Error("exit")
		os.Exit(1)
	}
}
