// Command ephys runs common LFP analyses on recording sessions.
//
// Usage:
//
//	ephys [flags] <command>
//
// Examples:
//
//	ephys -b /data/RatA/day1 info
//	ephys -b /data/RatA/day1 epochs set --maze 3600,5400 --t-end 9000
//	ephys -b /data/RatA/day1 psd --channel 12 --plot psd.png
//	ephys -b /data/RatA/day1 bicoherence --channel 12 --start 100 --stop 400
//	ephys windows --size 1250 hann tukey
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cwbudde/algo-ephys/internal/config"
)

var (
	verbose    bool
	configPath string
	envFile    string
	basepath   string

	logger *zap.Logger
	cfg    = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "ephys",
	Short: "Electrophysiology analysis toolkit",
	Long: `ephys reads Neuroscope sessions (.xml + .eeg/.lfp), EDF recordings or
.npy traces and runs spectral, coupling and event analyses on them.

Defaults come from a YAML config file with EPHYS_DATA_DIR, EPHYS_WORKERS
and EPHYS_LFP_RATE overrides, also read from a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}

		var err error

		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if err := config.LoadDotEnv(envFile); err != nil {
			return fmt.Errorf("load %s: %w", envFile, err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		if basepath == "" {
			basepath = cfg.DataDir
		}

		logger.Debug("config loaded",
			zap.String("config", configPath),
			zap.String("basepath", basepath),
			zap.Float64("lfp_rate", cfg.LFPRate),
			zap.Int("workers", cfg.Workers))

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "ephys.yaml", "Analysis config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Environment file")
	rootCmd.PersistentFlags().StringVarP(&basepath, "basepath", "b", "", "Session folder (default: data_dir from config)")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(epochsCmd)
	rootCmd.AddCommand(psdCmd)
	rootCmd.AddCommand(spectrogramCmd)
	rootCmd.AddCommand(bicoherenceCmd)
	rootCmd.AddCommand(pacCmd)
	rootCmd.AddCommand(thetaCmd)
	rootCmd.AddCommand(pbeCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(windowsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
