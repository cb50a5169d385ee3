package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"pipeledger/internal/app"
	"pipeledger/internal/config"
	"pipeledger/internal/infrastructure"
)

var (
	cfgFile  string
	dataDir  string
	logLevel string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           config.AppName,
	Short:         "Merge pipeline bulletins into ledgers and project them",
	Long:          `pipeledger folds scheduling and inventory bulletins into one table per entity, fills calendar gaps, and computes spreads and transit differentials over the result.`,
	Version:       config.AppVersion,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = config.LoadFrom(cfgFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}
		if dataDir != "" {
			abs, err := filepath.Abs(dataDir)
			if err != nil {
				return fmt.Errorf("resolve data dir: %w", err)
			}
			cfg.Paths.DataDir = abs
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if cfg.Logging.Output != "console" && cfg.Logging.FilePath == "" {
			paths, err := config.GetPaths(cfg.Paths)
			if err != nil {
				return err
			}
			cfg.Logging.FilePath = paths.GetLogPath(config.AppName + ".log")
		}
		logger, err = infrastructure.InitializeLogger(cfg.Logging)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: config.yaml or configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "override the data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the log level")

	rootCmd.AddCommand(initCmd, mergeCmd, watchCmd, serveCmd, entitiesCmd,
		spreadCmd, exportCmd, calendarCmd)
}

// withApp builds the application for one command and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.Application) error) error {
	a, err := app.New(cfg, logger, app.Options{})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(context.Background()); cerr != nil {
			logger.Warn("shutdown failed", slog.String("error", cerr.Error()))
		}
	}()
	return fn(cmd.Context(), a)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
