package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/estimator/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "estimator",
	Short:         "Project cost estimator service",
	Long:          "Serves the public project estimate form, the intake inquiry form and the admin rate settings.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if _, err := config.InitLogger(cfg.Log, cfg.IsDev()); err != nil {
			return eris.Wrap(err, "init logger")
		}
		for _, w := range cfg.Warnings() {
			zap.L().Warn("configuration", zap.String("warning", w))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		zap.L().Error("command failed", zap.Error(err))
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
