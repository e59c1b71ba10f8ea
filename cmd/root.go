package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fantasyrun/runner-market/internal/config"
	"github.com/fantasyrun/runner-market/internal/logger"
)

const serviceName = "Runner-Market"

var (
	Version = "dev"
	Commit  = "unknown"
)

var (
	configPath string
	envPath    string
	cfg        *config.Config
)

var rootCMD = &cobra.Command{
	Use:           "runner-market",
	Short:         "Fantasy running card marketplace",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// a missing .env is normal outside development
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		logger.Setup(serviceName, cfg.Log.Format, cfg.Log.Level, cfg.Log.AddSource)
		logger.LogSystem("Configuration loaded",
			slog.String("config", configPath),
			slog.String("version", Version),
			slog.String("commit", Commit))
		return nil
	},
}

func init() {
	rootCMD.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "path to config")
	rootCMD.PersistentFlags().StringVar(&envPath, "env", ".env", "path to an optional .env file")
	rootCMD.AddCommand(serveCMD, migrateCMD, sweepCMD)
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := rootCMD.ExecuteContext(context.Background()); err != nil {
		slog.Error("Command failed", slog.String("type", "error"), slog.Any("error", err))
		os.Exit(1)
	}
}
