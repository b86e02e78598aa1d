package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ebitech02/WanderWise/internal/config"
	"github.com/ebitech02/WanderWise/internal/logging"
)

const appName = "wanderwise"

// Default version is "dev" if not set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "WanderWise travel recommendations by continent and current climate",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newCuisinesCmd(),
		newInvalidateCmd(),
	)
	return root
}

// setup loads the environment config and installs the default logger.
func setup() (config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return config.Config{}, fmt.Errorf("config error: %w", err)
	}
	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)
	return cfg, nil
}
