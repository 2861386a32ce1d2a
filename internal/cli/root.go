// Package cli implements the loreweave command surface.
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/loreweave/loreweave/internal/config"
	"github.com/loreweave/loreweave/internal/db"
	"github.com/loreweave/loreweave/internal/logging"
)

var (
	configFile   string
	logLevelFlag string
	databaseFlag string

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "loreweave",
	Short: "Terminal worldbuilding timeline editor",
	Long: `Loreweave keeps a fictional world's history in one place: objects with
typed attributes, the change events that rewrite them over story time,
and the narrative spans that give the timeline its shape.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.config/loreweave/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&databaseFlag, "db", "", "database path override")
}

// Execute runs the root command.
func Execute(version string) {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func initialize() error {
	loader := config.NewLoader()
	if configFile != "" {
		loader.SetConfigFile(configFile)
	}

	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	if logLevelFlag != "" {
		cfg.Logging.Level = logLevelFlag
	}
	if databaseFlag != "" {
		cfg.Database.Path = databaseFlag
	}

	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		EnableCaller: cfg.Logging.EnableCaller,
	})

	if file := loader.ConfigFileUsed(); file != "" {
		logging.Debug().Str("config_file", file).Msg("loaded configuration")
	}

	appConfig = cfg
	return nil
}

// GetConfig returns the loaded application config.
func GetConfig() *config.Config {
	if appConfig == nil {
		appConfig = config.DefaultConfig()
	}
	return appConfig
}

func openDatabase(ctx context.Context) (*db.DB, error) {
	cfg := GetConfig()
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := database.MigrateUp(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return database, nil
}

func formatStoryTime(t float64) string {
	return strconv.FormatFloat(t, 'g', -1, 64)
}
