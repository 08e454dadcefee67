package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teachkit/packgen/internal/config"
	"github.com/teachkit/packgen/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "packgen",
	Short: "Teaching pack generator",
	Long:  "Packgen turns a lesson summary and a class roster into per-group teaching packs: slides, quizzes, practice sets and video scripts.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PACKGEN_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then PACKGEN_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// resolveConfig loads the config file when --config is set, otherwise
// defaults overlaid with PACKGEN_* environment variables.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.LoadFile(path)
	}
	cfg := config.Default().FromEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
