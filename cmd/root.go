package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verblevel/verblevel/internal/config"
	"github.com/verblevel/verblevel/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "verblevel",
	Short: "Adaptive language proficiency assessment engine",
	Long: "Verblevel scores language-learning sessions: readability analysis, CEFR level\n" +
		"mapping, adaptive difficulty, AI-assisted answer evaluation with a local\n" +
		"fallback, conversation engagement gating and text complexity adaptation.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite event log (overrides VERBLEVEL_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to engine config file (default: search verblevel.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(adaptCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupLogging(cmd *cobra.Command) {
	var lvl slog.Level
	s, _ := cmd.Flags().GetString("log-level")
	switch strings.ToLower(s) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then VERBLEVEL_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// loadEngineConfig loads the file config honoring the --config flag.
func loadEngineConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
