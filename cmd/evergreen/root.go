package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/phanxgames/evergreen"
)

var rootCmd = &cobra.Command{
	Use:   "evergreen",
	Short: "Evergreen is a gesture-driven holiday particle scene",
	Long: `Evergreen renders a spiral tree of ornaments, dust, and photos that
scatters, regroups, and presents photos in response to hand gestures.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML config file (defaults are used when empty)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("env-file", ".env", "Optional dotenv file with GEMINI_API_KEY")
}

// loadEnv reads the dotenv file if it exists. Variables already set in the
// environment win.
func loadEnv(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// loadConfig returns the defaults, or the --config file overlaid on them.
func loadConfig(cmd *cobra.Command) (evergreen.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return evergreen.DefaultConfig(), nil
	}
	return evergreen.LoadConfig(path)
}
