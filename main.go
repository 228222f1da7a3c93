// Package main provides the entry point for the ATS resume reviser: an HTTP
// API server, a desktop app and a one-shot command.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fmuoria/resume-reviser/internal/config"
	"github.com/fmuoria/resume-reviser/internal/logging"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "resume-reviser",
	Short: "ATS resume reviser",
	Long: "Resume Reviser scores a resume against a job description, rewrites it to match, " +
		"and exports the revision as text, PDF and DOCX.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json (default: user config directory)")
}

// loadConfig reads the config file, overlays the environment and sets up logging
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.OverlayEnv()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	slog.Debug("configuration loaded", "provider", cfg.Provider, "model", cfg.Model)
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
