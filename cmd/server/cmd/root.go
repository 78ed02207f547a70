package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/photo-prestiges/server/internal/config"
)

var (
	// Global flags
	logLevel  string
	logFormat string

	rootCmd = &cobra.Command{
		Use:   "server",
		Short: "Photo Prestiges backend services",
		Long: `Photo Prestiges backend: a set of event-choreographed services behind a
shared gateway.

Services:
  register  user signup, publishes user.created
  auth      JWT login against the local user replica
  contest   contests, submissions and voting (the owning service)
  clock     contest expiry sweeps, emits contest_status_changed
  score     submission scoring via the image tagging API
  mail      registration and score notification mails
  read      query-only contest listing

Each service runs as its own process with its own database and broker
connection: server serve <service>.`,
	}
)

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, console) (default: json)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}
