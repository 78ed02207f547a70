package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/photo-prestiges/server/internal/app"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var knownServices = []string{"register", "auth", "contest", "clock", "score", "mail", "read"}

var serveCmd = &cobra.Command{
	Use:   "serve <service>",
	Short: "Start one Photo Prestiges service",
	Long: `Start the named service and run it until SIGINT/SIGTERM.

Examples:
  # Start the contest service on the default port
  server serve contest

  # Start the read service on a specific port
  server serve read --port 9090

  # Start the score service with debug logging
  server serve score --log-level debug`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runService(args[0])
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runService(name string) error {
	if !isKnownService(name) {
		return fmt.Errorf("unknown service %q (expected one of %v)", name, knownServices)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, err := app.New(ctx, name, cfg)
	if err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	return service.Run(ctx)
}

func isKnownService(name string) bool {
	for _, known := range knownServices {
		if name == known {
			return true
		}
	}
	return false
}
