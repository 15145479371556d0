package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mgkim1976-spec/research-based-wm/internal/config"
	"github.com/mgkim1976-spec/research-based-wm/internal/server"
	"github.com/mgkim1976-spec/research-based-wm/internal/server/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for triggering routines and
reading the report history. A background scanner refreshes the history on an
interval.`,
	RunE: runServe,
}

var (
	serveConfigPath string
	servePort       int
	serveRefresh    string
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on")
	serveCmd.Flags().StringVar(&serveRefresh, "refresh-interval", "", "Background board scan interval (e.g. 30m; 0 disables)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(serveConfigPath, config.Config{
		Port:            servePort,
		RefreshInterval: serveRefresh,
	})
	if err != nil {
		return err
	}

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	srv := server.New(server.Config{
		Port:            cfg.Port,
		RefreshInterval: cfg.RefreshIntervalOrDefault(),
		RateLimit:       ratelimit.LoadConfig(),
	}, a.orchestrator, a.reports, a.logger)

	return srv.Start()
}
