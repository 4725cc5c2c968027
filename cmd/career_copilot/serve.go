package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jonathan/career-copilot/internal/server"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the authentication and AI proxy endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to PORT env, then 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	port := servePort
	if port == 0 {
		port = 8080
		if raw := os.Getenv("PORT"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("invalid PORT: %v", err)
			}
			port = parsed
		}
	}

	// A missing API key does not fail startup; AI endpoints degrade instead.
	apiKey := os.Getenv("GEMINI_API_KEY")

	strict := true
	if raw := os.Getenv("STRICT_UPSTREAM_ERRORS"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid STRICT_UPSTREAM_ERRORS: %v", err)
		}
		strict = parsed
	}

	cfg := server.Config{
		Port:                 port,
		APIKey:               apiKey,
		StrictUpstreamErrors: strict,
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
