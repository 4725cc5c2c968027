// Package main provides the entry point for the career-copilot HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "career_copilot",
	Short: "Career Copilot HTTP API Server",
	Long:  "Career Copilot exposes JWT-authenticated REST endpoints that score, analyze, and rewrite resumes against job descriptions using an external text-generation API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
