// Package main provides the entry point for the PB content curation service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pbcurator",
	Short: "PB content curation service",
	Long:  "pbcurator pairs securities research reports with SmartMoney videos and drafts segment-targeted outreach for private bankers, via CLI or REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
