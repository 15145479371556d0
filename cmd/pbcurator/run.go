package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgkim1976-spec/research-based-wm/internal/config"
	"github.com/mgkim1976-spec/research-based-wm/internal/observability"
	"github.com/mgkim1976-spec/research-based-wm/internal/types"
	"github.com/mgkim1976-spec/research-based-wm/internal/workflow"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run one curation routine end-to-end",
	Long: `Fetches the latest research reports and SmartMoney videos, matches them into
a content bundle, and drafts segment-targeted PB outreach.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runRoutineCmd,
}

var (
	runConfigPath  string
	runRoutine     string
	runReportID    string
	runDataPath    string
	runDatabaseURL string
	runAPIKey      string
	runListURL     string
	runUseBrowser  bool
	runVerbose     bool
)

func init() {
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runRoutine, "routine", "r", "A", "Routine to run: A (morning hybrid), B (biweekly deep), C (weekend theme), D (educational)")
	runCommand.Flags().StringVar(&runReportID, "report-id", "", "Run against a specific report id instead of the freshest one")
	runCommand.Flags().StringVar(&runDataPath, "data", "", "Path to the JSON report store")
	runCommand.Flags().StringVar(&runListURL, "list-url", "", "Research board list URL override")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use headless browser fallback for the board (requires Chrome)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed run output")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for report persistence
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

func runRoutineCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	routine, err := types.ParseRoutineType(runRoutine)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(runConfigPath, config.Config{
		DataPath:        runDataPath,
		DatabaseURL:     runDatabaseURL,
		APIKey:          runAPIKey,
		ResearchListURL: runListURL,
		UseBrowser:      runUseBrowser,
		Verbose:         runVerbose,
	})
	if err != nil {
		return err
	}

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	var result *workflow.RoutineResult
	switch routine {
	case types.RoutineMorningHybrid:
		result, err = a.orchestrator.RunMorningHybrid(ctx, runReportID)
	case types.RoutineBiweeklyDeep:
		result, err = a.orchestrator.RunBiweeklyDeep(ctx)
	case types.RoutineWeekendTheme:
		result, err = a.orchestrator.RunWeekendTheme(ctx)
	case types.RoutineEducational:
		result, err = a.orchestrator.RunEducational(ctx)
	}
	if err != nil {
		return fmt.Errorf("routine failed: %w", err)
	}

	printResult(routine, result, cfg.Verbose)
	return nil
}

func printResult(routine types.RoutineType, result *workflow.RoutineResult, verbose bool) {
	printer := observability.NewPrinter(os.Stdout)

	if result.Status != workflow.StatusSuccess {
		printer.PrintError(result.Message)
		return
	}

	printer.PrintBundle(result.Bundle)
	printer.PrintDrafts(result.Drafts)
	if verbose {
		printer.PrintCandidates(result.OtherReports)
		printer.PrintAudit(result.Audit)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}

	fmt.Printf("\n%s completed: %d drafts generated.\n", routine.DisplayName(), len(result.Drafts))
}
