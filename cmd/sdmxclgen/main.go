package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/semrd/sdmxclgen/internal/app"
	"github.com/semrd/sdmxclgen/internal/config"
	"github.com/semrd/sdmxclgen/internal/search"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Version is injected at build time
	Version = "dev"
	// Build is injected at build time
	Build = "unknown"
	// ProgramName is injected at build time
	ProgramName = "sdmxclgen"
)

func main() {
	runMain(os.Args, os.Exit)
}

func runMain(args []string, exit func(int)) {
	if err := Execute(Version, Build, ProgramName, args[1:]); err != nil {
		exit(1)
	}
}

// Execute is the entry point for the CLI, extracted for testing
func Execute(version, build, programName string, args []string) error {
	rootCmd := &cobra.Command{
		Use:     programName,
		Short:   "SDMX codelist analysis and SKOS generation",
		Long:    "Downloads SDMX codelists, analyzes code overlap, classifies codelists into concept schemes and generates SKOS/Turtle output",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithFlags(cmd.Flags(), version)
		},
	}

	rootCmd.SetVersionTemplate(`{{.Version}}
`)

	app.RegisterFlags(rootCmd.Flags())
	rootCmd.AddCommand(newSearchCommand())
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

func runWithFlags(flags *pflag.FlagSet, version string) error {
	return app.RunWithDeps(context.Background(), app.DefaultRunParams(), flags, version)
}

// newSearchCommand builds the subcommand querying the code index.
func newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the code index",
		Long:  "Runs a full-text query against the indexed code entries (build the index with --index first)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettingsWithFlags(cmd.Flags())
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			if err := config.ValidateSettings(settings); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			codelist, _ := cmd.Flags().GetString("codelist")
			agency, _ := cmd.Flags().GetString("agency")

			indexer := search.NewIndexer(settings.Workspace.Resolve(settings.Workspace.IndexDir))
			searcher := search.NewSearcher(indexer)
			result, err := searcher.Search(search.Params{
				Query:      strings.Join(args, " "),
				Codelist:   codelist,
				Agency:     agency,
				MaxResults: settings.Search.MaxResults,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().String("codelist", "", "Filter by full codelist identifier")
	cmd.Flags().String("agency", "", "Filter by agency identifier")
	cmd.Flags().StringP("workspace", "w", "", "Workspace base directory")
	cmd.Flags().String("index-dir", "", "Directory holding the search index")
	cmd.Flags().Int("max-results", 0, "Maximum number of search results")

	return cmd
}
