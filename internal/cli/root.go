// Package cli provides the command-line interface for wdtable.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/raphaelgruber/wdtable/internal/app"
	"github.com/raphaelgruber/wdtable/internal/client"
	"github.com/raphaelgruber/wdtable/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose       bool
	lang          string
	elementSource string
	nuclideSource string
	snapshotPath  string
	serverURL     string

	// Global config, set up before every command
	cfg        config.Config
	logCleanup func() error

	// Lazy-initialized components
	application *app.App
	remote      *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "wdtable",
	Short: "Periodic table and chart of nuclides from Wikidata",
	Long: `Wdtable assembles the periodic table of elements and the chart of nuclides
from Wikidata and renders them in the terminal or as JSON.

Records come from the Wikidata SPARQL endpoint or API, from a snapshot file
written by 'wdtable export', or from SurrealDB filled by 'wdtable store'.
A running wdtable-server can be driven with 'refresh', 'jobs' and 'query'.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		// Load config, flags win over the environment
		cfg = config.Load()
		flags := cmd.Flags()
		if flags.Changed("lang") {
			cfg.DefaultLang = lang
		}
		if flags.Changed("source") {
			cfg.ElementSource = elementSource
		}
		if flags.Changed("nuclide-source") {
			cfg.NuclideSource = nuclideSource
		}
		if flags.Changed("snapshot") {
			cfg.SnapshotPath = snapshotPath
		}
		if flags.Changed("server") {
			cfg.ServerURL = serverURL
		}

		// Keep the terminal to warnings unless asked for more
		levels := config.LogLevels{Console: max(cfg.LogLevel, slog.LevelWarn), File: cfg.LogLevel}
		if verbose {
			levels = config.Levels(slog.LevelDebug)
		}
		var logger *slog.Logger
		logger, logCleanup = config.SetupLogger(cfg.LogFile, levels)
		slog.SetDefault(logger)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		// Close database connection
		if application != nil {
			if err := application.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if logCleanup != nil {
			_ = logCleanup()
		}
	},
}

// getApp builds the table service from the loaded config on first use.
func getApp(ctx context.Context) (*app.App, error) {
	if application != nil {
		return application, nil
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	application = a
	return a, nil
}

// getClient returns the client for the configured server.
func getClient() *client.Client {
	if remote == nil {
		remote = client.New(cfg.ServerURL)
	}
	return remote
}

// isTerminal reports whether stdout is an interactive terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// terminalWidth returns the width of stdout, or 0 when it is not a terminal.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.StringVarP(&lang, "lang", "l", "", "label language (default $WDTABLE_LANG or en)")
	flags.StringVar(&elementSource, "source", "", "element source: sparql, api, snapshot or surreal")
	flags.StringVar(&nuclideSource, "nuclide-source", "", "nuclide source: sparql, snapshot or surreal")
	flags.StringVar(&snapshotPath, "snapshot", "", "snapshot file path")
	flags.StringVar(&serverURL, "server", "", "wdtable-server URL for remote commands")

	// Add subcommands
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(nuclidesCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}
