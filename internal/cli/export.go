package cli

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/wdtable/internal/app"
	"github.com/raphaelgruber/wdtable/internal/service"
	"github.com/spf13/cobra"
)

var (
	exportOut string
	storeWipe bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch from Wikidata and write a snapshot file",
	Long: `Fetch all elements and nuclides from Wikidata and write them to a YAML
snapshot file. The snapshot can then be served with --source snapshot
without reaching Wikidata.

Examples:
  wdtable export
  wdtable export --out ./tables-de.yaml --lang de`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Fetch from Wikidata and store the records in SurrealDB",
	Long: `Fetch all elements and nuclides from Wikidata and replace the records
stored in SurrealDB for the language. Serve them with --source surreal.

Examples:
  wdtable store --lang en
  wdtable store --wipe`,
	Args: cobra.NoArgs,
	RunE: runStore,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "snapshot file to write (default $WDTABLE_SNAPSHOT)")
	storeCmd.Flags().BoolVar(&storeWipe, "wipe", false, "delete all stored languages first")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportOut != "" {
		cfg.SnapshotPath = exportOut
	}
	ctx := context.Background()

	a, err := getApp(ctx)
	if err != nil {
		return err
	}
	jobs, err := a.Jobs(ctx, app.SinkSnapshot)
	if err != nil {
		return err
	}

	if err := refresh(ctx, cmd, jobs); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nSnapshot written to %s\n", cfg.SnapshotPath)
	return nil
}

func runStore(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := getApp(ctx)
	if err != nil {
		return err
	}
	if storeWipe {
		if err := a.WipeData(ctx); err != nil {
			return fmt.Errorf("wipe database: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Stored records deleted.")
	}

	jobs, err := a.Jobs(ctx, app.SinkSurreal)
	if err != nil {
		return err
	}
	return refresh(ctx, cmd, jobs)
}

// refresh runs a refresh of the configured language, with a progress display
// on terminals and a plain summary otherwise.
func refresh(ctx context.Context, cmd *cobra.Command, jobs *service.JobManager) error {
	if isTerminal() {
		job := jobs.StartRefresh(cfg.DefaultLang)
		return runJobProgress(localJob(job), stateOf(job.Snapshot()), false)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Fetching %s records from Wikidata...\n", cfg.DefaultLang)
	job, err := jobs.Refresh(ctx, cfg.DefaultLang)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), summary(stateOf(job), defaultTheme))
	return nil
}
