package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var refreshDetach bool

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the snapshot held by a running server",
	Long: `Ask a running wdtable-server to fetch fresh records from Wikidata and
save them to its configured sink. The server must run with WDTABLE_REFRESH set.

Examples:
  wdtable refresh --lang de
  wdtable refresh --detach
  wdtable refresh --server http://tables.internal:8080`,
	Args: cobra.NoArgs,
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().BoolVarP(&refreshDetach, "detach", "d", false, "print the job id and return immediately")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	c := getClient()

	job, err := c.StartRefresh(ctx, lang)
	if err != nil {
		return fmt.Errorf("start refresh: %w", err)
	}

	if refreshDetach {
		fmt.Fprintf(cmd.OutOrStdout(), "Job %s started.\nUse 'wdtable jobs %s' to check status.\n", job.ID, job.ID)
		return nil
	}

	if isTerminal() {
		return runJobProgress(remoteJob(c, job.ID), remoteState(job), true)
	}
	return watchJob(ctx, cmd, job.ID)
}
