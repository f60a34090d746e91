package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/raphaelgruber/wdtable/internal/client"
	"github.com/spf13/cobra"
)

var jobsWatch bool

var jobsCmd = &cobra.Command{
	Use:   "jobs [job-id]",
	Short: "List or inspect refresh jobs on the server",
	Long: `List all refresh jobs of a running server or inspect a specific job by ID.

Examples:
  wdtable jobs                   # List all jobs
  wdtable jobs abc123            # Show details for job abc123
  wdtable jobs abc123 --watch    # Follow job abc123 until it is done`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJobs,
}

func init() {
	jobsCmd.Flags().BoolVarP(&jobsWatch, "watch", "w", false, "follow the job until it is done")
}

func runJobs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// If job ID provided, show that specific job
	if len(args) == 1 {
		if jobsWatch {
			return watchJob(ctx, cmd, args[0])
		}
		return showJob(ctx, cmd.OutOrStdout(), args[0])
	}

	// List all jobs
	return listJobs(ctx, cmd.OutOrStdout())
}

func listJobs(ctx context.Context, w io.Writer) error {
	jobs, err := getClient().ListJobs(ctx)
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Fprintln(w, "No jobs found")
		return nil
	}

	fmt.Fprintf(w, "%-10s %-6s %-12s %-10s %s\n", "ID", "LANG", "STATUS", "PROGRESS", "STARTED")
	fmt.Fprintln(w, "------------------------------------------------------------------------")

	for _, job := range jobs {
		progress := ""
		if job.Total > 0 {
			progress = fmt.Sprintf("%d/%d", job.Progress, job.Total)
		}
		started := job.StartedAt.Format("15:04:05")
		fmt.Fprintf(w, "%-10s %-6s %-12s %-10s %s\n", job.ID, job.Lang, job.Status, progress, started)
	}

	return nil
}

func showJob(ctx context.Context, w io.Writer, id string) error {
	job, err := getClient().GetJob(ctx, id)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	if job == nil {
		return fmt.Errorf("job not found: %s", id)
	}
	printJob(w, job)
	return nil
}

func printJob(w io.Writer, job *client.Job) {
	fmt.Fprintf(w, "Job: %s\n", job.ID)
	fmt.Fprintf(w, "  Language: %s\n", job.Lang)
	fmt.Fprintf(w, "  Status: %s\n", job.Status)
	if job.Total > 0 {
		fmt.Fprintf(w, "  Progress: %d/%d\n", job.Progress, job.Total)
	}
	fmt.Fprintf(w, "  Started: %s\n", job.StartedAt.Format(time.RFC3339))
	if job.CompletedAt != nil {
		fmt.Fprintf(w, "  Completed: %s\n", job.CompletedAt.Format(time.RFC3339))
		duration := job.CompletedAt.Sub(job.StartedAt)
		fmt.Fprintf(w, "  Duration: %s\n", duration.Round(time.Second))
	}

	if job.Error != "" {
		fmt.Fprintf(w, "  Error: %s\n", job.Error)
	}

	if job.Status == "completed" {
		fmt.Fprintln(w, "\nResult:")
		fmt.Fprintf(w, "  Elements: %d\n", job.Elements)
		fmt.Fprintf(w, "  Nuclides: %d\n", job.Nuclides)
	}
}

// watchJob prints a line per job update until the job is done.
func watchJob(ctx context.Context, cmd *cobra.Command, id string) error {
	w := cmd.OutOrStdout()
	var last *client.Job
	err := getClient().WatchJob(ctx, id, func(job *client.Job) error {
		fmt.Fprintf(w, "%s [%s] %d/%d\n", job.ID, job.Status, job.Progress, job.Total)
		last = job
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch job: %w", err)
	}
	if last == nil {
		return nil
	}

	if last.Status == "failed" {
		return jobError(remoteState(last))
	}
	fmt.Fprint(w, "\n"+summary(remoteState(last), defaultTheme))
	return nil
}
