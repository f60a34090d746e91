package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/raphaelgruber/wdtable/internal/metrics"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show server statistics",
	Long: `Show the runtime statistics of a running server: upstream calls with their
cache hit rates, snapshot and database loads, and table builds.

Examples:
  wdtable stats
  wdtable stats --server http://tables.internal:8080`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	stats, err := getClient().Stats(context.Background())
	if err != nil {
		return fmt.Errorf("get server stats: %w", err)
	}
	printServerStats(cmd.OutOrStdout(), stats)
	return nil
}

// printServerStats displays server runtime statistics.
func printServerStats(w io.Writer, stats *metrics.Snapshot) {
	fmt.Fprintf(w, "Server Statistics (in-memory, since restart)\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════\n")
	fmt.Fprintf(w, "Uptime: %.1f seconds\n", stats.UptimeSeconds)

	for _, op := range []struct {
		title string
		stats *metrics.OperationSnapshot
	}{
		{"Wikidata API", stats.WikidataAPI},
		{"Wikidata SPARQL", stats.WikidataSPARQL},
		{"Snapshot Load", stats.SnapshotLoad},
		{"DB Query", stats.DBQuery},
		{"Periodic Table", stats.ElementTable},
		{"Nuclide Chart", stats.NuclideTable},
	} {
		if op.stats == nil {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", op.title)
		printOpStats(w, op.stats)
	}
}

// printOpStats displays timing statistics for an operation.
func printOpStats(w io.Writer, op *metrics.OperationSnapshot) {
	fmt.Fprintf(w, "  Calls: %d, Total: %dms\n", op.Count, op.TotalTimeMs)
	fmt.Fprintf(w, "  Time: avg %.1fms, min %dms, max %dms\n",
		op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
	if op.CacheHits != nil && op.CacheMisses != nil && op.CacheHitRate != nil {
		fmt.Fprintf(w, "  Cache: %d hits, %d misses (%.0f%%)\n",
			*op.CacheHits, *op.CacheMisses, *op.CacheHitRate*100)
	}
}
