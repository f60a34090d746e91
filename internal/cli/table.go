package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var nuclidesMaxZ int

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Render the periodic table",
	Long: `Render the periodic table in the terminal.

Gaps where an element is known to be missing are marked with '?', the
entry points of the lanthanide and actinide series with '*1', '*2'.
Records that could not be placed are listed below the table.

Examples:
  wdtable table
  wdtable table --lang de
  wdtable table --source snapshot --snapshot ./tables.yaml`,
	Args: cobra.NoArgs,
	RunE: runTable,
}

var nuclidesCmd = &cobra.Command{
	Use:   "nuclides",
	Short: "Render the chart of nuclides",
	Long: `Render the chart of nuclides in the terminal, one block per nuclide,
colored by half-life. The chart is cut to the terminal width.

Examples:
  wdtable nuclides
  wdtable nuclides --max-z 20`,
	Args: cobra.NoArgs,
	RunE: runNuclides,
}

func init() {
	nuclidesCmd.Flags().IntVar(&nuclidesMaxZ, "max-z", -1, "highest atomic number to show (-1 for all)")
}

func runTable(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := getApp(ctx)
	if err != nil {
		return err
	}

	result, err := a.Tables.PeriodicTable(ctx, cfg.DefaultLang)
	if err != nil {
		return fmt.Errorf("build periodic table: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), renderPeriodicTable(result, defaultTheme))
	return nil
}

func runNuclides(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := getApp(ctx)
	if err != nil {
		return err
	}

	result, err := a.Tables.NuclideChart(ctx, cfg.DefaultLang)
	if err != nil {
		return fmt.Errorf("build nuclide chart: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), renderNuclideChart(result, nuclidesMaxZ, terminalWidth(), defaultTheme))
	return nil
}
