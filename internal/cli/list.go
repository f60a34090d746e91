package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/raphaelgruber/wdtable/internal/client"
	"github.com/raphaelgruber/wdtable/internal/models"
	"github.com/spf13/cobra"
)

var listRemote bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the placed elements",
	Long: `List the elements of the periodic table with their labels, by atomic number.

Examples:
  wdtable list
  wdtable list --lang fr
  wdtable list --remote --server http://localhost:8080`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listRemote, "remote", false, "list the elements served by the server")
}

// elementRow is one line of the listing.
type elementRow struct {
	Number  *int
	Symbol  *string
	Label   *string
	ItemID  string
	Classes []string
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var rows []elementRow
	if listRemote {
		elements, err := getClient().Elements(ctx, cfg.DefaultLang)
		if err != nil {
			return fmt.Errorf("list elements: %w", err)
		}
		rows = remoteRows(elements)
	} else {
		a, err := getApp(ctx)
		if err != nil {
			return err
		}
		result, err := a.Tables.PeriodicTable(ctx, cfg.DefaultLang)
		if err != nil {
			return fmt.Errorf("build periodic table: %w", err)
		}
		rows = localRows(result.Elements)
	}

	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No elements found.")
		return nil
	}
	printElements(cmd.OutOrStdout(), rows)
	return nil
}

func localRows(elements []*models.Element) []elementRow {
	rows := make([]elementRow, len(elements))
	for i, e := range elements {
		rows[i] = elementRow{Number: e.Number, Symbol: e.Symbol, Label: e.Label, ItemID: e.ItemID, Classes: e.Classes}
	}
	return rows
}

func remoteRows(elements []client.Element) []elementRow {
	rows := make([]elementRow, len(elements))
	for i, e := range elements {
		rows[i] = elementRow{Number: e.Number, Symbol: e.Symbol, Label: e.Label, ItemID: e.ItemID, Classes: e.Classes}
	}
	return rows
}

func printElements(w io.Writer, rows []elementRow) {
	fmt.Fprintf(w, "%-4s %-4s %-24s %-10s %s\n", "Z", "SYM", "LABEL", "ITEM", "CLASSES")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, r := range rows {
		fmt.Fprintf(w, "%-4d %-4s %-24s %-10s %s\n",
			models.Deref(r.Number), models.Deref(r.Symbol), models.Deref(r.Label), r.ItemID, strings.Join(r.Classes, ","))
	}
	fmt.Fprintf(w, "\n%d elements\n", len(rows))
}
