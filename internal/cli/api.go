package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	apiProps    []string
	apiNuclides bool
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Print table properties as JSON",
	Long: `Print selected properties of the periodic table or the nuclide chart as
JSON, the same document the server's /api endpoints return.

Element properties: elements, incomplete
Nuclide properties: nuclides, incomplete

Examples:
  wdtable api --props elements,incomplete
  wdtable api --nuclides --props nuclides`,
	Args: cobra.NoArgs,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().StringSliceVarP(&apiProps, "props", "p", nil, "properties to include (comma-separated)")
	apiCmd.Flags().BoolVar(&apiNuclides, "nuclides", false, "query the nuclide chart instead of the periodic table")
}

func runAPI(cmd *cobra.Command, args []string) error {
	if len(apiProps) == 0 {
		return errors.New("no properties requested, see --help")
	}
	ctx := context.Background()

	a, err := getApp(ctx)
	if err != nil {
		return err
	}

	var props map[string]any
	if apiNuclides {
		props, err = a.Tables.NuclideProps(ctx, cfg.DefaultLang, apiProps)
	} else {
		props, err = a.Tables.ElementProps(ctx, cfg.DefaultLang, apiProps)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(props); err != nil {
		return fmt.Errorf("encode props: %w", err)
	}
	return nil
}
