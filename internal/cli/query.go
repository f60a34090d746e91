package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var queryVars []string

var queryCmd = &cobra.Command{
	Use:   "query <graphql>",
	Short: "Run a GraphQL query against the server",
	Long: `Run a GraphQL query against a running server and print the data as JSON.
Read the query from stdin with '-'.

Examples:
  wdtable query '{ periodicTable { periods groups } }'
  wdtable query 'query($z: Int) { nuclides(atomicNumber: $z) { itemId halfLife } }' --var z=1
  wdtable query - < chart.graphql`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringArrayVar(&queryVars, "var", nil, "query variable as name=json-value (repeatable)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	query := args[0]
	if query == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read query: %w", err)
		}
		query = string(data)
	}

	vars, err := parseVars(queryVars)
	if err != nil {
		return err
	}

	var data json.RawMessage
	if err := getClient().Execute(context.Background(), query, vars, &data); err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// parseVars turns name=value pairs into query variables. Values are decoded
// as JSON and kept as strings when they are not valid JSON.
func parseVars(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid variable %q (want name=value)", pair)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		vars[name] = value
	}
	return vars, nil
}
