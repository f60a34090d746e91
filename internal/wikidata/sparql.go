package wikidata

import (
	"context"
	"fmt"
)

// Term is one bound value of a SPARQL result row.
type Term struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// Binding is one SPARQL result row keyed by variable name. Unbound
// optional variables are absent.
type Binding map[string]Term

// Value returns the value bound to name.
func (b Binding) Value(name string) (string, bool) {
	t, ok := b[name]
	return t.Value, ok
}

// Sparql runs a query against the SPARQL endpoint and returns the result rows.
func (c *Client) Sparql(ctx context.Context, query string) ([]Binding, error) {
	var resp struct {
		Results struct {
			Bindings []Binding `json:"bindings"`
		} `json:"results"`
	}
	if err := c.sparql(ctx, query, &resp); err != nil {
		return nil, fmt.Errorf("sparql query: %w", err)
	}
	return resp.Results.Bindings, nil
}
