package wikidata

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/raphaelgruber/wdtable/internal/grid"
	"github.com/raphaelgruber/wdtable/internal/models"
)

// Wikidata properties describing chemical elements.
const (
	SymbolPID   = 246  // element symbol
	SubclassPID = 279  // subclass of
	NumberPID   = 1086 // atomic number
)

var elementQuery = fmt.Sprintf(`SELECT ?item ?symbol ?number (group_concat(?subclass_of) as ?subclass_of)
WHERE {
    ?item wdt:P%[1]d ?symbol .
    OPTIONAL { ?item wdt:P%[2]d ?subclass_of }
    OPTIONAL { ?item wdt:P%[3]d ?number }
}
GROUP BY ?item ?symbol ?number`, SymbolPID, SubclassPID, NumberPID)

// labelParams requests labels in lang with language fallback.
func labelParams(props, lang string) url.Values {
	return url.Values{
		"props":            {props},
		"languages":        {lang},
		"languagefallback": {"1"},
	}
}

// SparqlElementProvider loads elements from the SPARQL endpoint and their
// labels from the API.
type SparqlElementProvider struct {
	client *Client
	layout grid.Layout
}

// NewSparqlElementProvider creates a SPARQL backed element provider.
func NewSparqlElementProvider(client *Client, layout grid.Layout) *SparqlElementProvider {
	return &SparqlElementProvider{client: client, layout: layout}
}

// Elements returns one record per result row: every item with a symbol.
// An item with several symbols or numbers yields several records; the table
// assembler sorts those out.
func (p *SparqlElementProvider) Elements(ctx context.Context, lang string) ([]*models.Element, error) {
	rows, err := p.client.Sparql(ctx, elementQuery)
	if err != nil {
		return nil, fmt.Errorf("query elements: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if uri, ok := row.Value("item"); ok {
			ids = append(ids, EntityID(uri))
		}
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	entities, err := p.client.GetEntities(ctx, ids, labelParams("labels", lang))
	if err != nil {
		return nil, fmt.Errorf("load element labels: %w", err)
	}

	elements := make([]*models.Element, 0, len(rows))
	for _, row := range rows {
		uri, ok := row.Value("item")
		if !ok {
			continue
		}
		e, err := p.fromBinding(row, EntityID(uri))
		if err != nil {
			return nil, err
		}
		if entity, ok := entities[e.ItemID]; ok {
			if label, ok := entity.Label(); ok {
				if err := e.SetLabel(label); err != nil {
					return nil, err
				}
			}
		}
		elements = append(elements, e)
	}
	return elements, nil
}

func (p *SparqlElementProvider) fromBinding(row Binding, itemID string) (*models.Element, error) {
	e := &models.Element{}
	if err := e.SetItemID(itemID); err != nil {
		return nil, err
	}

	if number, ok := row.Value("number"); ok && isDigits(number) {
		n, err := strconv.Atoi(number)
		if err != nil {
			return nil, fmt.Errorf("parse atomic number of %s: %w", itemID, err)
		}
		if err := e.SetNumber(n); err != nil {
			return nil, err
		}
	}
	if symbol, ok := row.Value("symbol"); ok {
		if err := e.SetSymbol(symbol); err != nil {
			return nil, err
		}
	}

	var superclasses []int64
	if concat, ok := row.Value("subclass_of"); ok {
		for _, uri := range strings.Fields(concat) {
			id, err := NumericID(uri)
			if err != nil {
				slog.Debug("skipping superclass", "item", itemID, "superclass", uri, "error", err)
				continue
			}
			superclasses = append(superclasses, id)
		}
	}
	if err := p.layout.Apply(e, superclasses); err != nil {
		return nil, fmt.Errorf("apply layout to %s: %w", itemID, err)
	}
	return e, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// APIElementProvider loads elements from the API only: every item linking
// to the element symbol property is treated as an element. Slower than the
// SPARQL provider but not affected by query service lag.
type APIElementProvider struct {
	client *Client
	layout grid.Layout
}

// NewAPIElementProvider creates an API backed element provider.
func NewAPIElementProvider(client *Client, layout grid.Layout) *APIElementProvider {
	return &APIElementProvider{client: client, layout: layout}
}

// Elements returns the elements in item id order. Entities whose claims
// cannot be decoded are skipped.
func (p *APIElementProvider) Elements(ctx context.Context, lang string) ([]*models.Element, error) {
	titles, err := p.client.Backlinks(ctx, fmt.Sprintf("Property:P%d", SymbolPID))
	if err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}

	entities, err := p.client.GetEntities(ctx, titles, labelParams("labels|claims", lang))
	if err != nil {
		return nil, fmt.Errorf("load elements: %w", err)
	}

	all := slices.SortedFunc(maps.Values(entities), func(a, b Entity) int {
		return cmp.Compare(a.ID, b.ID)
	})

	elements := make([]*models.Element, 0, len(all))
	for _, entity := range all {
		e, err := ElementFromEntity(entity, p.layout)
		if err != nil {
			slog.Debug("skipping entity", "item", entity.ID, "error", err)
			continue
		}
		elements = append(elements, e)
	}
	return elements, nil
}

// ElementFromEntity builds an element from the claims of entity. Missing
// claims leave the attribute unset; malformed claims are an error.
func ElementFromEntity(entity Entity, layout grid.Layout) (*models.Element, error) {
	e := &models.Element{}
	if err := e.SetItemID(entity.ID); err != nil {
		return nil, err
	}

	if claims := entity.Claims[pid(NumberPID)]; len(claims) > 0 {
		amount, err := claims[0].Quantity()
		if err != nil {
			return nil, fmt.Errorf("atomic number: %w", err)
		}
		n, err := strconv.Atoi(amount)
		if err != nil {
			return nil, fmt.Errorf("atomic number: %w", err)
		}
		if err := e.SetNumber(n); err != nil {
			return nil, err
		}
	}

	if claims := entity.Claims[pid(SymbolPID)]; len(claims) > 0 {
		symbol, err := claims[0].Text()
		if err != nil {
			return nil, fmt.Errorf("symbol: %w", err)
		}
		if err := e.SetSymbol(symbol); err != nil {
			return nil, err
		}
	}

	if label, ok := entity.Label(); ok {
		if err := e.SetLabel(label); err != nil {
			return nil, err
		}
	}

	superclasses := make([]int64, 0, len(entity.Claims[pid(SubclassPID)]))
	for _, claim := range entity.Claims[pid(SubclassPID)] {
		id, err := claim.ItemID()
		if err != nil {
			return nil, fmt.Errorf("subclass of: %w", err)
		}
		superclasses = append(superclasses, id)
	}
	if err := layout.Apply(e, superclasses); err != nil {
		return nil, err
	}
	return e, nil
}

func pid(n int) string {
	return "P" + strconv.Itoa(n)
}
