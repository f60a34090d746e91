package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/raphaelgruber/wdtable/internal/grid"
	"github.com/raphaelgruber/wdtable/internal/models"
)

// GraphQLRequest represents a GraphQL HTTP request
type GraphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// GraphQLResponse represents a GraphQL HTTP response
type GraphQLResponse struct {
	Data   any            `json:"data,omitempty"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message string `json:"message"`
}

// Tables is what the GraphQL resolvers read from.
type Tables interface {
	PeriodicTable(ctx context.Context, lang string) (*grid.ElementResult, error)
	NuclideChart(ctx context.Context, lang string) (*grid.NuclideResult, error)
}

type langKey struct{}

// optional dereferences p, mapping nil to a GraphQL null.
func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func elementField(typ graphql.Output, get func(*models.Element) any) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			if e, ok := p.Source.(*models.Element); ok {
				return get(e), nil
			}
			return nil, nil
		},
	}
}

func nuclideField(typ graphql.Output, get func(*models.Nuclide) any) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			if n, ok := p.Source.(*models.Nuclide); ok {
				return get(n), nil
			}
			return nil, nil
		},
	}
}

// NewSchema builds the GraphQL schema over tables.
func NewSchema(tables Tables) (graphql.Schema, error) {
	elementType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Element",
		Fields: graphql.Fields{
			"itemId":  elementField(graphql.NewNonNull(graphql.String), func(e *models.Element) any { return e.ItemID }),
			"number":  elementField(graphql.Int, func(e *models.Element) any { return optional(e.Number) }),
			"symbol":  elementField(graphql.String, func(e *models.Element) any { return optional(e.Symbol) }),
			"label":   elementField(graphql.String, func(e *models.Element) any { return optional(e.Label) }),
			"period":  elementField(graphql.Int, func(e *models.Element) any { return optional(e.Period) }),
			"group":   elementField(graphql.Int, func(e *models.Element) any { return optional(e.Group) }),
			"special": elementField(graphql.Int, func(e *models.Element) any { return optional(e.Special) }),
			"classes": elementField(graphql.NewList(graphql.String), func(e *models.Element) any { return e.Classes }),
		},
	})

	nuclideType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Nuclide",
		Fields: graphql.Fields{
			"itemId":        nuclideField(graphql.NewNonNull(graphql.String), func(n *models.Nuclide) any { return n.ItemID }),
			"atomicNumber":  nuclideField(graphql.Int, func(n *models.Nuclide) any { return optional(n.AtomicNumber) }),
			"neutronNumber": nuclideField(graphql.Int, func(n *models.Nuclide) any { return optional(n.NeutronNumber) }),
			"label":         nuclideField(graphql.String, func(n *models.Nuclide) any { return optional(n.Label) }),
			"halfLife":      nuclideField(graphql.Float, func(n *models.Nuclide) any { return optional(n.HalfLife) }),
			"decayModes": nuclideField(graphql.NewList(graphql.String), func(n *models.Nuclide) any {
				modes := make([]string, len(n.DecayModes))
				for i, m := range n.DecayModes {
					modes[i] = fmt.Sprintf("Q%d", m)
				}
				return modes
			}),
			"classes": nuclideField(graphql.NewList(graphql.String), func(n *models.Nuclide) any { return n.Classes }),
		},
	})

	cellType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Cell",
		Fields: graphql.Fields{
			"kind": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if c, ok := p.Source.(models.Cell); ok {
						return string(c.Kind()), nil
					}
					return nil, nil
				},
			},
			"element": &graphql.Field{
				Type: elementType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if c, ok := p.Source.(models.ElementCell); ok {
						return c.Element, nil
					}
					return nil, nil
				},
			},
			"nuclide": &graphql.Field{
				Type: nuclideType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if c, ok := p.Source.(models.NuclideCell); ok {
						return c.Nuclide, nil
					}
					return nil, nil
				},
			},
			"index": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if c, ok := p.Source.(models.IndicatorCell); ok {
						return c.Index, nil
					}
					return nil, nil
				},
			},
		},
	})

	cellGrid := graphql.NewList(graphql.NewList(cellType))

	periodicTableType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PeriodicTable",
		Fields: graphql.Fields{
			"periods":       elementResultField(graphql.Int, func(r *grid.ElementResult) any { return r.Periods }),
			"groups":        elementResultField(graphql.Int, func(r *grid.ElementResult) any { return r.Groups }),
			"elements":      elementResultField(graphql.NewList(elementType), func(r *grid.ElementResult) any { return r.Elements }),
			"incomplete":    elementResultField(graphql.NewList(elementType), func(r *grid.ElementResult) any { return r.Incomplete }),
			"duplicates":    elementResultField(graphql.NewList(elementType), func(r *grid.ElementResult) any { return r.Duplicates }),
			"rows":          elementResultField(cellGrid, func(r *grid.ElementResult) any { return r.Rows() }),
			"specialSeries": elementResultField(cellGrid, func(r *grid.ElementResult) any { return r.Series() }),
		},
	})

	nuclideChartType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NuclideChart",
		Fields: graphql.Fields{
			"maxAtomicNumber":  nuclideResultField(graphql.Int, func(r *grid.NuclideResult) any { return r.MaxAtomicNumber }),
			"maxNeutronNumber": nuclideResultField(graphql.Int, func(r *grid.NuclideResult) any { return r.MaxNeutronNumber }),
			"nuclides":         nuclideResultField(graphql.NewList(nuclideType), func(r *grid.NuclideResult) any { return r.Nuclides }),
			"incomplete":       nuclideResultField(graphql.NewList(nuclideType), func(r *grid.NuclideResult) any { return r.Incomplete }),
			"duplicates":       nuclideResultField(graphql.NewList(nuclideType), func(r *grid.NuclideResult) any { return r.Duplicates }),
			"rows":             nuclideResultField(cellGrid, func(r *grid.NuclideResult) any { return r.Rows() }),
		},
	})

	langArg := graphql.FieldConfigArgument{
		"lang": &graphql.ArgumentConfig{Type: graphql.String},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"periodicTable": &graphql.Field{
				Type: periodicTableType,
				Args: langArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return tables.PeriodicTable(p.Context, resolveLang(p))
				},
			},
			"elements": &graphql.Field{
				Type: graphql.NewList(elementType),
				Args: langArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					result, err := tables.PeriodicTable(p.Context, resolveLang(p))
					if err != nil {
						return nil, err
					}
					return result.Elements, nil
				},
			},
			"nuclideChart": &graphql.Field{
				Type: nuclideChartType,
				Args: langArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return tables.NuclideChart(p.Context, resolveLang(p))
				},
			},
			"nuclides": &graphql.Field{
				Type: graphql.NewList(nuclideType),
				Args: graphql.FieldConfigArgument{
					"lang":         &graphql.ArgumentConfig{Type: graphql.String},
					"atomicNumber": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					result, err := tables.NuclideChart(p.Context, resolveLang(p))
					if err != nil {
						return nil, err
					}
					z, ok := p.Args["atomicNumber"].(int)
					if !ok {
						return result.Nuclides, nil
					}
					var out []*models.Nuclide
					for _, n := range result.Nuclides {
						if *n.AtomicNumber == z {
							out = append(out, n)
						}
					}
					return out, nil
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

func elementResultField(typ graphql.Output, get func(*grid.ElementResult) any) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			if r, ok := p.Source.(*grid.ElementResult); ok {
				return get(r), nil
			}
			return nil, nil
		},
	}
}

func nuclideResultField(typ graphql.Output, get func(*grid.NuclideResult) any) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			if r, ok := p.Source.(*grid.NuclideResult); ok {
				return get(r), nil
			}
			return nil, nil
		},
	}
}

// resolveLang prefers the lang argument over the negotiated request language.
func resolveLang(p graphql.ResolveParams) string {
	if lang, ok := p.Args["lang"].(string); ok && lang != "" {
		return lang
	}
	lang, _ := p.Context.Value(langKey{}).(string)
	return lang
}

// GraphQLHandler handles GraphQL HTTP requests
type GraphQLHandler struct {
	schema    graphql.Schema
	languages *Negotiator
}

// NewGraphQLHandler creates a new GraphQL HTTP handler
func NewGraphQLHandler(schema graphql.Schema, languages *Negotiator) *GraphQLHandler {
	return &GraphQLHandler{schema: schema, languages: languages}
}

// ServeHTTP handles HTTP requests for GraphQL queries
func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// Only allow POST requests
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse request body
	var req GraphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Execute GraphQL query
	ctx := context.WithValue(r.Context(), langKey{}, h.languages.Language(r))
	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})

	// Build response
	response := GraphQLResponse{
		Data: result.Data,
	}

	// Convert graphql errors to our error format
	if result.HasErrors() {
		response.Errors = make([]GraphQLError, len(result.Errors))
		for i, err := range result.Errors {
			response.Errors[i] = GraphQLError{
				Message: err.Message,
			}
		}
	}

	// Send response
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
