package wikidata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/raphaelgruber/wdtable/internal/models"
	"golang.org/x/sync/errgroup"
)

// Wikidata properties and items describing nuclides.
const (
	InstancePID      = 31
	NeutronNumberPID = 1148
	HalfLifePID      = 2114
	DecaysToPID      = 816
	DecayModePID     = 817
	ProportionPID    = 1107

	IsotopeQID = 25276  // top-level class of all isotopes
	StableQID  = 878130 // stable isotope
	IsomerQID  = 846110 // metastable isomers are instances of this
)

// ClassStable tags nuclides that are instances of a stable isotope.
const ClassStable = "stable"

const sparqlPrefixes = `PREFIX wdt: <http://www.wikidata.org/prop/direct/>
PREFIX wd: <http://www.wikidata.org/entity/>
PREFIX p: <http://www.wikidata.org/prop/>
PREFIX ps: <http://www.wikidata.org/prop/statement/>
PREFIX psv: <http://www.wikidata.org/prop/statement/value/>
PREFIX pq: <http://www.wikidata.org/prop/qualifier/>
PREFIX wikibase: <http://wikiba.se/ontology#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
`

// isotopePath matches every item that is an instance of some subclass of isotope.
var isotopePath = fmt.Sprintf("wdt:P%d/wdt:P%d* wd:Q%d", InstancePID, SubclassPID, IsotopeQID)

var (
	nuclideQuery = sparqlPrefixes + fmt.Sprintf(`SELECT ?nuclide ?atomic_number ?neutron_number ?label WHERE {
    ?nuclide %s ;
             wdt:P%d ?atomic_number ;
             wdt:P%d ?neutron_number ;
             rdfs:label ?label .
    FILTER NOT EXISTS { ?nuclide wdt:P%d wd:Q%d . }
    FILTER(lang(?label) = 'en')
}`, isotopePath, NumberPID, NeutronNumberPID, InstancePID, IsomerQID)

	stableQuery = sparqlPrefixes + fmt.Sprintf(`SELECT ?nuclide WHERE {
    ?nuclide %s ;
             wdt:P%d wd:Q%d .
}`, isotopePath, InstancePID, StableQID)

	halfLifeQuery = sparqlPrefixes + fmt.Sprintf(`SELECT ?nuclide ?half_life ?half_life_unit WHERE {
    ?nuclide %s ;
             p:P%[2]d ?hl_statement .
    ?hl_statement psv:P%[2]d ?hl_value .
    ?hl_value wikibase:quantityAmount ?half_life ;
              wikibase:quantityUnit ?half_life_unit .
}`, isotopePath, HalfLifePID)

	decayQuery = sparqlPrefixes + fmt.Sprintf(`SELECT ?nuclide ?decay_to ?decay_mode ?fraction WHERE {
    ?nuclide %s ;
             p:P%[2]d ?decay_statement .
    ?decay_statement ps:P%[2]d ?decay_to ;
                     pq:P%[3]d ?decay_mode ;
                     pq:P%[4]d ?fraction .
}`, isotopePath, DecaysToPID, DecayModePID, ProportionPID)
)

// SparqlNuclideProvider loads nuclides from the SPARQL endpoint.
type SparqlNuclideProvider struct {
	client *Client

	// Strict rejects results where two items share an (atomic, neutron)
	// number pair instead of leaving the choice to the table assembler.
	Strict bool
}

// NewSparqlNuclideProvider creates a SPARQL backed nuclide provider.
func NewSparqlNuclideProvider(client *Client) *SparqlNuclideProvider {
	return &SparqlNuclideProvider{client: client}
}

// Nuclides runs the nuclide, stability, half-life and decay queries
// concurrently and folds their rows into one record per item. Labels are
// always English; lang is accepted for symmetry with the element providers.
//
// Only items returned by the nuclide query become records. Conflicting
// values for the same attribute of an item fail the whole load.
func (p *SparqlNuclideProvider) Nuclides(ctx context.Context, lang string) ([]*models.Nuclide, error) {
	queries := []string{nuclideQuery, stableQuery, halfLifeQuery, decayQuery}
	results := make([][]Binding, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			rows, err := p.client.Sparql(gctx, q)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("query nuclides: %w", err)
	}

	acc := models.NewNuclideAccumulator()
	folds := []func(*models.Accumulator[models.Nuclide], Binding) error{
		foldNuclide, foldStable, foldHalfLife, foldDecay,
	}
	for i, fold := range folds {
		for _, row := range results[i] {
			if err := fold(acc, row); err != nil {
				return nil, err
			}
		}
	}

	if p.Strict {
		return acc.Records()
	}
	return slices.Collect(acc.All()), nil
}

func foldNuclide(acc *models.Accumulator[models.Nuclide], row Binding) error {
	uri, _ := row.Value("nuclide")
	z, errZ := strconv.Atoi(row["atomic_number"].Value)
	n, errN := strconv.Atoi(row["neutron_number"].Value)
	if err := errors.Join(errZ, errN); err != nil {
		slog.Debug("skipping nuclide", "item", EntityID(uri), "error", err)
		return nil
	}

	fragment := &models.Nuclide{ItemID: EntityID(uri)}
	fragment.AtomicNumber = &z
	fragment.NeutronNumber = &n
	if label, ok := row.Value("label"); ok {
		fragment.Label = &label
	}
	return acc.Add(uri, fragment)
}

func foldStable(acc *models.Accumulator[models.Nuclide], row Binding) error {
	uri, _ := row.Value("nuclide")
	if !acc.Has(uri) {
		return nil
	}
	return acc.Add(uri, &models.Nuclide{Classes: []string{ClassStable}})
}

func foldHalfLife(acc *models.Accumulator[models.Nuclide], row Binding) error {
	uri, _ := row.Value("nuclide")
	if !acc.Has(uri) {
		return nil
	}
	seconds, err := TimeInSeconds(row["half_life"].Value, row["half_life_unit"].Value)
	if err != nil {
		slog.Warn("skipping half-life", "item", EntityID(uri), "error", err)
		return nil
	}
	return acc.Add(uri, &models.Nuclide{HalfLife: &seconds})
}

func foldDecay(acc *models.Accumulator[models.Nuclide], row Binding) error {
	uri, _ := row.Value("nuclide")
	if !acc.Has(uri) {
		return nil
	}
	mode, err := NumericID(row["decay_mode"].Value)
	if err != nil {
		slog.Debug("skipping decay mode", "item", EntityID(uri), "error", err)
		return nil
	}
	return acc.Add(uri, &models.Nuclide{DecayModes: []int64{mode}})
}
