package server

import (
	"cmp"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/raphaelgruber/wdtable/internal/grid"
	"github.com/raphaelgruber/wdtable/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

// entityURL links an item to its Wikidata page.
const entityURL = "https://www.wikidata.org/wiki/"

// pages are rendered with the shared header, footer and cell templates.
var pages = []string{"index.html", "nuclides.html", "license.html", "api.html"}

func parseTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.ParseFS(templatesFS, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		out[page] = tmpl
	}
	return out, nil
}

// cellView is one rendered table cell.
type cellView struct {
	Kind    string
	Symbol  string
	Label   string
	Title   string
	URL     string
	Number  int
	Index   int
	Classes string
}

type periodicTableView struct {
	Lang       string
	Rows       [][]cellView
	Series     [][]cellView
	Incomplete []cellView
	Duplicates []cellView
}

type nuclideChartView struct {
	Lang       string
	Rows       [][]cellView // highest atomic number first
	Incomplete []cellView
	MaxZ       int
	MaxN       int
}

type pageView struct {
	Lang string
}

func newPeriodicTableView(lang string, result *grid.ElementResult) periodicTableView {
	v := periodicTableView{Lang: lang}
	for _, row := range result.Rows() {
		v.Rows = append(v.Rows, cellViews(row))
	}
	for _, series := range result.Series() {
		v.Series = append(v.Series, cellViews(series))
	}
	for _, e := range result.Incomplete {
		v.Incomplete = append(v.Incomplete, elementView(e))
	}
	for _, e := range result.Duplicates {
		v.Duplicates = append(v.Duplicates, elementView(e))
	}
	return v
}

func newNuclideChartView(lang string, result *grid.NuclideResult) nuclideChartView {
	v := nuclideChartView{Lang: lang, MaxZ: result.MaxAtomicNumber, MaxN: result.MaxNeutronNumber}
	rows := result.Rows()
	for z := len(rows) - 1; z >= 0; z-- {
		views := cellViews(rows[z])
		for n := range views {
			if grid.IsMagic(z) || grid.IsMagic(n) {
				views[n].Classes = strings.TrimSpace(views[n].Classes + " magic")
			}
		}
		v.Rows = append(v.Rows, views)
	}
	for _, n := range result.Incomplete {
		v.Incomplete = append(v.Incomplete, nuclideView(n))
	}
	return v
}

func cellViews(cells []models.Cell) []cellView {
	out := make([]cellView, len(cells))
	for i, c := range cells {
		out[i] = newCellView(c)
	}
	return out
}

func newCellView(c models.Cell) cellView {
	switch c := c.(type) {
	case models.ElementCell:
		return elementView(c.Element)
	case models.NuclideCell:
		return nuclideView(c.Nuclide)
	case models.IndicatorCell:
		return cellView{Kind: string(models.CellIndicator), Index: c.Index, Symbol: strings.Repeat("*", c.Index)}
	case nil:
		return cellView{Kind: string(models.CellEmpty)}
	default:
		return cellView{Kind: string(c.Kind())}
	}
}

func elementView(e *models.Element) cellView {
	v := cellView{
		Kind:    string(models.CellElement),
		Symbol:  models.Deref(e.Symbol),
		Label:   models.Deref(e.Label),
		Number:  models.Deref(e.Number),
		Classes: strings.Join(e.Classes, " "),
	}
	if e.ItemID != "" {
		v.URL = entityURL + e.ItemID
	}
	v.Title = cmp.Or(v.Label, v.Symbol, e.ItemID)
	return v
}

func nuclideView(n *models.Nuclide) cellView {
	v := cellView{
		Kind:    string(models.CellNuclide),
		Label:   models.Deref(n.Label),
		Classes: strings.Join(n.Classes, " "),
	}
	if n.ItemID != "" {
		v.URL = entityURL + n.ItemID
	}
	title := cmp.Or(v.Label, n.ItemID)
	if n.HalfLife != nil {
		title += fmt.Sprintf(" (half-life %g s)", *n.HalfLife)
	}
	v.Title = title
	return v
}
