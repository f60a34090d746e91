package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/wdtable/internal/grid"
	"github.com/raphaelgruber/wdtable/internal/models"
)

// elementCellWidth fits a three letter symbol plus a separating space.
const elementCellWidth = 4

// chartLabelWidth is the width of the atomic number column of the chart.
const chartLabelWidth = 4

// classColors colors elements by their special subclass tag.
var classColors = map[string]lipgloss.Color{
	"alkali-metal":          lipgloss.Color("#FF8787"),
	"post-transition-metal": lipgloss.Color("#AFAFAF"),
	"metalloid":             lipgloss.Color("#D7D787"),
	"diatomic-nonmetal":     lipgloss.Color("#87D7FF"),
	"polyatomic-nonmetal":   lipgloss.Color("#87AFFF"),
}

// halfLifeColors runs parallel to grid.HalfLifeBuckets, long-lived first.
var halfLifeColors = []lipgloss.Color{
	"#000000", "#303030", "#5F0000", "#870000", "#AF0000", "#D70000", "#FF0000",
	"#FF5F00", "#FF8700", "#FFAF00", "#FFD700", "#FFFF00", "#D7FF5F", "#AFFF87", "#87FFAF",
}

// renderPeriodicTable draws the main grid, the special series below it and
// the records that could not be placed.
func renderPeriodicTable(r *grid.ElementResult, t Theme) string {
	var b strings.Builder
	for _, row := range r.Rows() {
		for _, cell := range row {
			b.WriteString(renderElementCell(cell, t))
		}
		b.WriteString("\n")
	}

	if series := r.Series(); len(series) > 0 {
		b.WriteString("\n")
		for _, cells := range series {
			for _, cell := range cells {
				b.WriteString(renderElementCell(cell, t))
			}
			b.WriteString("\n")
		}
	}

	writeItems(&b, "Incomplete", elementIDs(r.Incomplete), t.hintStyle())
	writeItems(&b, "Duplicates", elementIDs(r.Duplicates), t.errorStyle())
	return b.String()
}

func renderElementCell(c models.Cell, t Theme) string {
	style := lipgloss.NewStyle().Width(elementCellWidth)
	switch c := c.(type) {
	case models.ElementCell:
		if color, ok := elementColor(c.Element); ok {
			style = style.Foreground(color)
		}
		return style.Render(models.Deref(c.Element.Symbol))
	case models.IndicatorCell:
		return style.Foreground(t.Hint).Render(fmt.Sprintf("*%d", c.Index))
	case models.UnknownCell:
		return style.Foreground(t.Error).Render("?")
	default:
		return style.Render("")
	}
}

func elementColor(e *models.Element) (lipgloss.Color, bool) {
	for _, class := range e.Classes {
		if color, ok := classColors[class]; ok {
			return color, true
		}
	}
	return "", false
}

// renderNuclideChart draws one block per nuclide, highest atomic number on
// top. Rows above maxZ are left out when maxZ is not negative; columns are
// cut to fit width when width is positive.
func renderNuclideChart(r *grid.NuclideResult, maxZ, width int, t Theme) string {
	rows := r.Rows()
	top := len(rows) - 1
	if maxZ >= 0 && maxZ < top {
		top = maxZ
	}
	cols := r.MaxNeutronNumber + 1
	if width > chartLabelWidth && width-chartLabelWidth < cols {
		cols = width - chartLabelWidth
	}

	var b strings.Builder
	label := lipgloss.NewStyle().Width(chartLabelWidth).Foreground(t.Hint)
	for z := top; z >= 0; z-- {
		b.WriteString(label.Render(fmt.Sprint(z)))
		for n := range cols {
			b.WriteString(renderNuclideCell(rows[z][n]))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s%d nuclides, N 0-%d\n", strings.Repeat(" ", chartLabelWidth), len(r.Nuclides), r.MaxNeutronNumber)
	writeItems(&b, "Incomplete", nuclideIDs(r.Incomplete), t.hintStyle())
	writeItems(&b, "Duplicates", nuclideIDs(r.Duplicates), t.errorStyle())
	return b.String()
}

func renderNuclideCell(c models.Cell) string {
	nc, ok := c.(models.NuclideCell)
	if !ok {
		return " "
	}
	style := lipgloss.NewStyle()
	if color, ok := halfLifeColor(nc.Nuclide.Classes); ok {
		style = style.Foreground(color)
	}
	return style.Render("█")
}

func halfLifeColor(classes []string) (lipgloss.Color, bool) {
	for _, class := range classes {
		i := slices.IndexFunc(grid.HalfLifeBuckets, func(b grid.HalfLifeBucket) bool { return b.Class == class })
		if i >= 0 && i < len(halfLifeColors) {
			return halfLifeColors[i], true
		}
	}
	return "", false
}

func writeItems(b *strings.Builder, title string, ids []string, style lipgloss.Style) {
	if len(ids) == 0 {
		return
	}
	b.WriteString("\n" + style.Render(fmt.Sprintf("%s (%d): %s", title, len(ids), strings.Join(ids, ", "))) + "\n")
}

func elementIDs(elements []*models.Element) []string {
	ids := make([]string, len(elements))
	for i, e := range elements {
		ids[i] = e.ItemID
	}
	return ids
}

func nuclideIDs(nuclides []*models.Nuclide) []string {
	ids := make([]string, len(nuclides))
	for i, n := range nuclides {
		ids[i] = n.ItemID
	}
	return ids
}
