package service

import (
	"errors"
	"fmt"

	"github.com/raphaelgruber/wdtable/internal/db"
	"github.com/raphaelgruber/wdtable/internal/grid"
	"github.com/raphaelgruber/wdtable/internal/metrics"
	"github.com/raphaelgruber/wdtable/internal/snapshot"
	"github.com/raphaelgruber/wdtable/internal/wikidata"
)

// Source names accepted by NewElementSource and NewNuclideSource.
const (
	SourceSparql   = "sparql"
	SourceAPI      = "api"
	SourceSnapshot = "snapshot"
	SourceSurreal  = "surreal"
)

// ErrUnknownSource is returned for a source name that is not supported.
var ErrUnknownSource = errors.New("unknown source")

// SourceDeps holds the collaborators sources are built from. Only the ones
// the selected source needs must be set.
type SourceDeps struct {
	Client       *wikidata.Client
	Layout       grid.Layout
	SnapshotPath string
	Store        *db.Store
	Metrics      *metrics.Collector

	// StrictNuclides rejects upstream nuclides sharing a coordinate.
	StrictNuclides bool
}

// NewElementSource returns the element source registered under name.
func NewElementSource(name string, deps SourceDeps) (ElementSource, error) {
	switch name {
	case SourceSparql:
		if deps.Client == nil {
			return nil, fmt.Errorf("%s source: no wikidata client", name)
		}
		return wikidata.NewSparqlElementProvider(deps.Client, deps.Layout), nil
	case SourceAPI:
		if deps.Client == nil {
			return nil, fmt.Errorf("%s source: no wikidata client", name)
		}
		return wikidata.NewAPIElementProvider(deps.Client, deps.Layout), nil
	case SourceSnapshot:
		if deps.SnapshotPath == "" {
			return nil, fmt.Errorf("%s source: no snapshot path", name)
		}
		return &snapshot.Source{Path: deps.SnapshotPath, Metrics: deps.Metrics}, nil
	case SourceSurreal:
		if deps.Store == nil {
			return nil, fmt.Errorf("%s source: no database", name)
		}
		return deps.Store, nil
	default:
		return nil, fmt.Errorf("%w: %q (want sparql, api, snapshot or surreal)", ErrUnknownSource, name)
	}
}

// NewNuclideSource returns the nuclide source registered under name.
// Nuclides have no API provider.
func NewNuclideSource(name string, deps SourceDeps) (NuclideSource, error) {
	switch name {
	case SourceSparql:
		if deps.Client == nil {
			return nil, fmt.Errorf("%s source: no wikidata client", name)
		}
		p := wikidata.NewSparqlNuclideProvider(deps.Client)
		p.Strict = deps.StrictNuclides
		return p, nil
	case SourceSnapshot:
		if deps.SnapshotPath == "" {
			return nil, fmt.Errorf("%s source: no snapshot path", name)
		}
		return &snapshot.Source{Path: deps.SnapshotPath, Metrics: deps.Metrics}, nil
	case SourceSurreal:
		if deps.Store == nil {
			return nil, fmt.Errorf("%s source: no database", name)
		}
		return deps.Store, nil
	default:
		return nil, fmt.Errorf("%w: %q (want sparql, snapshot or surreal)", ErrUnknownSource, name)
	}
}
