// Package app wires the table service and its collaborators from a Config.
// It is shared by the CLI and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/wdtable/internal/config"
	"github.com/raphaelgruber/wdtable/internal/db"
	"github.com/raphaelgruber/wdtable/internal/grid"
	"github.com/raphaelgruber/wdtable/internal/metrics"
	"github.com/raphaelgruber/wdtable/internal/service"
	"github.com/raphaelgruber/wdtable/internal/snapshot"
	"github.com/raphaelgruber/wdtable/internal/wikidata"
)

// Refresh sinks accepted by Config.RefreshSink.
const (
	SinkSnapshot = "snapshot"
	SinkSurreal  = "surreal"
)

// App holds every long-lived dependency.
type App struct {
	Config   config.Config
	Metrics  *metrics.Collector
	Registry *metrics.Registry
	Client   *wikidata.Client
	Layout   grid.Layout
	Tables   *service.TableService

	db    *db.Client
	store *db.Store
}

// New builds the app. The database is only connected when a configured
// source reads from it.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	// Create metrics collector for runtime statistics
	mc := metrics.NewCollector()
	registry := metrics.NewRegistry()

	layout := grid.DefaultLayout()
	if cfg.LayoutFile != "" {
		var err error
		layout, err = grid.LoadLayout(cfg.LayoutFile)
		if err != nil {
			return nil, err
		}
		slog.Info("layout loaded", "path", cfg.LayoutFile)
	}

	a := &App{
		Config:   cfg,
		Metrics:  mc,
		Registry: registry,
		Layout:   layout,
		Client: wikidata.New(wikidata.Options{
			APIURL:    cfg.APIURL,
			SPARQLURL: cfg.SPARQLURL,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.Timeout,
			CacheTTL:  cfg.CacheTTL,
		}, mc, registry),
	}

	if cfg.ElementSource == service.SourceSurreal || cfg.NuclideSource == service.SourceSurreal {
		if _, err := a.Store(ctx); err != nil {
			return nil, err
		}
	}

	elements, err := service.NewElementSource(cfg.ElementSource, a.deps())
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("element source: %w", err)
	}
	nuclides, err := service.NewNuclideSource(cfg.NuclideSource, a.deps())
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("nuclide source: %w", err)
	}

	a.Tables = service.NewTableService(layout, elements, nuclides, mc, registry)
	return a, nil
}

func (a *App) deps() service.SourceDeps {
	return service.SourceDeps{
		Client:         a.Client,
		Layout:         a.Layout,
		SnapshotPath:   a.Config.SnapshotPath,
		Store:          a.store,
		Metrics:        a.Metrics,
		StrictNuclides: a.Config.StrictNuclides,
	}
}

// Store returns the SurrealDB store, connecting and initializing the schema
// on first use.
func (a *App) Store(ctx context.Context) (*db.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	// Connect to database
	dbCfg := db.Config{
		URL:       a.Config.SurrealDBURL,
		Namespace: a.Config.SurrealDBNamespace,
		Database:  a.Config.SurrealDBDatabase,
		Username:  a.Config.SurrealDBUser,
		Password:  a.Config.SurrealDBPass,
		AuthLevel: a.Config.SurrealDBAuthLevel,
	}
	client, err := db.NewClient(ctx, dbCfg, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// Initialize schema
	if err := client.InitSchema(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	a.db = client
	a.store = db.NewStore(client, a.Metrics)
	return a.store, nil
}

// Upstream returns the Wikidata sources refreshes fetch from: the configured
// element provider when it is a Wikidata one, SPARQL otherwise.
func (a *App) Upstream() (service.ElementSource, service.NuclideSource, error) {
	name := a.Config.ElementSource
	if name != service.SourceSparql && name != service.SourceAPI {
		name = service.SourceSparql
	}
	elements, err := service.NewElementSource(name, a.deps())
	if err != nil {
		return nil, nil, err
	}
	nuclides, err := service.NewNuclideSource(service.SourceSparql, a.deps())
	if err != nil {
		return nil, nil, err
	}
	return elements, nuclides, nil
}

// ErrNoSink is returned by Jobs when no refresh sink is configured.
var ErrNoSink = errors.New("no refresh sink configured")

// Jobs returns a refresh job manager saving into the named sink.
func (a *App) Jobs(ctx context.Context, sink string) (*service.JobManager, error) {
	var s service.Sink
	switch sink {
	case SinkSnapshot:
		s = snapshot.FileSink{Path: a.Config.SnapshotPath}
	case SinkSurreal:
		store, err := a.Store(ctx)
		if err != nil {
			return nil, err
		}
		s = store
	case "":
		return nil, ErrNoSink
	default:
		return nil, fmt.Errorf("unknown refresh sink %q (want snapshot or surreal)", sink)
	}

	elements, nuclides, err := a.Upstream()
	if err != nil {
		return nil, err
	}
	jobs := service.NewJobManager(elements, nuclides, s)
	jobs.Purge = a.Client.Purge
	return jobs, nil
}

// Close closes the database connection, if one was opened.
func (a *App) Close(ctx context.Context) error {
	if a.db != nil {
		return a.db.Close(ctx)
	}
	return nil
}

// WipeData deletes all stored snapshots. Use for testing only.
func (a *App) WipeData(ctx context.Context) error {
	if _, err := a.Store(ctx); err != nil {
		return err
	}
	return a.db.WipeData(ctx)
}
