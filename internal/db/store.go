package db

import (
	"context"
	"fmt"
	"time"

	"github.com/raphaelgruber/wdtable/internal/metrics"
	"github.com/raphaelgruber/wdtable/internal/models"
	"github.com/raphaelgruber/wdtable/internal/snapshot"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Store saves and loads per-language snapshots of elements and nuclides.
// It serves as an element and nuclide source.
type Store struct {
	client  *Client
	metrics *metrics.Collector
}

// NewStore creates a snapshot store. collector may be nil.
func NewStore(client *Client, collector *metrics.Collector) *Store {
	return &Store{client: client, metrics: collector}
}

// replaceSQL upserts the given rows and drops rows of the same language
// that are no longer part of the snapshot, in one transaction.
const replaceSQL = `
	BEGIN TRANSACTION;
	DELETE type::table($table) WHERE lang = $lang AND id NOTINSIDE $ids;
	FOR $row IN $rows {
		UPSERT type::record($table, $row.key) CONTENT $row.data;
	};
	COMMIT TRANSACTION;
`

// SaveElements replaces the stored elements of lang.
func (s *Store) SaveElements(ctx context.Context, lang string, elements []*models.Element, fetchedAt time.Time) error {
	rows := elementUpserts(lang, elements, fetchedAt)
	ids := make([]surrealmodels.RecordID, len(rows))
	for i, r := range rows {
		ids[i] = surrealmodels.NewRecordID(TableElement, r.Key)
	}

	if err := s.replace(ctx, TableElement, lang, ids, rows); err != nil {
		return fmt.Errorf("save elements: %w", err)
	}
	return nil
}

// SaveNuclides replaces the stored nuclides of lang.
func (s *Store) SaveNuclides(ctx context.Context, lang string, nuclides []*models.Nuclide, fetchedAt time.Time) error {
	rows := nuclideUpserts(lang, nuclides, fetchedAt)
	ids := make([]surrealmodels.RecordID, len(rows))
	for i, r := range rows {
		ids[i] = surrealmodels.NewRecordID(TableNuclide, r.Key)
	}

	if err := s.replace(ctx, TableNuclide, lang, ids, rows); err != nil {
		return fmt.Errorf("save nuclides: %w", err)
	}
	return nil
}

func (s *Store) replace(ctx context.Context, table, lang string, ids []surrealmodels.RecordID, rows any) error {
	defer s.timed()()
	_, err := surrealdb.Query[any](ctx, s.client.db, replaceSQL, map[string]any{
		"table": table,
		"lang":  lang,
		"ids":   ids,
		"rows":  rows,
	})
	return wrapQueryError(err)
}

// LoadElements returns the stored elements of lang in saved order.
// Returns ErrNotFound when nothing is stored for lang.
func (s *Store) LoadElements(ctx context.Context, lang string) ([]*models.Element, error) {
	rows, err := load[elementRow](ctx, s, TableElement, lang)
	if err != nil {
		return nil, fmt.Errorf("load elements: %w", err)
	}
	out := make([]*models.Element, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out, nil
}

// LoadNuclides returns the stored nuclides of lang in saved order.
// Returns ErrNotFound when nothing is stored for lang.
func (s *Store) LoadNuclides(ctx context.Context, lang string) ([]*models.Nuclide, error) {
	rows, err := load[nuclideRow](ctx, s, TableNuclide, lang)
	if err != nil {
		return nil, fmt.Errorf("load nuclides: %w", err)
	}
	out := make([]*models.Nuclide, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out, nil
}

func load[T any](ctx context.Context, s *Store, table, lang string) ([]T, error) {
	defer s.timed()()
	results, err := surrealdb.Query[[]T](ctx, s.client.db, `
		SELECT * FROM type::table($table) WHERE lang = $lang ORDER BY seq
	`, map[string]any{"table": table, "lang": lang})
	if err != nil {
		return nil, wrapQueryError(err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, table, lang)
	}
	return (*results)[0].Result, nil
}

// Elements implements the element source interface.
func (s *Store) Elements(ctx context.Context, lang string) ([]*models.Element, error) {
	return s.LoadElements(ctx, lang)
}

// Nuclides implements the nuclide source interface.
func (s *Store) Nuclides(ctx context.Context, lang string) ([]*models.Nuclide, error) {
	return s.LoadNuclides(ctx, lang)
}

// timed records a db_query timing when the returned func runs.
func (s *Store) timed() func() {
	start := time.Now()
	return func() { s.metrics.RecordTiming(metrics.OpDBQuery, time.Since(start)) }
}

// Save replaces both stored record sets of the snapshot's language.
func (s *Store) Save(ctx context.Context, f *snapshot.File) error {
	if err := s.SaveElements(ctx, f.Lang, f.Elements, f.FetchedAt); err != nil {
		return err
	}
	return s.SaveNuclides(ctx, f.Lang, f.Nuclides, f.FetchedAt)
}
