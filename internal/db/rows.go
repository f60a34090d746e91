package db

import (
	"fmt"
	"time"

	"github.com/raphaelgruber/wdtable/internal/models"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// elementRow is the stored form of an element.
type elementRow struct {
	ID        *surrealmodels.RecordID `json:"id,omitempty"`
	Lang      string                  `json:"lang"`
	Seq       int                     `json:"seq"`
	ItemID    string                  `json:"item_id"`
	Number    *int                    `json:"number,omitempty"`
	Symbol    *string                 `json:"symbol,omitempty"`
	Label     *string                 `json:"label,omitempty"`
	Period    *int                    `json:"period,omitempty"`
	Group     *int                    `json:"group_number,omitempty"`
	Special   *int                    `json:"special,omitempty"`
	Classes   []string                `json:"classes"`
	FetchedAt time.Time               `json:"fetched_at"`
}

// nuclideRow is the stored form of a nuclide.
type nuclideRow struct {
	ID            *surrealmodels.RecordID `json:"id,omitempty"`
	Lang          string                  `json:"lang"`
	Seq           int                     `json:"seq"`
	ItemID        string                  `json:"item_id"`
	AtomicNumber  *int                    `json:"atomic_number,omitempty"`
	NeutronNumber *int                    `json:"neutron_number,omitempty"`
	Label         *string                 `json:"label,omitempty"`
	HalfLife      *float64                `json:"half_life,omitempty"`
	DecayModes    []int64                 `json:"decay_modes"`
	Classes       []string                `json:"classes"`
	FetchedAt     time.Time               `json:"fetched_at"`
}

// upsert pairs a record key with its content.
type upsert[T any] struct {
	Key  string `json:"key"`
	Data T      `json:"data"`
}

// recordKeys returns "<lang>_<item id>" per item. Repeated item ids get a
// "_<n>" suffix, n counting from 2, so no record overwrites another.
func recordKeys(lang string, itemIDs []string) []string {
	seen := make(map[string]int, len(itemIDs))
	keys := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		seen[id]++
		if n := seen[id]; n > 1 {
			keys[i] = fmt.Sprintf("%s_%s_%d", lang, id, n)
		} else {
			keys[i] = lang + "_" + id
		}
	}
	return keys
}

func elementUpserts(lang string, elements []*models.Element, fetchedAt time.Time) []upsert[elementRow] {
	ids := make([]string, len(elements))
	for i, e := range elements {
		ids[i] = e.ItemID
	}
	keys := recordKeys(lang, ids)

	out := make([]upsert[elementRow], len(elements))
	for i, e := range elements {
		out[i] = upsert[elementRow]{Key: keys[i], Data: elementRow{
			Lang:      lang,
			Seq:       i,
			ItemID:    e.ItemID,
			Number:    e.Number,
			Symbol:    e.Symbol,
			Label:     e.Label,
			Period:    e.Period,
			Group:     e.Group,
			Special:   e.Special,
			Classes:   nonNil(e.Classes),
			FetchedAt: fetchedAt.UTC(),
		}}
	}
	return out
}

func nuclideUpserts(lang string, nuclides []*models.Nuclide, fetchedAt time.Time) []upsert[nuclideRow] {
	ids := make([]string, len(nuclides))
	for i, n := range nuclides {
		ids[i] = n.ItemID
	}
	keys := recordKeys(lang, ids)

	out := make([]upsert[nuclideRow], len(nuclides))
	for i, n := range nuclides {
		out[i] = upsert[nuclideRow]{Key: keys[i], Data: nuclideRow{
			Lang:          lang,
			Seq:           i,
			ItemID:        n.ItemID,
			AtomicNumber:  n.AtomicNumber,
			NeutronNumber: n.NeutronNumber,
			Label:         n.Label,
			HalfLife:      n.HalfLife,
			DecayModes:    nonNil(n.DecayModes),
			Classes:       nonNil(n.Classes),
			FetchedAt:     fetchedAt.UTC(),
		}}
	}
	return out
}

func (r elementRow) model() *models.Element {
	return &models.Element{
		ItemID:  r.ItemID,
		Number:  r.Number,
		Symbol:  r.Symbol,
		Label:   r.Label,
		Period:  r.Period,
		Group:   r.Group,
		Special: r.Special,
		Classes: emptyToNil(r.Classes),
	}
}

func (r nuclideRow) model() *models.Nuclide {
	return &models.Nuclide{
		ItemID:        r.ItemID,
		AtomicNumber:  r.AtomicNumber,
		NeutronNumber: r.NeutronNumber,
		Label:         r.Label,
		HalfLife:      r.HalfLife,
		DecayModes:    emptyToNil(r.DecayModes),
		Classes:       emptyToNil(r.Classes),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func emptyToNil[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
