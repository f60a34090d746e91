//go:build integration

package db

import (
	"testing"
	"time"

	"github.com/raphaelgruber/wdtable/internal/metrics"
	"github.com/raphaelgruber/wdtable/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fetchedAt = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func TestInitSchemaIdempotent(t *testing.T) {
	_, ctx := cleanStore(t)

	require.NoError(t, testDB.InitSchema(ctx))

	result, err := testDB.Query(ctx, "INFO FOR DB", nil)
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestSaveLoadElements(t *testing.T) {
	store, ctx := cleanStore(t)

	elements := []*models.Element{
		{ItemID: "Q556", Number: models.Ptr(1), Symbol: models.Ptr("H"), Label: models.Ptr("hydrogen"),
			Period: models.Ptr(1), Group: models.Ptr(1), Classes: []string{"diatomic-nonmetal"}},
		{ItemID: "Q1801", Number: models.Ptr(57), Symbol: models.Ptr("La"), Period: models.Ptr(6), Special: models.Ptr(6)},
		{ItemID: "Q999"},
	}
	require.NoError(t, store.SaveElements(ctx, "en", elements, fetchedAt))

	got, err := store.LoadElements(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, elements, got)

	_, err = store.LoadElements(ctx, "de")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveElementsReplaces(t *testing.T) {
	store, ctx := cleanStore(t)

	first := []*models.Element{
		{ItemID: "Q556", Symbol: models.Ptr("H")},
		{ItemID: "Q560", Symbol: models.Ptr("He")},
	}
	require.NoError(t, store.SaveElements(ctx, "en", first, fetchedAt))
	require.NoError(t, store.SaveElements(ctx, "de", first, fetchedAt))

	second := []*models.Element{{ItemID: "Q560", Symbol: models.Ptr("He"), Number: models.Ptr(2)}}
	require.NoError(t, store.SaveElements(ctx, "en", second, fetchedAt))

	got, err := store.LoadElements(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, second, got)

	// Other languages are untouched
	got, err = store.LoadElements(ctx, "de")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSaveElementsRepeatedItem(t *testing.T) {
	store, ctx := cleanStore(t)

	elements := []*models.Element{
		{ItemID: "Q1", Symbol: models.Ptr("A")},
		{ItemID: "Q1", Symbol: models.Ptr("B")},
	}
	require.NoError(t, store.SaveElements(ctx, "en", elements, fetchedAt))

	got, err := store.LoadElements(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, elements, got)
}

func TestSaveLoadNuclides(t *testing.T) {
	store, ctx := cleanStore(t)
	collector := metrics.NewCollector()
	store.metrics = collector

	nuclides := []*models.Nuclide{
		{ItemID: "Q54389", AtomicNumber: models.Ptr(1), NeutronNumber: models.Ptr(2), Label: models.Ptr("tritium"),
			HalfLife: models.Ptr(3.888e8), DecayModes: []int64{14646001}},
		{ItemID: "Q469568", AtomicNumber: models.Ptr(2), NeutronNumber: models.Ptr(2), Classes: []string{"stable"}},
		{ItemID: "Q2348", AtomicNumber: models.Ptr(0), NeutronNumber: models.Ptr(1), HalfLife: models.Ptr(0.0)},
	}
	require.NoError(t, store.SaveNuclides(ctx, "en", nuclides, fetchedAt))

	got, err := store.Nuclides(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, nuclides, got)

	assert.Equal(t, int64(2), collector.Snapshot().DBQuery.Count)
}

func TestWipeData(t *testing.T) {
	store, ctx := cleanStore(t)

	require.NoError(t, store.SaveNuclides(ctx, "en", []*models.Nuclide{{ItemID: "Q1"}}, fetchedAt))
	require.NoError(t, testDB.WipeData(ctx))

	_, err := store.LoadNuclides(ctx, "en")
	assert.ErrorIs(t, err, ErrNotFound)
}
