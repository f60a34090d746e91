package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordTiming(t *testing.T) {
	c := NewCollector()

	c.RecordTiming(OpElementTable, 10*time.Millisecond)
	c.RecordTiming(OpElementTable, 30*time.Millisecond)

	snap := c.Snapshot()
	require.NotNil(t, snap.ElementTable)
	assert.Equal(t, int64(2), snap.ElementTable.Count)
	assert.Equal(t, int64(40), snap.ElementTable.TotalTimeMs)
	assert.InDelta(t, 20.0, snap.ElementTable.AvgTimeMs, 0.001)
	assert.Equal(t, int64(10), snap.ElementTable.MinTimeMs)
	assert.Equal(t, int64(30), snap.ElementTable.MaxTimeMs)
	assert.Nil(t, snap.ElementTable.CacheHits)
	assert.Nil(t, snap.NuclideTable)
}

func TestCollectorRecordCache(t *testing.T) {
	c := NewCollector()

	c.RecordCache(OpWikidataSPARQL, false)
	c.RecordTiming(OpWikidataSPARQL, 100*time.Millisecond)
	c.RecordCache(OpWikidataSPARQL, true)
	c.RecordCache(OpWikidataSPARQL, true)
	c.RecordCache(OpWikidataSPARQL, true)

	snap := c.Snapshot()
	require.NotNil(t, snap.WikidataSPARQL)
	assert.Equal(t, int64(1), snap.WikidataSPARQL.Count)
	require.NotNil(t, snap.WikidataSPARQL.CacheHits)
	assert.Equal(t, int64(3), *snap.WikidataSPARQL.CacheHits)
	assert.Equal(t, int64(1), *snap.WikidataSPARQL.CacheMisses)
	assert.InDelta(t, 0.75, *snap.WikidataSPARQL.CacheHitRate, 0.001)
}

func TestCollectorOnlyHits(t *testing.T) {
	c := NewCollector()
	c.RecordCache(OpWikidataAPI, true)

	snap := c.Snapshot()
	require.NotNil(t, snap.WikidataAPI)
	assert.Zero(t, snap.WikidataAPI.Count)
	assert.Zero(t, snap.WikidataAPI.MinTimeMs)
}

func TestCollectorNil(t *testing.T) {
	var c *Collector
	c.RecordTiming(OpDBQuery, time.Second)
	c.RecordCache(OpWikidataAPI, true)
	assert.Equal(t, Snapshot{}, c.Snapshot())
}

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordTiming(OpNuclideTable, time.Millisecond)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), c.Snapshot().NuclideTable.Count)
}
