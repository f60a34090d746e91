// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration

	// Cache metrics (only for upstream operations)
	CacheHits   int64
	CacheMisses int64
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	TotalTimeMs int64   `json:"totalTimeMs"`
	AvgTimeMs   float64 `json:"avgTimeMs"`
	MinTimeMs   int64   `json:"minTimeMs"`
	MaxTimeMs   int64   `json:"maxTimeMs"`

	// Cache stats (nil if not applicable)
	CacheHits    *int64   `json:"cacheHits,omitempty"`
	CacheMisses  *int64   `json:"cacheMisses,omitempty"`
	CacheHitRate *float64 `json:"cacheHitRate,omitempty"`
}

// Snapshot represents the full server statistics at a point in time.
type Snapshot struct {
	UptimeSeconds  float64            `json:"uptimeSeconds"`
	WikidataAPI    *OperationSnapshot `json:"wikidataApi,omitempty"`
	WikidataSPARQL *OperationSnapshot `json:"wikidataSparql,omitempty"`
	SnapshotLoad   *OperationSnapshot `json:"snapshotLoad,omitempty"`
	DBQuery        *OperationSnapshot `json:"dbQuery,omitempty"`
	ElementTable   *OperationSnapshot `json:"elementTable,omitempty"`
	NuclideTable   *OperationSnapshot `json:"nuclideTable,omitempty"`
}

// Operation names for the collector.
const (
	OpWikidataAPI    = "wikidata_api"
	OpWikidataSPARQL = "wikidata_sparql"
	OpSnapshotLoad   = "snapshot_load"
	OpDBQuery        = "db_query"
	OpElementTable   = "element_table"
	OpNuclideTable   = "nuclide_table"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe. A nil *Collector discards everything.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{
			MinTime: time.Duration(math.MaxInt64),
		}
		c.ops[op] = m
	}
	return m
}

// RecordTiming records timing for an operation.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// RecordCache records a cache lookup for an upstream operation.
// Hits are not timed; misses are followed by a RecordTiming of the fetch.
func (c *Collector) RecordCache(op string, hit bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	if hit {
		m.CacheHits++
	} else {
		m.CacheMisses++
	}
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics, includeCache bool) *OperationSnapshot {
	if m == nil || (m.Count == 0 && m.CacheHits == 0) {
		return nil
	}

	snap := &OperationSnapshot{
		Count:       m.Count,
		TotalTimeMs: m.TotalTime.Milliseconds(),
	}
	if m.Count > 0 {
		snap.AvgTimeMs = float64(m.TotalTime.Milliseconds()) / float64(m.Count)
		snap.MinTimeMs = m.MinTime.Milliseconds()
		snap.MaxTimeMs = m.MaxTime.Milliseconds()
	}

	if includeCache && (m.CacheHits > 0 || m.CacheMisses > 0) {
		hits := m.CacheHits
		misses := m.CacheMisses
		rate := float64(hits) / float64(hits+misses)

		snap.CacheHits = &hits
		snap.CacheMisses = &misses
		snap.CacheHitRate = &rate
	}

	return snap
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds:  time.Since(c.startTime).Seconds(),
		WikidataAPI:    snapshotOp(c.ops[OpWikidataAPI], true),
		WikidataSPARQL: snapshotOp(c.ops[OpWikidataSPARQL], true),
		SnapshotLoad:   snapshotOp(c.ops[OpSnapshotLoad], false),
		DBQuery:        snapshotOp(c.ops[OpDBQuery], false),
		ElementTable:   snapshotOp(c.ops[OpElementTable], false),
		NuclideTable:   snapshotOp(c.ops[OpNuclideTable], false),
	}
}
