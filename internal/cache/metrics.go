package cache

import (
	"sync/atomic"
	"time"
)

type CacheMetrics struct {
	l1Hits  atomic.Int64
	l2Hits  atomic.Int64
	misses  atomic.Int64
	errors  atomic.Int64
	sets    atomic.Int64
	deletes atomic.Int64
	started time.Time
}

type MetricsSnapshot struct {
	L1Hits    int64   `json:"l1_hits"`
	L2Hits    int64   `json:"l2_hits"`
	Misses    int64   `json:"misses"`
	Errors    int64   `json:"errors"`
	Sets      int64   `json:"sets"`
	Deletes   int64   `json:"deletes"`
	HitRate   float64 `json:"hit_rate"`
	UptimeSec float64 `json:"uptime_seconds"`
}

func NewCacheMetrics() *CacheMetrics {
	return &CacheMetrics{started: time.Now()}
}

func (m *CacheMetrics) RecordL1Hit()  { m.l1Hits.Add(1) }
func (m *CacheMetrics) RecordL2Hit()  { m.l2Hits.Add(1) }
func (m *CacheMetrics) RecordMiss()   { m.misses.Add(1) }
func (m *CacheMetrics) RecordError()  { m.errors.Add(1) }
func (m *CacheMetrics) RecordSet()    { m.sets.Add(1) }
func (m *CacheMetrics) RecordDelete() { m.deletes.Add(1) }

// HitRate is the percentage of reads served by either level.
func (m *CacheMetrics) HitRate() float64 {
	hits := m.l1Hits.Load() + m.l2Hits.Load()
	total := hits + m.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

func (m *CacheMetrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		L1Hits:    m.l1Hits.Load(),
		L2Hits:    m.l2Hits.Load(),
		Misses:    m.misses.Load(),
		Errors:    m.errors.Load(),
		Sets:      m.sets.Load(),
		Deletes:   m.deletes.Load(),
		HitRate:   m.HitRate(),
		UptimeSec: time.Since(m.started).Seconds(),
	}
}
