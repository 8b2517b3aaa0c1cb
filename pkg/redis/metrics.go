package redis

import (
	"sync/atomic"
	"time"
)

// opStats counts calls of one cache command and their total latency
type opStats struct {
	calls atomic.Uint64
	nanos atomic.Uint64
}

func (s *opStats) record(d time.Duration) {
	s.calls.Add(1)
	s.nanos.Add(uint64(d.Nanoseconds()))
}

func (s *opStats) snapshot() OpSnapshot {
	calls := s.calls.Load()
	if calls == 0 {
		return OpSnapshot{}
	}
	return OpSnapshot{Calls: calls, AvgLatency: time.Duration(s.nanos.Load() / calls)}
}

func (s *opStats) reset() {
	s.calls.Store(0)
	s.nanos.Store(0)
}

// Metrics counts lookups, command latencies and invalidations of one Manager.
// All methods are safe for concurrent use.
type Metrics struct {
	hits   atomic.Uint64
	misses atomic.Uint64
	errors atomic.Uint64

	get, set, del opStats

	// sweeps counts InvalidatePattern and InvalidateDependents calls, keys what they removed
	sweeps atomic.Uint64
	keys   atomic.Uint64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordCacheHit()   { m.hits.Add(1) }
func (m *Metrics) RecordCacheMiss()  { m.misses.Add(1) }
func (m *Metrics) RecordCacheError() { m.errors.Add(1) }

func (m *Metrics) RecordGet(d time.Duration)    { m.get.record(d) }
func (m *Metrics) RecordSet(d time.Duration)    { m.set.record(d) }
func (m *Metrics) RecordDelete(d time.Duration) { m.del.record(d) }

// RecordInvalidation counts one sweep and the keys it removed
func (m *Metrics) RecordInvalidation(keys int) {
	m.sweeps.Add(1)
	m.keys.Add(uint64(keys))
}

// GetSnapshot returns the counters as of now. Counters are read one by one,
// so a snapshot taken under load is not atomic across fields.
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		CacheHits:         m.hits.Load(),
		CacheMisses:       m.misses.Load(),
		CacheErrors:       m.errors.Load(),
		Get:               m.get.snapshot(),
		Set:               m.set.snapshot(),
		Delete:            m.del.snapshot(),
		InvalidationCount: m.sweeps.Load(),
		InvalidatedKeys:   m.keys.Load(),
	}
	if lookups := s.CacheHits + s.CacheMisses; lookups > 0 {
		s.CacheHitRate = float64(s.CacheHits) / float64(lookups) * 100
	}
	return s
}

func (m *Metrics) Reset() {
	for _, c := range []*atomic.Uint64{&m.hits, &m.misses, &m.errors, &m.sweeps, &m.keys} {
		c.Store(0)
	}
	m.get.reset()
	m.set.reset()
	m.del.reset()
}

// OpSnapshot summarizes one cache command
type OpSnapshot struct {
	Calls      uint64
	AvgLatency time.Duration
}

// MetricsSnapshot is a point-in-time copy of Metrics
type MetricsSnapshot struct {
	CacheHits    uint64
	CacheMisses  uint64
	CacheErrors  uint64
	CacheHitRate float64 // percent of lookups that hit

	Get, Set, Delete OpSnapshot

	InvalidationCount uint64
	InvalidatedKeys   uint64
}
