package redis_test

import (
	"testing"
	"time"

	"github.com/ammar0144/crud4go/pkg/redis"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	t.Parallel()

	m := redis.NewMetrics()
	assert.Equal(t, redis.MetricsSnapshot{}, m.GetSnapshot())

	m.RecordCacheHit()
	m.RecordCacheHit()
	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordGet(10 * time.Millisecond)
	m.RecordGet(30 * time.Millisecond)
	m.RecordInvalidation(4)
	m.RecordInvalidation(0)

	s := m.GetSnapshot()
	assert.InDelta(t, 75.0, s.CacheHitRate, 0.001)
	assert.Equal(t, redis.OpSnapshot{Calls: 2, AvgLatency: 20 * time.Millisecond}, s.Get)
	assert.Equal(t, redis.OpSnapshot{}, s.Set)
	assert.Equal(t, uint64(2), s.InvalidationCount)
	assert.Equal(t, uint64(4), s.InvalidatedKeys)

	m.Reset()
	assert.Equal(t, redis.MetricsSnapshot{}, m.GetSnapshot())
}
