package app

import (
	"context"
	"time"

	"acadport/cmd/internal/auth/session"
	"acadport/cmd/internal/metrics"
)

// instrumentedCache feeds cache operation latencies into the Prometheus
// histogram while delegating to the real cache.
type instrumentedCache struct {
	inner session.Cache
	m     *metrics.Metrics
}

func newInstrumentedCache(inner session.Cache, m *metrics.Metrics) session.Cache {
	return instrumentedCache{inner: inner, m: m}
}

func (c instrumentedCache) Get(ctx context.Context, key string) (string, error) {
	defer c.m.ObserveCacheOp("get", time.Now())
	return c.inner.Get(ctx, key)
}

func (c instrumentedCache) SetTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	defer c.m.ObserveCacheOp("set", time.Now())
	return c.inner.SetTTL(ctx, key, value, ttl)
}

func (c instrumentedCache) Delete(ctx context.Context, keys ...string) error {
	defer c.m.ObserveCacheOp("del", time.Now())
	return c.inner.Delete(ctx, keys...)
}

func (c instrumentedCache) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	defer c.m.ObserveCacheOp("expire", time.Now())
	return c.inner.Expire(ctx, key, ttl)
}
