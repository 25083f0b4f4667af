package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ty-credit-api/internal/dto"
)

type failingCache struct{ memCache }

func (f *failingCache) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("connection refused")
}

func TestCacheServiceRecordsHitsAndMisses(t *testing.T) {
	metrics := NewMetricsService()
	repo := newMemCache()
	svc := NewCacheService(repo, metrics, time.Minute, nil, true)
	key := cohortCacheKey(dto.CohortClassGroup, "cg-1")

	var out dto.CohortSummary
	hit, err := svc.Get(context.Background(), key, &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(context.Background(), key, &dto.CohortSummary{ScopeID: "cg-1"}, 0))
	hit, err = svc.Get(context.Background(), key, &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "cg-1", out.ScopeID)

	assert.Equal(t, 1.0, counterValue(t, metrics.Registry(), "cache_lookups_total", map[string]string{"result": "hit"}))
	assert.Equal(t, 1.0, counterValue(t, metrics.Registry(), "cache_lookups_total", map[string]string{"result": "miss"}))
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	repo := newMemCache()
	svc := NewCacheService(repo, nil, 0, nil, false)

	require.NoError(t, svc.Set(context.Background(), "k", 1, 0))
	assert.Empty(t, repo.items)
	svc.InvalidateCohorts(context.Background())
	assert.Zero(t, repo.invalidated)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	nilSvc.InvalidateCohorts(context.Background())
}

func TestCacheServiceSurfacesBackendErrors(t *testing.T) {
	svc := NewCacheService(&failingCache{memCache: *newMemCache()}, nil, 0, nil, true)
	hit, err := svc.Get(context.Background(), "k", new(int))
	assert.False(t, hit)
	assert.Error(t, err)
}

func TestMetricsServiceDomainCollectors(t *testing.T) {
	metrics := NewMetricsService()
	metrics.RecordBulkFillRow("attendance", "updated")
	metrics.RecordBulkFillRow("attendance", "updated")
	metrics.RecordBulkFillRow("attendance", "failed")
	metrics.ObserveAggregation("batch", 10*time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, metrics.Registry(), "bulk_fill_rows_total", map[string]string{"source": "attendance", "outcome": "updated"}))
	assert.Equal(t, 1.0, counterValue(t, metrics.Registry(), "bulk_fill_rows_total", map[string]string{"source": "attendance", "outcome": "failed"}))

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	var samples uint64
	for _, family := range families {
		if family.GetName() == "credit_aggregation_duration_seconds" {
			for _, m := range family.GetMetric() {
				samples += m.GetHistogram().GetSampleCount()
			}
		}
	}
	assert.Equal(t, uint64(1), samples)

	var nilMetrics *MetricsService
	nilMetrics.RecordBulkFillRow("attendance", "updated")
	nilMetrics.ObserveAggregation("single", time.Second)
}

func counterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metrics:
		for _, m := range family.GetMetric() {
			for _, pair := range m.GetLabel() {
				if labels[pair.GetName()] != pair.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}
