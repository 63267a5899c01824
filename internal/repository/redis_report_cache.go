package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"TrendLab/internal/domain/models"
	"TrendLab/internal/domain/repository"
	"TrendLab/pkg/cache"
)

// RedisReportCache caches the latest validation report per symbol in Redis.
type RedisReportCache struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewRedisReportCache creates a Redis-backed report cache.
func NewRedisReportCache(c *cache.RedisCache, ttl time.Duration) repository.ReportCache {
	return &RedisReportCache{cache: c, ttl: ttl}
}

func reportKey(symbol string) string {
	return fmt.Sprintf("report:%s", symbol)
}

func (r *RedisReportCache) SetReport(ctx context.Context, report *models.ValidationReport) error {
	if report == nil {
		return fmt.Errorf("cache report: nil report")
	}
	return r.cache.Set(ctx, reportKey(report.Symbol), report, r.ttl)
}

func (r *RedisReportCache) GetReport(ctx context.Context, symbol string) (*models.ValidationReport, error) {
	var report models.ValidationReport
	if err := r.cache.Get(ctx, reportKey(symbol), &report); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, repository.ErrCacheMiss
		}
		return nil, err
	}
	return &report, nil
}

func (r *RedisReportCache) Close() error {
	return r.cache.Close()
}

// MemoryReportCache is the in-process fallback when Redis is disabled.
type MemoryReportCache struct {
	mu      sync.RWMutex
	reports map[string]*models.ValidationReport
}

// NewMemoryReportCache creates an in-memory report cache.
func NewMemoryReportCache() *MemoryReportCache {
	return &MemoryReportCache{reports: make(map[string]*models.ValidationReport)}
}

func (m *MemoryReportCache) SetReport(_ context.Context, report *models.ValidationReport) error {
	if report == nil {
		return fmt.Errorf("cache report: nil report")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[report.Symbol] = report
	return nil
}

func (m *MemoryReportCache) GetReport(_ context.Context, symbol string) (*models.ValidationReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	report, ok := m.reports[symbol]
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return report, nil
}

func (m *MemoryReportCache) Close() error { return nil }

var _ repository.ReportCache = (*MemoryReportCache)(nil)
