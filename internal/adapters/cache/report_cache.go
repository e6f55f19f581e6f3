package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/temple_ledger/internal/core/ports/repositories"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const reportKeyFmt = "ledger:chain-report:%s"

// RedisReportCache shares the last chain report between server instances and ledgerctl.
type RedisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ portsrepo.ChainReportCache = (*RedisReportCache)(nil)

// NewRedisReportCache connects to url (redis://...) and pings it.
func NewRedisReportCache(ctx context.Context, url string, ttl time.Duration) (*RedisReportCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisReportCache{client: client, ttl: ttl}, nil
}

func (r *RedisReportCache) GetReport(ctx context.Context, templeID string) (*domain.ChainReport, error) {
	data, err := r.client.Get(ctx, fmt.Sprintf(reportKeyFmt, templeID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to read chain report from redis", err)
	}
	var report domain.ChainReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, apperrors.NewAppError(500, "corrupt chain report in redis", err)
	}
	return &report, nil
}

func (r *RedisReportCache) PutReport(ctx context.Context, report domain.ChainReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, fmt.Sprintf(reportKeyFmt, report.TempleID), data, r.ttl).Err()
}

// Close releases the connection pool.
func (r *RedisReportCache) Close() error {
	return r.client.Close()
}

// MemoryReportCache is the single-instance fallback used when no redis is configured.
type MemoryReportCache struct {
	c *gocache.Cache
}

var _ portsrepo.ChainReportCache = (*MemoryReportCache)(nil)

func NewMemoryReportCache(ttl time.Duration) *MemoryReportCache {
	return &MemoryReportCache{c: gocache.New(ttl, 2*ttl)}
}

func (m *MemoryReportCache) GetReport(_ context.Context, templeID string) (*domain.ChainReport, error) {
	v, ok := m.c.Get(templeID)
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	report := v.(domain.ChainReport)
	return &report, nil
}

func (m *MemoryReportCache) PutReport(_ context.Context, report domain.ChainReport) error {
	m.c.SetDefault(report.TempleID, report)
	return nil
}
