// Package cache provides Redis-backed caches. Report snapshots are
// compressed with zstd before storage; a finished month's report can be
// a few hundred KB of JSON and compresses well.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"

	"stockpro/internal/domain/reports"
)

// DefaultSnapshotTTL bounds how stale a cached report can be.
const DefaultSnapshotTTL = 5 * time.Minute

// ReportSnapshotCache implements reports.SnapshotCache over Redis.
type ReportSnapshotCache struct {
	client  redis.UniversalClient
	ttl     time.Duration
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

var _ reports.SnapshotCache = (*ReportSnapshotCache)(nil)

// NewReportSnapshotCache creates a snapshot cache. ttl <= 0 uses the
// default.
func NewReportSnapshotCache(client redis.UniversalClient, ttl time.Duration) (*ReportSnapshotCache, error) {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &ReportSnapshotCache{
		client:  client,
		ttl:     ttl,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Get returns the cached statistics, or (nil, nil) on miss. Decode
// failures are treated as misses so a format change never breaks reads.
func (c *ReportSnapshotCache) Get(ctx context.Context, key string) (*reports.Statistics, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	decoded, err := c.decoder.DecodeAll(raw, nil)
	if err != nil {
		return nil, nil
	}

	var stats reports.Statistics
	if err := json.Unmarshal(decoded, &stats); err != nil {
		return nil, nil
	}
	return &stats, nil
}

// Set stores statistics under key with the configured TTL.
func (c *ReportSnapshotCache) Set(ctx context.Context, key string, stats *reports.Statistics) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal statistics: %w", err)
	}

	compressed := c.encoder.EncodeAll(raw, nil)
	if err := c.client.Set(ctx, key, compressed, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate removes cached snapshots matching the company prefix. Call
// after a movement is recorded or reversed so reports reflect the
// change.
func (c *ReportSnapshotCache) Invalidate(ctx context.Context, companyID string) error {
	pattern := fmt.Sprintf("reports:summary:%s:*", companyID)

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan snapshot keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete snapshot keys: %w", err)
	}
	return nil
}
