// Package cache は勤怠集計結果の Redis キャッシュを提供します。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ogurasousui/hr-attendance/internal/core/attendance"
)

const statisticsKeySuffix = "time-entries:statistics"

// setIfCurrent は世代キーが ARGV[2] と一致する場合だけ集計を保存します。ARGV[3] は PX のミリ秒で、0 なら無期限です。
var setIfCurrent = redis.NewScript(`
local gen = redis.call('GET', KEYS[2])
if (gen or '0') ~= ARGV[2] then
  return 0
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

// StatisticsCache は attendance.StatisticsCache の Redis 実装です。
type StatisticsCache struct {
	client        redis.Cmdable
	key           string
	generationKey string
	ttl           time.Duration
}

// NewStatisticsCache は StatisticsCache を生成します。
func NewStatisticsCache(client redis.Cmdable, keyPrefix string, ttl time.Duration) *StatisticsCache {
	key := statisticsKeySuffix
	if keyPrefix != "" {
		key = keyPrefix + ":" + statisticsKeySuffix
	}
	return &StatisticsCache{client: client, key: key, generationKey: key + ":generation", ttl: ttl}
}

type cachedStatistics struct {
	Total    int64         `json:"total"`
	ByStatus []cachedCount `json:"byStatus"`
}

type cachedCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// Get はキャッシュ済みの集計を返します。キーが無い場合は ok=false です。
func (c *StatisticsCache) Get(ctx context.Context) (*attendance.Statistics, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get statistics: %w", err)
	}

	var cached cachedStatistics
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("cache: decode statistics: %w", err)
	}

	stats := &attendance.Statistics{Total: cached.Total, ByStatus: make([]attendance.StatusCount, 0, len(cached.ByStatus))}
	for _, sc := range cached.ByStatus {
		stats.ByStatus = append(stats.ByStatus, attendance.StatusCount{Status: attendance.Status(sc.Status), Count: sc.Count})
	}
	return stats, true, nil
}

// Generation は現在のキャッシュ世代を返します。一度も無効化されていなければ 0 です。
func (c *StatisticsCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache: get statistics generation: %w", err)
	}
	return gen, nil
}

// Set は generation が現在の世代と一致する場合に集計を TTL 付きで保存します。
// 世代が進んでいれば何もせず nil を返します。
func (c *StatisticsCache) Set(ctx context.Context, stats *attendance.Statistics, generation int64) error {
	if stats == nil {
		return nil
	}

	cached := cachedStatistics{Total: stats.Total, ByStatus: make([]cachedCount, 0, len(stats.ByStatus))}
	for _, sc := range stats.ByStatus {
		cached.ByStatus = append(cached.ByStatus, cachedCount{Status: string(sc.Status), Count: sc.Count})
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("cache: encode statistics: %w", err)
	}
	keys := []string{c.key, c.generationKey}
	args := []any{raw, strconv.FormatInt(generation, 10), c.ttl.Milliseconds()}
	if err := setIfCurrent.Run(ctx, c.client, keys, args...).Err(); err != nil {
		return fmt.Errorf("cache: set statistics: %w", err)
	}
	return nil
}

// Invalidate はキャッシュを破棄して世代を進めます。
func (c *StatisticsCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.key)
		pipe.Incr(ctx, c.generationKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache: invalidate statistics: %w", err)
	}
	return nil
}
