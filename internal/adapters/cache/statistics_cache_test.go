package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogurasousui/hr-attendance/internal/core/attendance"
)

func newTestCache(t *testing.T, ttl time.Duration) (*StatisticsCache, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStatisticsCache(client, "hr-attendance", ttl), srv
}

func TestStatisticsCache_SetGetInvalidate(t *testing.T) {
	t.Parallel()

	c, srv := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	stats := &attendance.Statistics{
		Total: 5,
		ByStatus: []attendance.StatusCount{
			{Status: attendance.StatusIncomplete, Count: 1},
			{Status: attendance.StatusComplete, Count: 3},
			{Status: attendance.StatusInvalid, Count: 1},
		},
	}
	require.NoError(t, c.Set(ctx, stats, 0))
	assert.True(t, srv.Exists("hr-attendance:time-entries:statistics"))
	assert.Equal(t, time.Minute, srv.TTL("hr-attendance:time-entries:statistics"))

	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, stats, got)

	require.NoError(t, c.Invalidate(ctx))
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatisticsCache_Expires(t *testing.T) {
	t.Parallel()

	c, srv := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &attendance.Statistics{Total: 1, ByStatus: []attendance.StatusCount{{Status: attendance.StatusComplete, Count: 1}}}, 0))
	srv.FastForward(31 * time.Second)

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatisticsCache_ReportsBackendErrors(t *testing.T) {
	t.Parallel()

	c, srv := newTestCache(t, time.Minute)
	srv.SetError("ERR simulated failure")

	_, _, err := c.Get(context.Background())
	assert.Error(t, err)
	_, err = c.Generation(context.Background())
	assert.Error(t, err)
	assert.Error(t, c.Set(context.Background(), &attendance.Statistics{}, 0))
	assert.Error(t, c.Invalidate(context.Background()))
}

func TestStatisticsCache_CorruptPayload(t *testing.T) {
	t.Parallel()

	c, srv := newTestCache(t, time.Minute)
	require.NoError(t, srv.Set("hr-attendance:time-entries:statistics", "{not json"))

	_, ok, err := c.Get(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestStatisticsCache_DiscardsStaleGeneration(t *testing.T) {
	t.Parallel()

	c, srv := newTestCache(t, time.Minute)
	ctx := context.Background()
	stats := &attendance.Statistics{Total: 2, ByStatus: []attendance.StatusCount{{Status: attendance.StatusComplete, Count: 2}}}

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	// 集計中に書き込みがあった場合を再現します。
	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Set(ctx, stats, gen))
	assert.False(t, srv.Exists("hr-attendance:time-entries:statistics"))

	current, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), current)

	require.NoError(t, c.Set(ctx, stats, current))
	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, stats, got)
}
