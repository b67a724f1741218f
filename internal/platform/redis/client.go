// Package redis は統計キャッシュ用 Redis クライアントの生成を担います。
package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ogurasousui/hr-attendance/internal/platform/config"
)

// NewClient は設定から Redis クライアントを生成します。Addr が空の場合は nil を返します。
func NewClient(cfg config.RedisConfig) *goredis.Client {
	if cfg.Addr == "" {
		return nil
	}
	return goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// Healthy は Redis への疎通を確認します。
func Healthy(ctx context.Context, client *goredis.Client) error {
	return client.Ping(ctx).Err()
}
