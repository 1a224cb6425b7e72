// Package cache keeps a read-through copy of materialized balances in redis.
// The database stays the source of truth: every error here degrades to a
// cache miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GlebRadaev/influmarket/internal/domain"
)

const (
	balancePrefix = "balance:"
	dataField     = "data"
)

// setIfNewer replaces the hash at KEYS[1] unless its turnover (cents) is
// larger than ARGV[1].
var setIfNewer = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'turnover')
if cur and tonumber(cur) > tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'turnover', ARGV[1], 'data', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

// BalanceCache is safe to use with a nil client, in which case it caches
// nothing.
type BalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBalanceCache(client *redis.Client, ttl time.Duration) *BalanceCache {
	return &BalanceCache{client: client, ttl: ttl}
}

func balanceKey(key domain.AccountKey) string {
	return fmt.Sprintf("%s%s:%s", balancePrefix, key.AccountID, key.Kind)
}

func (c *BalanceCache) Get(ctx context.Context, key domain.AccountKey) (*domain.Balance, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.HGet(ctx, balanceKey(key), dataField).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zap.L().Warn("balance cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var b domain.Balance
	if err := json.Unmarshal(raw, &b); err != nil {
		zap.L().Warn("balance cache entry corrupt", zap.String("key", balanceKey(key)), zap.Error(err))
		return nil, false
	}
	return &b, true
}

// Set stores b unless the cached copy has a larger Turnover, so a slow
// reader can not put back a balance that a commit already replaced.
func (c *BalanceCache) Set(ctx context.Context, b *domain.Balance) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(b)
	if err != nil {
		zap.L().Warn("balance cache encode failed", zap.Error(err))
		return
	}
	key := balanceKey(domain.AccountKey{AccountID: b.AccountID, Kind: b.Kind})
	turnover := b.Turnover().Shift(2).IntPart()
	if err := setIfNewer.Run(ctx, c.client, []string{key}, turnover, raw, c.ttl.Milliseconds()).Err(); err != nil {
		zap.L().Warn("balance cache write failed", zap.String("key", key), zap.Error(err))
		// A failed compare must not leave an older copy readable.
		_ = c.client.Del(ctx, key).Err()
	}
}
