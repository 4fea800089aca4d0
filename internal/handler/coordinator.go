package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Coordinator 保存多个 api 实例之间需要共享的短期状态
type Coordinator interface {
	// AcquireLineupLock 返回 false 表示该比赛正在被其它请求排阵
	AcquireLineupLock(ctx context.Context, gameID int64, ttl time.Duration) (bool, error)
	ReleaseLineupLock(ctx context.Context, gameID int64) error
	RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error
	IsSessionRevoked(ctx context.Context, sessionID string) (bool, error)
}

type RedisCoordinator struct {
	rdb *redis.Client
}

func NewRedisCoordinator(rdb *redis.Client) *RedisCoordinator {
	return &RedisCoordinator{rdb: rdb}
}

func lineupLockKey(gameID int64) string {
	return fmt.Sprintf("lineup_generating_%d", gameID)
}

func revokedSessionKey(sessionID string) string {
	return fmt.Sprintf("session_revoked_%s", sessionID)
}

func (c *RedisCoordinator) AcquireLineupLock(ctx context.Context, gameID int64, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, lineupLockKey(gameID), time.Now().Unix(), ttl).Result()
}

func (c *RedisCoordinator) ReleaseLineupLock(ctx context.Context, gameID int64) error {
	return c.rdb.Del(ctx, lineupLockKey(gameID)).Err()
}

func (c *RedisCoordinator) RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		// 令牌已经过期，无需记录
		return nil
	}
	return c.rdb.Set(ctx, revokedSessionKey(sessionID), 1, ttl).Err()
}

func (c *RedisCoordinator) IsSessionRevoked(ctx context.Context, sessionID string) (bool, error) {
	err := c.rdb.Get(ctx, revokedSessionKey(sessionID)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}
