// Package cache stores computed weekly stats in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"foodloss/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyWeekly = "stats:weekly:"

// StatsCache caches weekly stats per user and week in Redis.
type StatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ domain.StatsCache = (*StatsCache)(nil)

// NewStatsCache returns a new StatsCache.
func NewStatsCache(rdb *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{rdb: rdb, ttl: ttl}
}

func weeklyKey(userID int64, weekStart time.Time) string {
	return fmt.Sprintf("%s%d:%s", keyWeekly, userID, weekStart.Format(domain.DayLayout))
}

// GetWeekly returns the cached stats, or nil on a miss.
func (c *StatsCache) GetWeekly(ctx context.Context, userID int64, weekStart time.Time) (*domain.WeeklyStats, error) {
	b, err := c.rdb.Get(ctx, weeklyKey(userID, weekStart)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stats domain.WeeklyStats
	if err := json.Unmarshal(b, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SetWeekly stores the stats for a week.
func (c *StatsCache) SetWeekly(ctx context.Context, userID int64, weekStart time.Time, stats *domain.WeeklyStats) error {
	b, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, weeklyKey(userID, weekStart), b, c.ttl).Err()
}

// InvalidateUser removes every cached week for the user.
func (c *StatsCache) InvalidateUser(ctx context.Context, userID int64) error {
	iter := c.rdb.Scan(ctx, 0, fmt.Sprintf("%s%d:*", keyWeekly, userID), 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Ping reports whether Redis is reachable.
func (c *StatsCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
