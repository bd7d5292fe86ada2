package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	platformredis "raffle-tool-backend/internal/platform/redis"
)

// CacheService is a thin JSON cache over Redis used for the ticket
// board snapshot and the sold-count quota display.
type CacheService struct {
	redisClient *platformredis.Client
}

func NewCacheService(redisClient *platformredis.Client) *CacheService {
	return &CacheService{redisClient: redisClient}
}

// BoardKey is the cache key for one seller's view of a raffle board.
func BoardKey(raffleID, sellerID string) string {
	return fmt.Sprintf("board:%s:%s", raffleID, sellerID)
}

// SoldCountKey is the cache key for one seller's sold-ticket count.
func SoldCountKey(raffleID, sellerID string) string {
	return fmt.Sprintf("sold_count:%s:%s", raffleID, sellerID)
}

// Get reads a JSON value from the cache.
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.redisClient.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

// Set writes a JSON value into the cache.
func (c *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.redisClient.Set(ctx, key, string(data), ttl).Err()
}

// Delete removes a single key.
func (c *CacheService) Delete(ctx context.Context, key string) error {
	return c.redisClient.Del(ctx, key).Err()
}

// DeletePattern removes every key matching the pattern.
func (c *CacheService) DeletePattern(ctx context.Context, pattern string) error {
	keys, err := c.redisClient.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		return c.redisClient.Del(ctx, keys...).Err()
	}
	return nil
}

// InvalidateBoard drops the cached board and sold count after any
// ticket write for the given seller scope.
func (c *CacheService) InvalidateBoard(ctx context.Context, raffleID, sellerID string) error {
	for _, key := range []string{BoardKey(raffleID, sellerID), SoldCountKey(raffleID, sellerID)} {
		if err := c.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", key, err)
		}
	}
	return nil
}

// InvalidateRaffle drops every cached view of a raffle. The sweep uses
// this because a demoted reservation may surface on any seller's board.
func (c *CacheService) InvalidateRaffle(ctx context.Context, raffleID string) error {
	patterns := []string{
		fmt.Sprintf("board:%s:*", raffleID),
		fmt.Sprintf("sold_count:%s:*", raffleID),
	}
	for _, pattern := range patterns {
		if err := c.DeletePattern(ctx, pattern); err != nil {
			return fmt.Errorf("failed to delete pattern %s: %w", pattern, err)
		}
	}
	return nil
}
