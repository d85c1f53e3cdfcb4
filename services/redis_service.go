package services

import (
	"context"
	"time"

	"reservas/constants"
	"reservas/models"
	"reservas/repositories"
	"reservas/services/logger"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// GetFromRedis loads key into target. A missing key reports found=false.
func GetFromRedis(ctx context.Context, rdb *redis.Client, key string, target interface{}) (bool, error) {
	cachedData, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(cachedData), target); err != nil {
		return false, err
	}
	return true, nil
}

// SetToRedis stores value as JSON under key
func SetToRedis(ctx context.Context, rdb *redis.Client, key string, value interface{}, ttl time.Duration) error {
	dataJSON, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return rdb.Set(ctx, key, dataJSON, ttl).Err()
}

// DeleteFromRedis removes one key
func DeleteFromRedis(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err()
}

// DeleteKeysByPattern removes every key matching pattern using SCAN
func DeleteKeysByPattern(ctx context.Context, rdb *redis.Client, pattern string) error {
	iter := rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err()
}

// ReservationPage is one cached List result
type ReservationPage struct {
	Items []models.Reservation `json:"items"`
	Total int64                `json:"total"`
}

// ReservationCache caches reservation lists per filter. A nil client disables it.
type ReservationCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewReservationCache(rdb *redis.Client, ttl time.Duration, log logger.Logger) *ReservationCache {
	if log == nil {
		log = logger.Nop()
	}
	return &ReservationCache{rdb: rdb, ttl: ttl, logger: log}
}

// Get fills page from the cache. Redis failures count as a miss.
func (c *ReservationCache) Get(ctx context.Context, f repositories.ReservationFilter, page *ReservationPage) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	found, err := GetFromRedis(ctx, c.rdb, f.Key(), page)
	if err != nil {
		c.logger.Warn("Error reading reservation cache %s: %v", f.Key(), err)
		return false
	}
	return found
}

func (c *ReservationCache) Set(ctx context.Context, f repositories.ReservationFilter, page ReservationPage) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := SetToRedis(ctx, c.rdb, f.Key(), page, c.ttl); err != nil {
		c.logger.Warn("Error writing reservation cache %s: %v", f.Key(), err)
	}
}

// Invalidate drops every cached reservation list
func (c *ReservationCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := DeleteKeysByPattern(ctx, c.rdb, constants.CacheReservationsAll); err != nil {
		c.logger.Warn("Error invalidating reservation cache: %v", err)
	}
}
