package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/logger"
)

var _ domain.Store = (*CachedHabitStore)(nil)

const (
	titlesCacheKey = "habits:titles"
	iconsCacheKey  = "habits:icons"
	cacheTTL       = 30 * time.Minute
)

// CachedHabitStore serves habit titles and icon lookups from Redis and
// forwards everything else to the wrapped store. Any write that can change a
// name or icon drops both keys.
type CachedHabitStore struct {
	domain.Store
	cache *redis.Client
	log   *zap.Logger
}

func NewCachedHabitStore(next domain.Store, cache *redis.Client, log *zap.Logger) *CachedHabitStore {
	return &CachedHabitStore{
		Store: next,
		cache: cache,
		log:   logger.OrNop(log).With(zap.String("component", "habit_cache")),
	}
}

func (r *CachedHabitStore) invalidate(ctx context.Context) {
	if err := r.cache.Del(ctx, titlesCacheKey, iconsCacheKey).Err(); err != nil {
		r.log.Warn("cache_invalidate_failed", zap.Error(err))
	}
}

func (r *CachedHabitStore) ListHabitTitles(ctx context.Context) ([]string, error) {
	val, err := r.cache.Get(ctx, titlesCacheKey).Result()
	if err == nil {
		var titles []string
		if err := json.Unmarshal([]byte(val), &titles); err == nil {
			return titles, nil
		}
		r.log.Warn("cache_corrupted", zap.String("key", titlesCacheKey))
		r.cache.Del(ctx, titlesCacheKey)
	} else if !errors.Is(err, redis.Nil) {
		r.log.Warn("cache_read_failed", zap.Error(err))
	}

	titles, err := r.Store.ListHabitTitles(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(titles); err == nil {
		if setErr := r.cache.Set(ctx, titlesCacheKey, data, cacheTTL).Err(); setErr != nil {
			r.log.Warn("cache_write_failed", zap.Error(setErr))
		}
	}
	return titles, nil
}

func (r *CachedHabitStore) IconByName(ctx context.Context, name string) (string, error) {
	icon, err := r.cache.HGet(ctx, iconsCacheKey, name).Result()
	if err == nil {
		return icon, nil
	}
	if !errors.Is(err, redis.Nil) {
		r.log.Warn("cache_read_failed", zap.Error(err))
	}

	icon, err = r.Store.IconByName(ctx, name)
	if err != nil {
		return "", err
	}

	pipe := r.cache.TxPipeline()
	pipe.HSet(ctx, iconsCacheKey, name, icon)
	pipe.Expire(ctx, iconsCacheKey, cacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Warn("cache_write_failed", zap.Error(err))
	}
	return icon, nil
}

func (r *CachedHabitStore) CreateHabit(ctx context.Context, habit *domain.Habit) error {
	if err := r.Store.CreateHabit(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedHabitStore) UpdateHabit(ctx context.Context, habit *domain.Habit) error {
	if err := r.Store.UpdateHabit(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedHabitStore) DeleteHabit(ctx context.Context, id int64) error {
	if err := r.Store.DeleteHabit(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}
