// internal/services/cache_service.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/autoimport/internal/config"
)

// CacheService keeps fetched listing pages in Redis so that repeated
// imports of one advert within the TTL skip the site. A service built from
// a config without a host caches nothing.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(cfg config.RedisConfig) *CacheService {
	if !cfg.Enabled() {
		return &CacheService{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &CacheService{client: client, ttl: cfg.PageTTL}
}

func (s *CacheService) Enabled() bool {
	return s != nil && s.client != nil
}

func (s *CacheService) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Ping(ctx).Err()
}

// GetPage reports a miss on any Redis failure.
func (s *CacheService) GetPage(ctx context.Context, key string) (string, bool) {
	if !s.Enabled() {
		return "", false
	}

	html, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.WithError(err).WithField("key", key).Warn("Page cache read failed")
		}
		return "", false
	}
	return html, true
}

func (s *CacheService) SetPage(ctx context.Context, key, html string) {
	if !s.Enabled() || html == "" {
		return
	}

	if err := s.client.Set(ctx, key, html, s.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Page cache write failed")
	}
}

func (s *CacheService) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Close()
}
