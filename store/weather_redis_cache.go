package store

import (
	"booking_service/domain"
	"context"
	"time"

	"github.com/go-redis/redis"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const weatherCacheTTL = 30 * time.Minute

type WeatherRedisCache struct {
	client *redis.Client
	tracer trace.Tracer
	logger *logrus.Logger
}

func NewWeatherRedisCache(client *redis.Client, tracer trace.Tracer, logger *logrus.Logger) domain.WeatherCache {
	return &WeatherRedisCache{
		client: client,
		tracer: tracer,
		logger: logger,
	}
}

func (cache *WeatherRedisCache) PostCacheData(ctx context.Context, key string, value []byte) error {
	_, span := cache.tracer.Start(ctx, "WeatherRedisCache.PostCacheData")
	defer span.End()

	if err := cache.client.Set(key, value, weatherCacheTTL).Err(); err != nil {
		span.SetStatus(codes.Error, "Error posting cached value")
		cache.logger.Errorf("redis set error: %s", err)
		return err
	}
	return nil
}

// GetCachedValue returns redis.Nil when the key is absent.
func (cache *WeatherRedisCache) GetCachedValue(ctx context.Context, key string) ([]byte, error) {
	_, span := cache.tracer.Start(ctx, "WeatherRedisCache.GetCachedValue")
	defer span.End()

	value, err := cache.client.Get(key).Bytes()
	if err != nil {
		if err != redis.Nil {
			span.SetStatus(codes.Error, "Error getting cached value")
			cache.logger.Errorf("redis get error: %s", err)
		}
		return nil, err
	}
	return value, nil
}
