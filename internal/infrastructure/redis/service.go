package redis

import (
	"context"

	"github.com/deepgram/minichat/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Service struct {
	client *redis.Client
}

// NewService connects to REDIS_URL. It returns nil when Redis is not
// configured or unreachable so callers can fall back to memory.
func NewService(ctx context.Context) *Service {
	url := config.GetRedisURL()

	if url == "" {
		log.Debug().Msg("Redis URL not configured - service will be unavailable")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     url,
		Password: config.GetRedisPassword(),
		DB:       config.GetRedisDB(),
	})

	if err := client.Ping(ctx).Err(); err != nil {
		log.Error().
			Err(err).
			Str("addr", url).
			Msg("Failed to establish Redis connection")
		_ = client.Close()
		return nil
	}

	log.Info().Str("addr", url).Msg("Connected to Redis")
	return NewServiceWithClient(client)
}

// NewServiceWithClient wraps an existing client
func NewServiceWithClient(client *redis.Client) *Service {
	return &Service{
		client: client,
	}
}

// Append pushes values onto the tail of a list
func (s *Service) Append(ctx context.Context, key string, values ...interface{}) error {
	if err := s.client.RPush(ctx, key, values...).Err(); err != nil {
		log.Error().
			Err(err).
			Str("key", key).
			Int("count", len(values)).
			Msg("Redis RPUSH operation failed")
		return err
	}
	return nil
}

// List returns every element of a list, oldest first
func (s *Service) List(ctx context.Context, key string) ([]string, error) {
	vals, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		log.Error().
			Err(err).
			Str("key", key).
			Msg("Redis LRANGE operation failed")
		return nil, err
	}
	return vals, nil
}

// Delete removes a key from Redis
func (s *Service) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		log.Error().
			Err(err).
			Str("key", key).
			Msg("Redis DEL operation failed")
		return err
	}
	return nil
}

// Ping checks if Redis is accessible
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *Service) Close() error {
	return s.client.Close()
}
