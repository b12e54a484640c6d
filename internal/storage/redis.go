package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9" // 添加Redis OpenTelemetry钩子包
	"github.com/redis/go-redis/v9"

	"resume-chatbot-go/internal/config"
	"resume-chatbot-go/internal/constants"
)

// Redis wraps the Redis client
type Redis struct {
	Client *redis.Client
	ttl    time.Duration
}

// redisOptions 把配置转成客户端选项，零值交给 go-redis 的默认值
func redisOptions(cfg *config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// 连接池设置
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		// 超时设置
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	}
}

// cacheTTL 缓存过期时间，未配置时 7 天
func cacheTTL(cfg *config.RedisConfig) time.Duration {
	if cfg.CacheTTLHours > 0 {
		return time.Duration(cfg.CacheTTLHours) * time.Hour
	}
	return constants.LLMResponseCacheTTL
}

// NewRedisAdapter creates a new Redis client connection
func NewRedisAdapter(ctx context.Context, cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(redisOptions(cfg))

	// 添加OpenTelemetry钩子, 记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{Client: client, ttl: cacheTTL(cfg)}, nil
}

// LLMResponseKey LLM 结构化结果的缓存键
func LLMResponseKey(hash string) string {
	return constants.KeyLLMResponse + hash
}

// Get 读取缓存的 LLM 回复，不存在时 ok 为 false
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.Client.Get(ctx, LLMResponseKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set 写入 LLM 回复并设置过期时间
func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.Client.Set(ctx, LLMResponseKey(key), value, r.ttl).Err()
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}
