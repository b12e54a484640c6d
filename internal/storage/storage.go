// Package storage 导入流水线的可选旁路：MinIO 结果镜像、RabbitMQ 事件、Redis LLM 缓存。
package storage

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"resume-chatbot-go/internal/config"
)

// Storage 存储管理器，聚合所有已启用的旁路依赖，未启用的为 nil
type Storage struct {
	// 对象存储
	MinIO *MinIO

	// 消息队列
	RabbitMQ *RabbitMQ

	// 键值存储
	Redis *Redis
}

// NewStorage 按配置初始化已启用的组件。
// 单个组件初始化失败只记警告并保持为 nil，导入照常进行。
func NewStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *Storage {
	s := &Storage{}
	if cfg == nil {
		return s
	}

	if cfg.MinIO.Enabled {
		m, err := NewMinIO(ctx, &cfg.MinIO, logger.With().Str("component", "minio").Logger())
		if err != nil {
			logger.Warn().Err(err).Msg("初始化MinIO失败，结果不会被镜像")
		} else {
			s.MinIO = m
		}
	}

	if cfg.RabbitMQ.Enabled {
		mq, err := NewRabbitMQ(&cfg.RabbitMQ, logger.With().Str("component", "rabbitmq").Logger())
		if err != nil {
			logger.Warn().Err(err).Msg("初始化RabbitMQ失败，不会发布导入事件")
		} else {
			s.RabbitMQ = mq
		}
	}

	if cfg.Redis.Enabled {
		r, err := NewRedisAdapter(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("初始化Redis失败，LLM结果不会被缓存")
		} else {
			s.Redis = r
		}
	}

	return s
}

// Close 关闭所有连接
func (s *Storage) Close() error {
	var errs []error
	if s.RabbitMQ != nil {
		errs = append(errs, s.RabbitMQ.Close())
	}
	if s.Redis != nil {
		errs = append(errs, s.Redis.Close())
	}
	return errors.Join(errs...)
}
