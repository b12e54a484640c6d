package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"resume-chatbot-go/internal/config"
	"resume-chatbot-go/internal/constants"
)

// RabbitMQ 发布导入完成事件
type RabbitMQ struct {
	conn         *amqp.Connection
	ch           *amqp.Channel
	exchange     string
	routingKey   string
	publishMutex sync.Mutex // 保护发布操作
	logger       zerolog.Logger
}

// NewRabbitMQ 创建RabbitMQ客户端并声明交换机
func NewRabbitMQ(cfg *config.RabbitMQConfig, logger zerolog.Logger) (*RabbitMQ, error) {
	if cfg == nil {
		return nil, fmt.Errorf("RabbitMQ配置不能为空")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("RabbitMQ URL配置不能为空")
	}

	exchange, routingKey := exchangeAndKey(cfg)

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("无法连接到RabbitMQ服务器: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("无法创建RabbitMQ通道: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // exchange名称
		"topic",  // exchange类型
		true,     // 持久化
		false,    // 自动删除
		false,    // 内部专用
		false,    // 非阻塞
		nil,      // 参数
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("声明exchange失败: %w", err)
	}

	logger.Info().Str("exchange", exchange).Str("routing_key", routingKey).Msg("成功连接到RabbitMQ服务器")
	return &RabbitMQ{
		conn:       conn,
		ch:         ch,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}, nil
}

// exchangeAndKey 未配置时使用默认交换机和路由键
func exchangeAndKey(cfg *config.RabbitMQConfig) (string, string) {
	exchange := cfg.Exchange
	if exchange == "" {
		exchange = constants.DefaultExtractedExchange
	}
	key := cfg.RoutingKey
	if key == "" {
		key = constants.DefaultExtractedRoutingKey
	}
	return exchange, key
}

// PublishExtracted 发布一条持久化的 JSON 事件
func (r *RabbitMQ) PublishExtracted(ctx context.Context, msg ResumeExtractedMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("JSON序列化失败: %w", err)
	}

	r.publishMutex.Lock()
	defer r.publishMutex.Unlock()

	return r.ch.PublishWithContext(
		ctx,
		r.exchange,   // exchange名
		r.routingKey, // 路由键
		false,        // 强制
		false,        // 立即
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
			MessageId:    msg.RunID + "/" + msg.OutputFile,
		},
	)
}

// Close 关闭通道和连接
func (r *RabbitMQ) Close() error {
	if r.ch != nil {
		r.ch.Close()
	}
	return r.conn.Close()
}
