package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"
)

// defaultQPM 未配置时的每分钟请求数
const defaultQPM = 30

// RateLimitedChatModel 对模型调用做 QPM 限流的代理。
// 只负责排队等待令牌，重试交给调用方的 retry 策略。
type RateLimitedChatModel struct {
	original model.BaseChatModel
	limiter  *rate.Limiter
}

// NewRateLimitedChatModel 创建限流代理；突发容量为 QPM 的一半（至少 1）
func NewRateLimitedChatModel(original model.BaseChatModel, qpm int) *RateLimitedChatModel {
	if qpm <= 0 {
		qpm = defaultQPM
	}
	burst := qpm / 2
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedChatModel{
		original: original,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(qpm)), burst),
	}
}

// Generate 等到令牌后再调用
func (rl *RateLimitedChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	if err := rl.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("等待限流令牌失败: %w", err)
	}
	return rl.original.Generate(ctx, messages, options...)
}

// Stream 等到令牌后再调用
func (rl *RateLimitedChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	if err := rl.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("等待限流令牌失败: %w", err)
	}
	return rl.original.Stream(ctx, messages, options...)
}

// QPMForModel 从按模型配置的 QPM 表中取值，取配置值的 90% 作为安全余量；未配置时返回 fallback
func QPMForModel(limits map[string]int, modelName string, fallback int) int {
	if limits != nil {
		if q, ok := limits[modelName]; ok && q > 0 {
			safe := int(float64(q) * 0.9)
			if safe < 1 {
				safe = 1
			}
			return safe
		}
	}
	if fallback <= 0 {
		return defaultQPM
	}
	return fallback
}

var _ model.BaseChatModel = (*RateLimitedChatModel)(nil)
