package agent

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog"

	"resume-chatbot-go/internal/config"
)

// NewChatModelFromConfig 按配置创建对话模型，并包一层 QPM 限流
func NewChatModelFromConfig(ctx context.Context, cfg config.LLMConfig, logger zerolog.Logger) (model.BaseChatModel, error) {
	var (
		base model.BaseChatModel
		err  error
	)
	httpClient := &http.Client{Timeout: config.GetDuration(cfg.Timeout, 60*time.Second)}

	switch cfg.Provider {
	case config.ProviderQwen, "":
		base, err = NewQwenChatModel(cfg.Qwen.APIKey, cfg.Qwen.Model, cfg.Qwen.APIURL,
			WithQwenTemperature(cfg.Qwen.Temperature),
			WithQwenHTTPClient(httpClient),
			WithQwenLogger(logger),
		)
	case config.ProviderGemini:
		opts := []GeminiOption{
			WithGeminiTemperature(cfg.Gemini.Temperature),
			WithGeminiHTTPClient(httpClient),
			WithGeminiLogger(logger),
		}
		if cfg.Gemini.BaseURL != "" {
			opts = append(opts, WithGeminiBaseURL(cfg.Gemini.BaseURL))
		}
		base, err = NewGeminiChatModel(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, opts...)
	case config.ProviderMock:
		reply := cfg.Mock.Reply
		if reply == "" {
			reply = "{}"
		}
		base = NewMockChatModel(reply)
	default:
		return nil, fmt.Errorf("不支持的 LLM 提供方: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("初始化 %s 模型失败: %w", cfg.Provider, err)
	}

	qpm := QPMForModel(cfg.ModelQPMLimits, cfg.ModelName(), cfg.QPM)
	logger.Info().Str("provider", cfg.Provider).Str("model", cfg.ModelName()).Int("qpm", qpm).Msg("LLM 模型已就绪")
	return NewRateLimitedChatModel(base, qpm), nil
}
