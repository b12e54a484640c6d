package agent

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const defaultGeminiModelName = "gemini-2.5-flash"

// GeminiChatModel 通过 google.golang.org/genai 调用 Gemini，
// 对外暴露与其他模型一致的 eino BaseChatModel 接口
type GeminiChatModel struct {
	client      *genai.Client
	modelName   string
	temperature *float32
	logger      zerolog.Logger
}

// GeminiOption 配置项
type GeminiOption func(*geminiSettings)

type geminiSettings struct {
	baseURL     string
	httpClient  *http.Client
	temperature *float32
	logger      zerolog.Logger
}

// WithGeminiBaseURL 指定接口地址（测试或代理时使用）
func WithGeminiBaseURL(u string) GeminiOption {
	return func(s *geminiSettings) { s.baseURL = u }
}

// WithGeminiHTTPClient 替换 HTTP 客户端
func WithGeminiHTTPClient(c *http.Client) GeminiOption {
	return func(s *geminiSettings) { s.httpClient = c }
}

// WithGeminiTemperature 设置采样温度
func WithGeminiTemperature(t float32) GeminiOption {
	return func(s *geminiSettings) { s.temperature = &t }
}

// WithGeminiLogger 设置日志器
func WithGeminiLogger(l zerolog.Logger) GeminiOption {
	return func(s *geminiSettings) { s.logger = l }
}

// NewGeminiChatModel 创建 Gemini 模型
func NewGeminiChatModel(ctx context.Context, apiKey, modelName string, opts ...GeminiOption) (*GeminiChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = defaultGeminiModelName
	}

	settings := geminiSettings{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&settings)
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: settings.httpClient,
	}
	if settings.baseURL != "" {
		cc.HTTPOptions.BaseURL = settings.baseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("创建 Gemini 客户端失败: %w", err)
	}

	return &GeminiChatModel{
		client:      client,
		modelName:   modelName,
		temperature: settings.temperature,
		logger:      settings.logger,
	}, nil
}

// ModelName 实际使用的模型
func (g *GeminiChatModel) ModelName() string {
	return g.modelName
}

// Generate 实现 model.BaseChatModel。
// system 消息合并为 SystemInstruction，assistant 消息映射为 model 角色。
func (g *GeminiChatModel) Generate(ctx context.Context, messages []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	contents, system := toGeminiContents(messages)
	if len(contents) == 0 {
		return nil, fmt.Errorf("没有可发送的消息")
	}

	cfg := &genai.GenerateContentConfig{Temperature: g.temperature}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	g.logger.Debug().Str("model", g.modelName).Int("contents", len(contents)).Msg("发送 Gemini 请求")

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return nil, err
	}
	text := resp.Text()
	g.logger.Debug().Str("model", g.modelName).Int("chars", len(text)).Msg("收到 Gemini 响应")

	return schema.AssistantMessage(text, nil), nil
}

// Stream 未实现
func (g *GeminiChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("GeminiChatModel 的 Stream 方法未实现")
}

func toGeminiContents(messages []*schema.Message) ([]*genai.Content, string) {
	var systemParts []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		if m == nil {
			continue
		}
		switch m.Role {
		case schema.System:
			systemParts = append(systemParts, m.Content)
		case schema.Assistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return contents, strings.Join(systemParts, "\n\n")
}

var _ model.BaseChatModel = (*GeminiChatModel)(nil)
