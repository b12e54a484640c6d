package parser

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"resume-chatbot-go/internal/logger"
	"resume-chatbot-go/internal/retry"
	"resume-chatbot-go/internal/tracing"
	"resume-chatbot-go/internal/types"
)

var structurerTracer = otel.Tracer("resume-chatbot-go/parser/llm")

// defaultStructurePrompt 要求模型按固定键返回 JSON，键名与输出文件一致
const defaultStructurePrompt = `You are a resume parsing assistant.
Extract the following information from the resume text provided by the user and return ONLY a JSON object, without any explanation:

{
  "Personal Information": {"Name": "", "Email": "", "Phone": ""},
  "Education History": "",
  "Work Experience": "",
  "Skills": "",
  "Projects": "",
  "Certifications": ""
}

Rules:
- Copy text from the resume; do not invent information.
- Every value is a single string. Join multiple items with ", ".
- Use "Not Provided" when a field cannot be found.`

// ResponseCache LLM 结构化结果的缓存
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// LLMStructurer 调用对话模型把简历文本结构化
type LLMStructurer struct {
	llmModel  model.BaseChatModel
	retrier   *retry.Retrier
	cache     ResponseCache
	prompt    string
	modelName string
	logger    zerolog.Logger
}

// LLMStructurerOption 配置项
type LLMStructurerOption func(*LLMStructurer)

// WithResponseCache 启用结果缓存
func WithResponseCache(c ResponseCache) LLMStructurerOption {
	return func(s *LLMStructurer) { s.cache = c }
}

// WithStructurePrompt 替换系统提示词
func WithStructurePrompt(p string) LLMStructurerOption {
	return func(s *LLMStructurer) {
		if strings.TrimSpace(p) != "" {
			s.prompt = p
		}
	}
}

// WithModelName 模型名，只参与缓存键和日志
func WithModelName(name string) LLMStructurerOption {
	return func(s *LLMStructurer) { s.modelName = name }
}

// WithStructurerLogger 设置日志器
func WithStructurerLogger(l zerolog.Logger) LLMStructurerOption {
	return func(s *LLMStructurer) { s.logger = l }
}

// NewLLMStructurer 创建结构化器；retrier 为 nil 时使用默认策略且所有错误视为致命
func NewLLMStructurer(llmModel model.BaseChatModel, retrier *retry.Retrier, opts ...LLMStructurerOption) *LLMStructurer {
	if retrier == nil {
		retrier = retry.New(retry.DefaultPolicy(), nil)
	}
	s := &LLMStructurer{
		llmModel: llmModel,
		retrier:  retrier,
		prompt:   defaultStructurePrompt,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Structure 把文本交给模型，返回带结局的原始回复。
// 命中缓存时 Attempts 为 0。
func (s *LLMStructurer) Structure(ctx context.Context, text string) retry.Result[string] {
	ctx, span := structurerTracer.Start(ctx, "LLMStructurer.Structure")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", s.modelName),
		attribute.Int("resume.text_length", len(text)),
	)

	key := s.cacheKey(text)
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, key); err != nil {
			l := logger.Ctx(ctx, s.logger)
			l.Warn().Err(err).Msg("读取LLM缓存失败，继续调用模型")
			tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		} else if ok {
			span.SetAttributes(attribute.Bool("llm.cache_hit", true))
			return retry.Result[string]{Value: cached, Outcome: retry.OutcomeSuccess}
		}
	}

	messages := []*einoschema.Message{
		einoschema.SystemMessage(s.prompt),
		einoschema.UserMessage(text),
	}

	res := retry.Do(ctx, s.retrier, func(ctx context.Context) (string, error) {
		resp, err := s.llmModel.Generate(ctx, messages)
		if err != nil {
			return "", err
		}
		if resp == nil {
			return "", fmt.Errorf("LLM returned nil message")
		}
		return resp.Content, nil
	})

	span.SetAttributes(
		attribute.String("llm.outcome", res.Outcome.String()),
		attribute.Int("llm.attempts", res.Attempts),
	)
	if !res.OK() {
		tracing.RecordError(span, res.Err, tracing.ErrorTypeLLM)
		return res
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, res.Value); err != nil {
			l := logger.Ctx(ctx, s.logger)
			l.Warn().Err(err).Msg("写入LLM缓存失败")
			tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		}
	}
	span.SetStatus(codes.Ok, "")
	return res
}

func (s *LLMStructurer) cacheKey(text string) string {
	sum := md5.Sum([]byte(s.modelName + "\x00" + s.prompt + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// ParseLLMResume 从模型回复中解析记录，缺失字段补占位值
func ParseLLMResume(raw string) (types.Resume, error) {
	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return types.Resume{}, fmt.Errorf("无法从LLM响应中提取有效的JSON")
	}

	var r types.Resume
	if err := json.Unmarshal([]byte(jsonStr), &r); err != nil {
		return types.Resume{}, fmt.Errorf("解析JSON失败: %w", err)
	}
	r.FillMissing()
	return r, nil
}

// ExtractJSONObject 从模型回复中取出第一个完整的 JSON 对象，找不到时返回空串
func ExtractJSONObject(text string) string {
	return extractJSON(text)
}

var fencedJSONRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// extractJSON 提取回复中的 JSON 对象，兼容 ```json 代码块和前后夹杂说明文字的情况
func extractJSON(text string) string {
	if m := fencedJSONRegex.FindStringSubmatch(text); len(m) > 1 {
		if obj := balancedObject(m[1]); obj != "" {
			return obj
		}
	}
	return balancedObject(text)
}

// balancedObject 从第一个 '{' 开始找到与之配对的 '}'，字符串内的括号不计数
func balancedObject(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	level := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			level++
		case '}':
			level--
			if level == 0 {
				return strings.TrimSpace(text[start : i+1])
			}
		}
	}
	return ""
}
