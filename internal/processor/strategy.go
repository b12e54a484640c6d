package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"resume-chatbot-go/internal/config"
	"resume-chatbot-go/internal/constants"
	"resume-chatbot-go/internal/logger"
	"resume-chatbot-go/internal/parser"
	"resume-chatbot-go/internal/retry"
	"resume-chatbot-go/internal/types"
)

// Structured 一份文本经结构化后的结果
type Structured struct {
	Resume   types.Resume
	Raw      string // LLM 原始回复，模式匹配时为空
	Attempts int
	Outcome  retry.Outcome
}

// Strategy 把规范化文本变成记录，并决定结果文件的名字和内容
type Strategy interface {
	Name() string
	Structure(ctx context.Context, text string) (Structured, error)
	// OutputName seq 为本次运行中成功结构化的序号，从 1 开始
	OutputName(sourcePath string, seq int) string
	Payload(s Structured) any
}

// PatternStrategy 基于正则和章节边界的提取
type PatternStrategy struct {
	extractor *parser.PatternExtractor
}

// NewPatternStrategy extractor 为 nil 时使用默认边界
func NewPatternStrategy(extractor *parser.PatternExtractor) *PatternStrategy {
	if extractor == nil {
		extractor = parser.NewPatternExtractor()
	}
	return &PatternStrategy{extractor: extractor}
}

func (s *PatternStrategy) Name() string { return config.StrategyPattern }

// Structure 从不返回错误，缺失字段为占位值
func (s *PatternStrategy) Structure(_ context.Context, text string) (Structured, error) {
	return Structured{
		Resume:   s.extractor.Extract(text),
		Attempts: 1,
		Outcome:  retry.OutcomeSuccess,
	}, nil
}

// OutputName <文件名去扩展名>_extracted_data.json
func (s *PatternStrategy) OutputName(sourcePath string, _ int) string {
	base := filepath.Base(sourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + constants.PatternOutputSuffix
}

func (s *PatternStrategy) Payload(st Structured) any {
	r := st.Resume
	r.Source = ""
	return r
}

// LLMResponse LLM 模式结果文件的结构
type LLMResponse struct {
	Response string `json:"response"`
}

// LLMStrategy 由对话模型结构化，模型回复无法解析时退回模式匹配生成语料记录
type LLMStrategy struct {
	structurer *parser.LLMStructurer
	fallback   *parser.PatternExtractor
	logger     zerolog.Logger
}

// NewLLMStrategy 创建 LLM 策略
func NewLLMStrategy(structurer *parser.LLMStructurer, fallback *parser.PatternExtractor, logger zerolog.Logger) *LLMStrategy {
	if fallback == nil {
		fallback = parser.NewPatternExtractor()
	}
	return &LLMStrategy{structurer: structurer, fallback: fallback, logger: logger}
}

func (s *LLMStrategy) Name() string { return config.StrategyLLM }

// Structure 重试耗尽或遇到致命错误时没有结果，返回错误
func (s *LLMStrategy) Structure(ctx context.Context, text string) (Structured, error) {
	res := s.structurer.Structure(ctx, text)
	if !res.OK() {
		detail := fmt.Sprintf("LLM调用结局=%s, 尝试次数=%d", res.Outcome, res.Attempts)
		return Structured{Attempts: res.Attempts, Outcome: res.Outcome}, fmt.Errorf("%s: %w", detail, res.Err)
	}

	record, err := parser.ParseLLMResume(res.Value)
	if err != nil {
		l := logger.Ctx(ctx, s.logger)
		l.Warn().Err(err).Msg("LLM回复中没有可解析的JSON，语料记录改用模式匹配")
		record = s.fallback.Extract(text)
	}

	return Structured{
		Resume:   record,
		Raw:      res.Value,
		Attempts: res.Attempts,
		Outcome:  res.Outcome,
	}, nil
}

// OutputName Response<seq>.json
func (s *LLMStrategy) OutputName(_ string, seq int) string {
	return constants.LLMOutputPrefix + strconv.Itoa(seq) + constants.OutputExt
}

func (s *LLMStrategy) Payload(st Structured) any {
	return LLMResponse{Response: st.Raw}
}
