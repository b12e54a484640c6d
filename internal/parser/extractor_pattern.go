package parser

import (
	"regexp"

	"resume-chatbot-go/internal/types"
)

var (
	nameRegex  = regexp.MustCompile(`[A-Z][a-z]+ [A-Z][a-z]+`)
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+[a-zA-Z]{2,}`)
	phoneRegex = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	// 教育经历取整段匹配；学位后的 [\w\s]+ 是贪婪的，常会多吃进后续内容
	educationRegex = regexp.MustCompile(`(Education|@)\s*(Bachelor|Master|Doctorate|Ph\.?D)[\w\s]+(?:in\s[\w\s]+)?\s*(University|College|Institute)[\w\s]+(?:\s\d{4})?`)
)

// PatternExtractor 基于正则和章节边界的字段提取器。
// 输入应为 Normalize 之后的文本；每个字段独立匹配，失败时填占位值，从不返回错误。
type PatternExtractor struct {
	boundaries []BoundaryMatcher
}

// PatternOption PatternExtractor 配置项
type PatternOption func(*PatternExtractor)

// WithBoundaries 替换章节边界列表，传空列表时保留默认值
func WithBoundaries(boundaries []BoundaryMatcher) PatternOption {
	return func(e *PatternExtractor) {
		if len(boundaries) > 0 {
			e.boundaries = append([]BoundaryMatcher(nil), boundaries...)
		}
	}
}

// NewPatternExtractor 创建提取器
func NewPatternExtractor(opts ...PatternOption) *PatternExtractor {
	e := &PatternExtractor{boundaries: DefaultBoundaries()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Boundaries 当前生效的章节边界
func (e *PatternExtractor) Boundaries() []BoundaryMatcher {
	return append([]BoundaryMatcher(nil), e.boundaries...)
}

// Extract 从规整文本中提取一条记录
func (e *PatternExtractor) Extract(text string) types.Resume {
	r := types.NewEmptyResume()

	if m := nameRegex.FindString(text); m != "" {
		r.Personal.Name = m
	}
	if m := emailRegex.FindString(text); m != "" {
		r.Personal.Email = m
	}
	if m := phoneRegex.FindString(text); m != "" {
		r.Personal.Phone = m
	}
	if m := educationRegex.FindString(text); m != "" {
		r.Education = m
	}

	for _, b := range e.boundaries {
		if section, ok := b.Match(text); ok {
			r.Set(b.Field, section)
		}
	}
	return r
}
