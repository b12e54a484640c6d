package chatbot

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"resume-chatbot-go/internal/parser"
	"resume-chatbot-go/internal/retry"
)

// 实体标签，与常见 NER 标签集一致
const (
	LabelOrg       = "ORG"
	LabelGPE       = "GPE"
	LabelLoc       = "LOC"
	LabelWorkOfArt = "WORK_OF_ART"
	LabelProduct   = "PRODUCT"
)

// Entity 标注出的一段文本
type Entity struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Tagger 命名实体标注，结果按在文本中出现的顺序排列
type Tagger interface {
	Tag(ctx context.Context, text string) ([]Entity, error)
}

// NopTagger 不标注任何实体
type NopTagger struct{}

func (NopTagger) Tag(context.Context, string) ([]Entity, error) { return nil, nil }

type gazetteerTerm struct {
	label string
	lower string
}

// GazetteerTagger 按配置的词表做大小写不敏感的整词匹配
type GazetteerTagger struct {
	terms []gazetteerTerm
}

// NewGazetteerTagger organizations 标为 ORG，locations 标为 GPE，projects 标为 WORK_OF_ART
func NewGazetteerTagger(organizations, locations, projects []string) *GazetteerTagger {
	g := &GazetteerTagger{}
	g.add(LabelOrg, organizations)
	g.add(LabelGPE, locations)
	g.add(LabelWorkOfArt, projects)
	return g
}

func (g *GazetteerTagger) add(label string, words []string) {
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		g.terms = append(g.terms, gazetteerTerm{label: label, lower: strings.ToLower(w)})
	}
}

type span struct {
	start, end int
	label      string
}

// Tag 返回原文中的片段；重叠时保留起点更早、其次更长的那个
func (g *GazetteerTagger) Tag(_ context.Context, text string) ([]Entity, error) {
	lower := strings.ToLower(text)
	// ToLower 可能改变字节长度，此时无法按下标回取原文
	sameLen := len(lower) == len(text)

	var spans []span
	for _, term := range g.terms {
		from := 0
		for {
			idx := strings.Index(lower[from:], term.lower)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(term.lower)
			if isWordBoundary(lower, start, end) {
				spans = append(spans, span{start: start, end: end, label: term.label})
			}
			from = start + 1
		}
	}

	slices.SortStableFunc(spans, func(a, b span) int {
		if a.start != b.start {
			return a.start - b.start
		}
		return (b.end - b.start) - (a.end - a.start)
	})

	var out []Entity
	lastEnd := -1
	for _, s := range spans {
		if s.start < lastEnd {
			continue
		}
		src := lower
		if sameLen {
			src = text
		}
		out = append(out, Entity{Label: s.label, Text: src[s.start:s.end]})
		lastEnd = s.end
	}
	return out, nil
}

func isWordBoundary(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

const defaultTaggerPrompt = `You are a named entity recognizer.
Find organizations (ORG), geopolitical locations (GPE), and works or products such as project names (WORK_OF_ART) in the user's text.
Return ONLY a JSON object of the form {"entities": [{"label": "ORG", "text": "Google"}]} listing entities in the order they appear.
Copy each text exactly as written. Return {"entities": []} when there are none.`

// LLMTagger 用对话模型做实体标注
type LLMTagger struct {
	llmModel model.BaseChatModel
	retrier  *retry.Retrier
	logger   zerolog.Logger
}

// NewLLMTagger retrier 为 nil 时不重试
func NewLLMTagger(llmModel model.BaseChatModel, retrier *retry.Retrier, logger zerolog.Logger) *LLMTagger {
	if retrier == nil {
		retrier = retry.New(retry.Policy{MaxAttempts: 1}, nil)
	}
	return &LLMTagger{llmModel: llmModel, retrier: retrier, logger: logger}
}

// Tag 调用模型并解析 {"entities": [...]}
func (t *LLMTagger) Tag(ctx context.Context, text string) ([]Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	messages := []*schema.Message{
		schema.SystemMessage(defaultTaggerPrompt),
		schema.UserMessage(text),
	}
	res := retry.Do(ctx, t.retrier, func(ctx context.Context) (string, error) {
		resp, err := t.llmModel.Generate(ctx, messages)
		if err != nil {
			return "", err
		}
		if resp == nil {
			return "", fmt.Errorf("LLM returned nil message")
		}
		return resp.Content, nil
	})
	if !res.OK() {
		return nil, fmt.Errorf("实体标注失败 (结局=%s): %w", res.Outcome, res.Err)
	}
	return parseTaggerResponse(res.Value)
}

func parseTaggerResponse(raw string) ([]Entity, error) {
	obj := parser.ExtractJSONObject(raw)
	if obj == "" {
		return nil, fmt.Errorf("实体标注回复中没有JSON")
	}
	var payload struct {
		Entities []Entity `json:"entities"`
	}
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return nil, fmt.Errorf("解析实体标注回复失败: %w", err)
	}
	out := payload.Entities[:0]
	for _, e := range payload.Entities {
		e.Label = strings.ToUpper(strings.TrimSpace(e.Label))
		e.Text = strings.TrimSpace(e.Text)
		if e.Text != "" {
			out = append(out, e)
		}
	}
	return out, nil
}
