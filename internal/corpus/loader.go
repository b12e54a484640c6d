package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"resume-chatbot-go/internal/constants"
	"resume-chatbot-go/internal/parser"
	"resume-chatbot-go/internal/types"
)

// llmEnvelope LLM 模式输出文件的外层结构
type llmEnvelope struct {
	Response string `json:"response"`
}

// LoadOption LoadDir 的配置选项
type LoadOption func(*loader)

type loader struct {
	fallback *parser.PatternExtractor
}

// WithFallbackExtractor LLM 回复中没有 JSON 时用于兜底的模式提取器
func WithFallbackExtractor(e *parser.PatternExtractor) LoadOption {
	return func(l *loader) {
		if e != nil {
			l.fallback = e
		}
	}
}

// LoadDir 从导入阶段的输出目录重建语料。
// 识别 *_extracted_data.json 和 Response*.json 两种文件，按文件名顺序加载；
// 读不了或解析失败的文件记录警告后跳过。
// Response*.json 的回复里没有 JSON 时，对回复文本做模式提取，与导入时一样产出一条记录。
func LoadDir(dir string, logger zerolog.Logger, opts ...LoadOption) (*Corpus, error) {
	l := &loader{fallback: parser.NewPatternExtractor()}
	for _, opt := range opts {
		opt(l)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("读取语料目录 %s 失败: %w", dir, err)
	}

	c := New()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := filepath.Join(dir, name)

		var (
			r       types.Resume
			loadErr error
		)
		switch {
		case strings.HasSuffix(name, constants.PatternOutputSuffix):
			r, loadErr = loadPatternRecord(path)
		case strings.HasPrefix(name, constants.LLMOutputPrefix) && strings.HasSuffix(name, constants.OutputExt):
			r, loadErr = l.loadLLMRecord(path, logger)
		default:
			continue
		}

		if loadErr != nil {
			logger.Warn().Err(loadErr).Str("file", name).Msg("跳过无法加载的结果文件")
			continue
		}
		if r.Source == "" {
			r.Source = name
		}
		c.Append(r)
	}

	logger.Info().Str("dir", dir).Int("records", c.Len()).Msg("语料加载完成")
	return c, nil
}

func loadPatternRecord(path string) (types.Resume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Resume{}, err
	}
	var r types.Resume
	if err := json.Unmarshal(data, &r); err != nil {
		return types.Resume{}, fmt.Errorf("解析 %s 失败: %w", filepath.Base(path), err)
	}
	r.FillMissing()
	return r, nil
}

func (l *loader) loadLLMRecord(path string, logger zerolog.Logger) (types.Resume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Resume{}, err
	}
	var env llmEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return types.Resume{}, fmt.Errorf("解析 %s 失败: %w", filepath.Base(path), err)
	}
	r, err := parser.ParseLLMResume(env.Response)
	if err != nil {
		logger.Debug().Err(err).Str("file", filepath.Base(path)).Msg("回复中没有可解析的JSON，改用模式匹配")
		return l.fallback.Extract(parser.Normalize(env.Response)), nil
	}
	return r, nil
}
