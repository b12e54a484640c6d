// Package chatbot 简历问答：意图识别、实体抽取、会话上下文和按意图分派的回答。
package chatbot

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"resume-chatbot-go/internal/logger"
)

// Intent 查询意图
type Intent int

const (
	IntentUnknown Intent = iota
	IntentSkills
	IntentEducation
	IntentExperience
	IntentJobRequirement
)

func (i Intent) String() string {
	switch i {
	case IntentSkills:
		return "skills"
	case IntentEducation:
		return "education"
	case IntentExperience:
		return "experience"
	case IntentJobRequirement:
		return "job_requirement"
	default:
		return "unknown"
	}
}

// intentTriggers 按优先级排列，第一个命中的生效
var intentTriggers = []struct {
	phrase string
	intent Intent
}{
	{"skills", IntentSkills},
	{"education", IntentEducation},
	{"experience", IntentExperience},
	{"job requirement", IntentJobRequirement},
}

// ClassifyIntent 对小写后的查询做子串判断
func ClassifyIntent(query string) Intent {
	q := strings.ToLower(query)
	for _, t := range intentTriggers {
		if strings.Contains(q, t.phrase) {
			return t.intent
		}
	}
	return IntentUnknown
}

// 实体类别
const (
	EntityOrganization = "organization"
	EntityLocation     = "location"
	EntityProject      = "project"
)

// EntityMap 类别到本次查询中最后出现的片段
type EntityMap map[string]string

// categoryForLabel 标签到类别，不关心的标签返回空串
func categoryForLabel(label string) string {
	switch label {
	case LabelOrg:
		return EntityOrganization
	case LabelGPE, LabelLoc:
		return EntityLocation
	case LabelWorkOfArt, LabelProduct:
		return EntityProject
	}
	return ""
}

// Analyzer 查询分析，本身不做 NLP，实体全部交给 Tagger
type Analyzer struct {
	tagger Tagger
	logger zerolog.Logger
}

// NewAnalyzer tagger 为 nil 时不抽取实体
func NewAnalyzer(tagger Tagger, logger zerolog.Logger) *Analyzer {
	if tagger == nil {
		tagger = NopTagger{}
	}
	return &Analyzer{tagger: tagger, logger: logger}
}

// Analyze 返回意图和实体，从不失败；标注出错时实体为空
func (a *Analyzer) Analyze(ctx context.Context, query string) (Intent, EntityMap) {
	intent := ClassifyIntent(query)
	entities := EntityMap{}

	tagged, err := a.tagger.Tag(ctx, query)
	if err != nil {
		l := logger.Ctx(ctx, a.logger)
		l.Warn().Err(err).Msg("实体标注失败，忽略实体")
		return intent, entities
	}
	for _, e := range tagged {
		if cat := categoryForLabel(e.Label); cat != "" {
			entities[cat] = e.Text
		}
	}
	return intent, entities
}
