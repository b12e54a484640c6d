package chatbot

import (
	"context"
	"fmt"
	"strings"

	"resume-chatbot-go/internal/corpus"
	"resume-chatbot-go/internal/types"
)

// 固定回复
const (
	MsgSkillsFound        = "Candidates with the required skills:\n"
	MsgSkillsNone         = "No candidates found with those skills."
	MsgEducationFound     = "Education level: "
	MsgEducationNone      = "No information on the requested education level."
	MsgExperienceFound    = "Candidates with the required experience:\n"
	MsgExperienceNone     = "No candidates found with experience in this industry."
	MsgJobRequirementNone = "No candidates match the given job requirements."
	MsgUnknown            = "Sorry, I couldn't understand your query. Please ask about skills, education, or experience."
)

// Router 按意图把查询分派给对应的处理函数
type Router struct {
	analyzer *Analyzer
}

func NewRouter(analyzer *Analyzer) *Router {
	return &Router{analyzer: analyzer}
}

// Respond 只返回回答文本
func (r *Router) Respond(ctx context.Context, query string, c *corpus.Corpus) string {
	answer, _, _ := r.Route(ctx, query, c)
	return answer
}

// Route 返回回答以及分析出的意图和实体，供会话更新上下文
func (r *Router) Route(ctx context.Context, query string, c *corpus.Corpus) (string, Intent, EntityMap) {
	intent, entities := r.analyzer.Analyze(ctx, query)
	return Dispatch(intent, query, c.All()), intent, entities
}

// Dispatch 严格按意图选择处理函数，不修改 records
func Dispatch(intent Intent, query string, records []types.Resume) string {
	switch intent {
	case IntentSkills:
		return FindCandidatesWithSkills(query, records)
	case IntentEducation:
		return CompareEducationLevels(query, records)
	case IntentExperience:
		return SearchExperience(query, records)
	case IntentJobRequirement:
		return MatchJobRequirements(query, records)
	default:
		return MsgUnknown
	}
}

// FindCandidatesWithSkills 技能文本包含整条查询的记录全部列出
func FindCandidatesWithSkills(query string, records []types.Resume) string {
	matches := collectContaining(query, records, func(r types.Resume) string { return r.Skills })
	if len(matches) == 0 {
		return MsgSkillsNone
	}
	return MsgSkillsFound + strings.Join(matches, "\n")
}

// CompareEducationLevels 返回第一条教育经历包含查询的记录
func CompareEducationLevels(query string, records []types.Resume) string {
	q := strings.ToLower(query)
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Education), q) {
			return MsgEducationFound + r.Education
		}
	}
	return MsgEducationNone
}

// SearchExperience 工作经历包含整条查询的记录全部列出
func SearchExperience(query string, records []types.Resume) string {
	matches := collectContaining(query, records, func(r types.Resume) string { return r.Experience })
	if len(matches) == 0 {
		return MsgExperienceNone
	}
	return MsgExperienceFound + strings.Join(matches, "\n")
}

// MatchJobRequirements 技能或经历中任一空白分隔的词出现在查询里即算匹配，只返回数量。
// 占位值字段不参与匹配。
func MatchJobRequirements(query string, records []types.Resume) string {
	q := strings.ToLower(query)
	count := 0
	for _, r := range records {
		if anyTokenIn(r.Skills, q) || anyTokenIn(r.Experience, q) {
			count++
		}
	}
	if count == 0 {
		return MsgJobRequirementNone
	}
	return fmt.Sprintf("Found %d matching candidate(s).", count)
}

func collectContaining(query string, records []types.Resume, field func(types.Resume) string) []string {
	q := strings.ToLower(query)
	var out []string
	for _, r := range records {
		v := field(r)
		if strings.Contains(strings.ToLower(v), q) {
			out = append(out, v)
		}
	}
	return out
}

func anyTokenIn(field, lowerQuery string) bool {
	if !types.IsProvided(field) {
		return false
	}
	for _, tok := range strings.Fields(strings.ToLower(field)) {
		if strings.Contains(lowerQuery, tok) {
			return true
		}
	}
	return false
}
