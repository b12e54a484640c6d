package parser

import (
	"strings"

	"resume-chatbot-go/internal/types"
)

// BoundaryMatcher 按章节标题截取一段文本。
// 从 Start 第一次出现的位置（含标题本身）开始，到其后最早出现的任一 Ends 关键字为止（不含），
// 没有结束关键字时一直取到文本末尾。匹配区分大小写。
type BoundaryMatcher struct {
	Field types.FieldName `yaml:"field"`
	Start string          `yaml:"start"`
	Ends  []string        `yaml:"ends"`
}

// Match 返回截取内容；找不到 Start 时 ok 为 false
func (m BoundaryMatcher) Match(text string) (string, bool) {
	if m.Start == "" {
		return "", false
	}
	begin := strings.Index(text, m.Start)
	if begin < 0 {
		return "", false
	}

	searchFrom := begin + len(m.Start)
	end := len(text)
	for _, kw := range m.Ends {
		if kw == "" {
			continue
		}
		if idx := strings.Index(text[searchFrom:], kw); idx >= 0 && searchFrom+idx < end {
			end = searchFrom + idx
		}
	}
	return text[begin:end], true
}

// DefaultBoundaries 默认的章节边界，按声明顺序执行。
// 后续标题缺失时会一直截到文末，这是已知的贪婪行为。
func DefaultBoundaries() []BoundaryMatcher {
	return []BoundaryMatcher{
		{Field: types.FieldExperience, Start: "Work Experience", Ends: []string{"Skills", "Projects", "Certifications"}},
		{Field: types.FieldSkills, Start: "Skills", Ends: []string{"Summary", "Work Experience", "Projects", "Certifications"}},
		{Field: types.FieldProjects, Start: "Projects", Ends: []string{"Certifications"}},
		{Field: types.FieldCertifications, Start: "Certifications", Ends: []string{"References"}},
	}
}
