package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-chatbot-go/internal/constants"
	"resume-chatbot-go/internal/types"
)

const sampleResume = `John Smith
john.smith@example.com | (555) 123-4567

Education
Bachelor of Science in Computer Science, Stanford University 2018

Work Experience
Software Engineer at Acme Corp, 2018-2023. Built payment services in Go.

Skills
Python, Go, SQL, Kubernetes

Projects
Resume parser; chat assistant.

Certifications
AWS Certified Developer

References
Available on request.`

func TestPatternExtractorPersonalInfo(t *testing.T) {
	text := Normalize("John Smith john.smith@example.com (555) 123-4567")
	r := NewPatternExtractor().Extract(text)

	assert.Equal(t, "John Smith", r.Personal.Name)
	assert.Equal(t, "john.smith@example.com", r.Personal.Email)
	assert.Equal(t, "555 1234567", r.Personal.Phone, "电话应为规整后的原文子串")
}

func TestPatternExtractorFullResume(t *testing.T) {
	text := Normalize(sampleResume)
	r := NewPatternExtractor().Extract(text)

	assert.Equal(t, "John Smith", r.Personal.Name)
	assert.Equal(t, "john.smith@example.com", r.Personal.Email)
	assert.Equal(t, "555 1234567", r.Personal.Phone)

	assert.Equal(t, "Work Experience Software Engineer at Acme Corp 20182023. Built payment services in Go. ", r.Experience)
	assert.Equal(t, "Skills Python Go SQL Kubernetes ", r.Skills)
	assert.Equal(t, "Projects Resume parser chat assistant. ", r.Projects)
	assert.Equal(t, "Certifications AWS Certified Developer ", r.Certifications)

	require.NotEqual(t, constants.NotProvided, r.Education)
	assert.Contains(t, r.Education, "Education Bachelor of Science in Computer Science Stanford University")
}

func TestPatternExtractorMissingSkills(t *testing.T) {
	text := Normalize("Jane Doe jane@example.org Work Experience Acme Projects Billing")
	r := NewPatternExtractor().Extract(text)

	assert.Equal(t, constants.NotProvided, r.Skills)
	assert.Equal(t, constants.NotProvided, r.Certifications)
	assert.Equal(t, "Work Experience Acme ", r.Experience)
	assert.Equal(t, "Projects Billing", r.Projects, "没有 Certifications 时项目段取到文末")
}

func TestPatternExtractorEmptyText(t *testing.T) {
	r := NewPatternExtractor().Extract("")
	assert.Equal(t, types.NewEmptyResume(), r, "空文本所有字段都应为占位值")
}

func TestPatternExtractorEducationViaAtSign(t *testing.T) {
	text := Normalize("contact @ Master of Arts in History Yale University 2015")
	r := NewPatternExtractor().Extract(text)
	assert.Contains(t, r.Education, "@ Master of Arts in History Yale University")
}

func TestPatternExtractorCustomBoundaries(t *testing.T) {
	custom := []BoundaryMatcher{
		{Field: types.FieldSkills, Start: "Tech Stack", Ends: []string{"Hobbies"}},
	}
	e := NewPatternExtractor(WithBoundaries(custom))
	r := e.Extract("Tech Stack Go Rust Hobbies Chess")

	assert.Equal(t, "Tech Stack Go Rust ", r.Skills)
	assert.Equal(t, constants.NotProvided, r.Experience, "自定义边界之外的章节不再提取")
	assert.Len(t, e.Boundaries(), 1)
}

func TestWithEmptyBoundariesKeepsDefaults(t *testing.T) {
	e := NewPatternExtractor(WithBoundaries(nil))
	assert.Equal(t, DefaultBoundaries(), e.Boundaries())
}

func TestPatternExtractorFullWidthHeading(t *testing.T) {
	r := NewPatternExtractor().Extract(Normalize("Ｓｋｉｌｌｓ： Go, SQL"))
	assert.Equal(t, "Skills Go SQL", r.Skills, "全角标题折叠后应命中 Skills 边界")
}
