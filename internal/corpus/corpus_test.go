package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-chatbot-go/internal/constants"
	"resume-chatbot-go/internal/parser"
	"resume-chatbot-go/internal/types"
)

func TestCorpus_AppendKeepsOrderAndDuplicates(t *testing.T) {
	c := New()
	assert.Equal(t, 0, c.Len())

	a := types.NewEmptyResume()
	a.Skills = "Go"
	b := types.NewEmptyResume()
	b.Skills = "Python"

	c.Append(a)
	c.Append(b)
	c.Append(a)

	all := c.All()
	require.Len(t, all, 3, "重复记录也应保留")
	assert.Equal(t, "Go", all[0].Skills)
	assert.Equal(t, "Python", all[1].Skills)
	assert.Equal(t, "Go", all[2].Skills)

	all[0].Skills = "changed"
	assert.Equal(t, "Go", c.All()[0].Skills, "All 返回的是副本")
}

func TestCorpus_NilSafe(t *testing.T) {
	var c *Corpus
	assert.Equal(t, 0, c.Len())
	assert.Nil(t, c.All())
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()

	pattern := `{
    "Personal Information": {"Name": "John Smith", "Email": "john@example.com", "Phone": "Not Provided"},
    "Education History": "B.Sc. Computer Science",
    "Work Experience": "Not Provided",
    "Skills": "Skills Go SQL",
    "Projects": "Not Provided",
    "Certifications": "Not Provided"
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"+constants.PatternOutputSuffix), []byte(pattern), 0o644))

	llm := `{"response": "` + "```json\\n{\\\"Skills\\\": \\\"Rust\\\"}\\n```" + `"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Response1.json"), []byte(llm), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b"+constants.PatternOutputSuffix), []byte("not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	c, err := LoadDir(dir, zerolog.Nop())
	require.NoError(t, err)

	all := c.All()
	require.Len(t, all, 2, "损坏文件和无关文件应被跳过")

	assert.Equal(t, "Rust", all[0].Skills)
	assert.Equal(t, constants.NotProvided, all[0].Personal.Name)
	assert.Equal(t, "Response1.json", all[0].Source)

	assert.Equal(t, "John Smith", all[1].Personal.Name)
	assert.Equal(t, "Skills Go SQL", all[1].Skills)
	assert.Equal(t, "a"+constants.PatternOutputSuffix, all[1].Source)
}

func TestLoadDir_Missing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"), zerolog.Nop())
	assert.Error(t, err)
}

func TestLoadDir_LLMReplyWithoutJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Response1.json"),
		[]byte(`{"response": "Alice Brown\nSkills: Go, Kubernetes"}`), 0o644))

	c, err := LoadDir(dir, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 1, c.Len(), "没有 JSON 的回复也应产出一条记录")

	r := c.All()[0]
	assert.Equal(t, "Alice Brown", r.Personal.Name)
	assert.Equal(t, "Skills Go Kubernetes", r.Skills)
	assert.Equal(t, constants.NotProvided, r.Projects)
}

func TestLoadDir_WithFallbackExtractor(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Response1.json"),
		[]byte(`{"response": "Tech Stack Go Hobbies chess"}`), 0o644))

	ext := parser.NewPatternExtractor(parser.WithBoundaries([]parser.BoundaryMatcher{
		{Field: types.FieldSkills, Start: "Tech Stack", Ends: []string{"Hobbies"}},
	}))
	c, err := LoadDir(dir, zerolog.Nop(), WithFallbackExtractor(ext))
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "Tech Stack Go ", c.All()[0].Skills)
}
