package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	text  string
	err   error
	calls int
}

func (s *stubExtractor) ExtractText(context.Context, string) (string, error) {
	s.calls++
	return s.text, s.err
}

func newTestFileExtractor(t *testing.T, primary, fallback, docx TextExtractor) *FileTextExtractor {
	t.Helper()
	f, err := NewFileTextExtractor(context.Background(),
		WithPDFPrimary(primary),
		WithPDFFallback(fallback),
		WithDocxExtractor(docx),
	)
	require.NoError(t, err)
	return f
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("cv.pdf"))
	assert.True(t, IsSupported("dir/cv.docx"))
	assert.False(t, IsSupported("cv.PDF"), "后缀大小写敏感")
	assert.False(t, IsSupported("cv.doc"))
	assert.False(t, IsSupported("notes.txt"))
}

func TestFileTextExtractorUnsupported(t *testing.T) {
	f := newTestFileExtractor(t, &stubExtractor{}, nil, &stubExtractor{})
	_, err := f.ExtractText(context.Background(), "resume.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
	assert.Contains(t, err.Error(), "Only PDF and DOCX files are supported")
}

func TestFileTextExtractorPDFPrimary(t *testing.T) {
	primary := &stubExtractor{text: "John Smith"}
	fallback := &stubExtractor{text: "fallback"}
	f := newTestFileExtractor(t, primary, fallback, nil)

	text, err := f.ExtractText(context.Background(), "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "John Smith", text)
	assert.Equal(t, 0, fallback.calls, "首选成功时不应调用兜底")
}

func TestFileTextExtractorPDFFallbackOnBlank(t *testing.T) {
	primary := &stubExtractor{text: "  \n "}
	fallback := &stubExtractor{text: "Jane Doe"}
	f := newTestFileExtractor(t, primary, fallback, nil)

	text, err := f.ExtractText(context.Background(), "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", text)
}

func TestFileTextExtractorPDFBothFail(t *testing.T) {
	e1 := errors.New("primary broken")
	e2 := errors.New("fallback broken")
	f := newTestFileExtractor(t, &stubExtractor{err: e1}, &stubExtractor{err: e2}, nil)

	_, err := f.ExtractText(context.Background(), "a.pdf")
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)
}

func TestFileTextExtractorDocx(t *testing.T) {
	docx := &stubExtractor{text: "Skills Go"}
	f := newTestFileExtractor(t, &stubExtractor{}, nil, docx)

	text, err := f.ExtractText(context.Background(), "b.docx")
	require.NoError(t, err)
	assert.Equal(t, "Skills Go", text)
	assert.Equal(t, 1, docx.calls)
}

func TestDocxXMLToText(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>John Smith</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t xml:space="preserve">Skills </w:t></w:r><w:r><w:tab/><w:t>Go &amp; SQL</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Line1</w:t><w:br/><w:t>Line2</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	text, err := docxXMLToText(content)
	require.NoError(t, err)
	assert.Equal(t, "John Smith\nSkills \tGo & SQL\nLine1\nLine2\n", text)
}
