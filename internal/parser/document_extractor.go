package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"resume-chatbot-go/internal/constants"
)

// ErrUnsupportedFileType 文件后缀既不是 .pdf 也不是 .docx
var ErrUnsupportedFileType = errors.New("Only PDF and DOCX files are supported")

// TextExtractor 从文档文件中取出原始文本
type TextExtractor interface {
	ExtractText(ctx context.Context, filePath string) (string, error)
}

// IsSupported 按后缀判断是否为可处理的文档（大小写敏感）
func IsSupported(filePath string) bool {
	return strings.HasSuffix(filePath, constants.SuffixPDF) || strings.HasSuffix(filePath, constants.SuffixDOCX)
}

// FileTextExtractor 按后缀分派到具体的提取器。
// PDF 先走 primary，结果为空白或失败时再试 fallback。
type FileTextExtractor struct {
	pdfPrimary  TextExtractor
	pdfFallback TextExtractor
	docx        TextExtractor
	logger      zerolog.Logger
}

// FileExtractorOption FileTextExtractor 配置项
type FileExtractorOption func(*FileTextExtractor)

// WithPDFPrimary 设置首选 PDF 提取器
func WithPDFPrimary(e TextExtractor) FileExtractorOption {
	return func(f *FileTextExtractor) { f.pdfPrimary = e }
}

// WithPDFFallback 设置兜底 PDF 提取器，传 nil 关闭兜底
func WithPDFFallback(e TextExtractor) FileExtractorOption {
	return func(f *FileTextExtractor) { f.pdfFallback = e }
}

// WithDocxExtractor 设置 DOCX 提取器
func WithDocxExtractor(e TextExtractor) FileExtractorOption {
	return func(f *FileTextExtractor) { f.docx = e }
}

// WithExtractorLogger 设置日志器
func WithExtractorLogger(l zerolog.Logger) FileExtractorOption {
	return func(f *FileTextExtractor) { f.logger = l }
}

// NewFileTextExtractor 创建默认的文档提取器：Eino PDF + ledongthuc 兜底 + DOCX
func NewFileTextExtractor(ctx context.Context, opts ...FileExtractorOption) (*FileTextExtractor, error) {
	f := &FileTextExtractor{
		pdfFallback: PlainPDFTextExtractor{},
		docx:        DocxTextExtractor{},
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.pdfPrimary == nil {
		eino, err := NewEinoPDFTextExtractor(ctx, WithEinoLogger(f.logger))
		if err != nil {
			return nil, err
		}
		f.pdfPrimary = eino
	}
	return f, nil
}

// ExtractText 实现 TextExtractor
func (f *FileTextExtractor) ExtractText(ctx context.Context, filePath string) (string, error) {
	switch {
	case strings.HasSuffix(filePath, constants.SuffixPDF):
		return f.extractPDF(ctx, filePath)
	case strings.HasSuffix(filePath, constants.SuffixDOCX):
		if f.docx == nil {
			return "", fmt.Errorf("%w: no docx extractor configured", ErrUnsupportedFileType)
		}
		return f.docx.ExtractText(ctx, filePath)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, filepath.Base(filePath))
	}
}

func (f *FileTextExtractor) extractPDF(ctx context.Context, filePath string) (string, error) {
	var primaryErr error
	if f.pdfPrimary != nil {
		text, err := f.pdfPrimary.ExtractText(ctx, filePath)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		primaryErr = err
	}

	if f.pdfFallback == nil {
		if primaryErr != nil {
			return "", primaryErr
		}
		return "", nil
	}

	f.logger.Debug().Err(primaryErr).Str("file", filePath).Msg("首选PDF提取结果为空，改用兜底提取器")
	text, err := f.pdfFallback.ExtractText(ctx, filePath)
	if err != nil {
		if primaryErr != nil {
			return "", errors.Join(primaryErr, err)
		}
		return "", err
	}
	return text, nil
}
