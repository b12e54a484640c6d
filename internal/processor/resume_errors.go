package processor

import (
	"errors"
	"fmt"

	"resume-chatbot-go/internal/parser"
)

// 定义基础错误类型
var (
	// ErrUnsupportedFileType 与 parser 包中的是同一个值，两边都能用 errors.Is 判断
	ErrUnsupportedFileType = parser.ErrUnsupportedFileType
	ErrExtractTextFailed   = errors.New("提取简历文本失败")
	ErrStructureFailed     = errors.New("结构化简历失败")
	ErrWriteOutputFailed   = errors.New("写入结果文件失败")
)

// IngestError 单个文件导入失败时的详细错误
type IngestError struct {
	Path    string
	Op      string
	BaseErr error
	Detail  string
	Cause   error
}

func (e *IngestError) Error() string {
	msg := fmt.Sprintf("%s (操作:%s, 文件:%s)", e.BaseErr, e.Op, e.Path)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *IngestError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.BaseErr}
	}
	return []error{e.BaseErr, e.Cause}
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *IngestError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func NewUnsupportedError(path string) error {
	return &IngestError{
		Path:    path,
		Op:      "validate",
		BaseErr: ErrUnsupportedFileType,
	}
}

func NewExtractError(path string, cause error) error {
	return &IngestError{
		Path:    path,
		Op:      "extract",
		BaseErr: ErrExtractTextFailed,
		Cause:   cause,
	}
}

func NewStructureError(path, detail string, cause error) error {
	return &IngestError{
		Path:    path,
		Op:      "structure",
		BaseErr: ErrStructureFailed,
		Detail:  detail,
		Cause:   cause,
	}
}

func NewWriteError(path string, cause error) error {
	return &IngestError{
		Path:    path,
		Op:      "write",
		BaseErr: ErrWriteOutputFailed,
		Cause:   cause,
	}
}
