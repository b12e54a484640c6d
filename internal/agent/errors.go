package agent

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/genai"

	"resume-chatbot-go/internal/retry"
)

// APIError 模型服务返回的非 2xx 响应
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API 请求失败，状态 %d: %s", e.Provider, e.StatusCode, e.Body)
}

// IsRateLimit 是否为限流
func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsServerError 是否为服务端错误
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}

// ClassifyError 把模型调用错误分为瞬时和致命两类：
// 限流(429)、服务端错误(5xx)、网络层错误可以重试；其余（鉴权、参数错误、上下文取消等）直接放弃。
func ClassifyError(err error) retry.Class {
	if err == nil {
		return retry.ClassFatal
	}
	if errors.Is(err, context.Canceled) {
		return retry.ClassFatal
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode)
	}

	var gErr genai.APIError
	if errors.As(err, &gErr) {
		return classifyStatus(gErr.Code)
	}
	var gErrPtr *genai.APIError
	if errors.As(err, &gErrPtr) && gErrPtr != nil {
		return classifyStatus(gErrPtr.Code)
	}

	// 单次请求超时属于网络抖动
	if errors.Is(err, context.DeadlineExceeded) {
		return retry.ClassTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return retry.ClassTransient
	}
	return retry.ClassFatal
}

func classifyStatus(code int) retry.Class {
	if code == http.StatusTooManyRequests || code >= 500 {
		return retry.ClassTransient
	}
	return retry.ClassFatal
}
