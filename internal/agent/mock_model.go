package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// MockResponse 定义了 MockChatModel 的单次预期响应
type MockResponse struct {
	Content string
	Error   error
}

// MockChatModel 按顺序返回预设响应的 BaseChatModel，供测试和 mock 提供方离线运行使用。
// 响应用完后一直重复最后一个。
type MockChatModel struct {
	Responses        []MockResponse
	Calls            int
	ReceivedMessages [][]*schema.Message
}

// NewMockChatModel 返回固定内容的模型
func NewMockChatModel(content string) *MockChatModel {
	return &MockChatModel{Responses: []MockResponse{{Content: content}}}
}

// NewMockChatModelSequential 按顺序返回不同响应
func NewMockChatModelSequential(responses ...MockResponse) *MockChatModel {
	return &MockChatModel{Responses: responses}
}

// Generate 返回下一条预设响应
func (m *MockChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	received := make([]*schema.Message, len(input))
	copy(received, input)
	m.ReceivedMessages = append(m.ReceivedMessages, received)

	if len(m.Responses) == 0 {
		m.Calls++
		return nil, errors.New("mock model has no responses configured")
	}
	idx := m.Calls
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	m.Calls++

	resp := m.Responses[idx]
	if resp.Error != nil {
		return nil, resp.Error
	}
	return schema.AssistantMessage(resp.Content, nil), nil
}

// Stream 未实现
func (m *MockChatModel) Stream(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("streaming not implemented in MockChatModel")
}

var _ model.BaseChatModel = (*MockChatModel)(nil)
