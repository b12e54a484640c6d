package processor

import (
	"context"

	"resume-chatbot-go/internal/storage"
)

//
// 导入结果的旁路输出，全部可选，失败只记警告
//

// ResultSink 把结果文件镜像到外部存储
type ResultSink interface {
	// StoreResult 保存结果文件，返回对象路径
	StoreResult(ctx context.Context, runID, name string, data []byte) (string, error)
}

// EventPublisher 发布导入完成事件
type EventPublisher interface {
	PublishExtracted(ctx context.Context, msg storage.ResumeExtractedMessage) error
}
