package storage

import "time"

// ResumeExtractedMessage 一份简历导入完成后发布的事件
type ResumeExtractedMessage struct {
	RunID           string    `json:"run_id"`                      // 本次导入运行ID
	SourceFile      string    `json:"source_file"`                 // 原始文件名
	OutputFile      string    `json:"output_file"`                 // 结果文件名
	OutputObjectKey string    `json:"output_object_key,omitempty"` // 镜像到 MinIO 后的对象路径
	Strategy        string    `json:"strategy"`                    // pattern 或 llm
	Attempts        int       `json:"attempts"`                    // LLM 调用次数，模式匹配为 1
	CandidateName   string    `json:"candidate_name,omitempty"`    // 提取到的姓名
	ExtractedAt     time.Time `json:"extracted_at"`
}
