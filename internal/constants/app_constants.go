package constants

import "time"

const (
	// NotProvided 字段未能提取时的统一占位值
	NotProvided = "Not Provided"

	// 支持的文档后缀，大小写敏感
	SuffixPDF  = ".pdf"
	SuffixDOCX = ".docx"

	// 输出文件命名
	PatternOutputSuffix = "_extracted_data.json" // <basename>_extracted_data.json
	LLMOutputPrefix     = "Response"             // Response<index>.json
	OutputExt           = ".json"

	// 输出 JSON 缩进
	OutputIndent = "    "
)

// 上下文中的保留键
const (
	ContextKeyLastQuery  = "last_query"
	ContextKeyLastIntent = "last_intent"
)

// Redis 键
// 格式: app:{module}:{entity}:{unique_id}
const (
	AppPrefix = "app"

	// KeyLLMResponse LLM 结构化结果缓存 (STRING)
	// 格式: app:llm:response:{provider}:{model}:{md5}
	KeyLLMResponse = AppPrefix + ":llm:response:"

	LLMResponseCacheTTL = 7 * 24 * time.Hour
)

// RabbitMQ
const (
	DefaultExtractedExchange   = "resume.events.exchange"
	DefaultExtractedRoutingKey = "resume.extracted"
)
