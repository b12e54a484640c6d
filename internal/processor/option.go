package processor

import (
	"github.com/rs/zerolog"
)

// PipelineOption 流水线选项函数类型
type PipelineOption func(*Pipeline)

// WithOutputDir 设置结果文件目录
func WithOutputDir(dir string) PipelineOption {
	return func(p *Pipeline) {
		if dir != "" {
			p.outputDir = dir
		}
	}
}

// WithResultSink 设置结果镜像
func WithResultSink(sink ResultSink) PipelineOption {
	return func(p *Pipeline) {
		p.sink = sink
	}
}

// WithEventPublisher 设置事件发布
func WithEventPublisher(pub EventPublisher) PipelineOption {
	return func(p *Pipeline) {
		p.publisher = pub
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger zerolog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithRunID 指定运行ID，默认随机生成
func WithRunID(id string) PipelineOption {
	return func(p *Pipeline) {
		if id != "" {
			p.runID = id
		}
	}
}
