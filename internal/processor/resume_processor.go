// Package processor 简历导入流水线：提取文本、规范化、结构化、写结果文件、汇总语料。
package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"resume-chatbot-go/internal/corpus"
	"resume-chatbot-go/internal/logger"
	"resume-chatbot-go/internal/parser"
	"resume-chatbot-go/internal/retry"
	"resume-chatbot-go/internal/storage"
	"resume-chatbot-go/internal/tracing"
	"resume-chatbot-go/internal/types"
)

var tracer = otel.Tracer("resume-chatbot-go/processor")

// FileResult 单个文件的处理结果
type FileResult struct {
	Source     string        // 源文件路径
	OutputPath string        // 结果文件路径，失败时为空
	ObjectKey  string        // 镜像后的对象路径
	Resume     types.Resume  // 语料记录
	Attempts   int           // 结构化尝试次数
	Outcome    retry.Outcome // 结构化结局
	Duration   time.Duration
	Err        error
}

// Report 一次目录导入的汇总
type Report struct {
	RunID      string
	Strategy   string
	Processed  int // 成功写出结果的文件数
	Failed     int
	Ignored    int // 扩展名不支持而被跳过的文件数
	Results    []FileResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// Failures 所有失败的文件
func (r Report) Failures() []FileResult {
	var out []FileResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Pipeline 单线程的导入流水线，一次只处理一个文件。
// 不是并发安全的，LLM 模式下的结果序号属于流水线实例。
type Pipeline struct {
	extractor parser.TextExtractor
	strategy  Strategy
	outputDir string
	sink      ResultSink
	publisher EventPublisher
	logger    zerolog.Logger
	runID     string
	seq       int
}

// NewPipeline 创建流水线
func NewPipeline(extractor parser.TextExtractor, strategy Strategy, opts ...PipelineOption) (*Pipeline, error) {
	if extractor == nil {
		return nil, errors.New("文本提取器不能为空")
	}
	if strategy == nil {
		return nil, errors.New("结构化策略不能为空")
	}
	p := &Pipeline{
		extractor: extractor,
		strategy:  strategy,
		outputDir: "output",
		logger:    zerolog.Nop(),
		runID:     uuid.NewString(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With().Str("run_id", p.runID).Str("strategy", strategy.Name()).Logger()
	return p, nil
}

// RunID 本次运行ID
func (p *Pipeline) RunID() string { return p.runID }

// ProcessFile 单文件入口。扩展名不是 .pdf/.docx 时返回 ErrUnsupportedFileType。
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (FileResult, error) {
	start := time.Now()
	result := FileResult{Source: path}

	ctx = logger.WithContext(ctx, p.logger.With().Str("file", filepath.Base(path)).Logger())
	ctx, span := tracer.Start(ctx, "Pipeline.ProcessFile")
	defer span.End()
	span.SetAttributes(
		attribute.String("resume.file", filepath.Base(path)),
		attribute.String("ingest.strategy", p.strategy.Name()),
		attribute.String("ingest.run_id", p.runID),
	)

	fail := func(err error, errType tracing.ErrorType) (FileResult, error) {
		tracing.RecordError(span, err, errType)
		result.Err = err
		result.Duration = time.Since(start)
		return result, err
	}

	if !parser.IsSupported(path) {
		return fail(NewUnsupportedError(path), tracing.ErrorTypeValidation)
	}

	raw, err := p.extractor.ExtractText(ctx, path)
	if err != nil {
		return fail(NewExtractError(path, err), tracing.ErrorTypeExtract)
	}
	text := parser.Normalize(raw)
	span.SetAttributes(attribute.Int("resume.text_length", len(text)))

	st, err := p.strategy.Structure(ctx, text)
	result.Attempts = st.Attempts
	result.Outcome = st.Outcome
	if err != nil {
		return fail(NewStructureError(path, "", err), tracing.ErrorTypeLLM)
	}

	p.seq++
	name := p.strategy.OutputName(path, p.seq)
	data, err := encodeOutput(p.strategy.Payload(st))
	if err != nil {
		p.seq--
		return fail(NewWriteError(path, err), tracing.ErrorTypeIO)
	}
	outPath, err := writeOutput(p.outputDir, name, data)
	if err != nil {
		p.seq--
		return fail(NewWriteError(path, err), tracing.ErrorTypeIO)
	}

	st.Resume.Source = filepath.Base(path)
	result.Resume = st.Resume
	result.OutputPath = outPath

	if p.sink != nil {
		key, err := p.sink.StoreResult(ctx, p.runID, name, data)
		if err != nil {
			p.logger.Warn().Err(err).Str("file", name).Msg("镜像结果文件失败")
			tracing.RecordError(span, err, tracing.ErrorTypeObjectStorage)
		} else {
			result.ObjectKey = key
		}
	}
	if p.publisher != nil {
		msg := storage.ResumeExtractedMessage{
			RunID:           p.runID,
			SourceFile:      filepath.Base(path),
			OutputFile:      name,
			OutputObjectKey: result.ObjectKey,
			Strategy:        p.strategy.Name(),
			Attempts:        st.Attempts,
			ExtractedAt:     time.Now(),
		}
		if types.IsProvided(st.Resume.Personal.Name) {
			msg.CandidateName = st.Resume.Personal.Name
		}
		if err := p.publisher.PublishExtracted(ctx, msg); err != nil {
			p.logger.Warn().Err(err).Str("file", name).Msg("发布导入事件失败")
			tracing.RecordError(span, err, tracing.ErrorTypeRabbitMQ)
		}
	}

	result.Duration = time.Since(start)
	span.SetAttributes(
		attribute.String("resume.output", name),
		attribute.String("resume.skills", tracing.SafeResumeContent(st.Resume.Skills)),
	)
	if types.IsProvided(st.Resume.Personal.Name) {
		span.SetAttributes(attribute.String("resume.candidate_name",
			tracing.SafeAttributeValue("resume.candidate_name", st.Resume.Personal.Name, tracing.DefaultMaxLength)))
	}
	if types.IsProvided(st.Resume.Personal.Email) {
		span.SetAttributes(attribute.String("resume.email", tracing.MaskPII(st.Resume.Personal.Email)))
	}
	span.SetStatus(codes.Ok, "")
	p.logger.Info().
		Str("file", filepath.Base(path)).
		Str("output", outPath).
		Int("attempts", st.Attempts).
		Dur("duration", result.Duration).
		Msgf("Processed %s and saved extracted data to %s", filepath.Base(path), outPath)
	return result, nil
}

// IngestDir 按文件名顺序处理目录下所有 .pdf/.docx 文件，返回本次导入的语料。
// 单个文件失败只记录在 Report 中，不中断整体导入。
func (p *Pipeline) IngestDir(ctx context.Context, dir string) (*corpus.Corpus, Report, error) {
	report := Report{
		RunID:     p.runID,
		Strategy:  p.strategy.Name(),
		StartedAt: time.Now(),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, report, fmt.Errorf("读取输入目录 %s 失败: %w", dir, err)
	}

	ctx, span := tracer.Start(ctx, "Pipeline.IngestDir")
	defer span.End()
	span.SetAttributes(attribute.String("ingest.input_dir", dir), attribute.String("ingest.run_id", p.runID))

	c := corpus.New()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now()
			return c, report, err
		}

		path := filepath.Join(dir, entry.Name())
		if !parser.IsSupported(path) {
			report.Ignored++
			p.logger.Debug().Str("file", entry.Name()).Msg("跳过不支持的文件")
			continue
		}

		res, err := p.ProcessFile(ctx, path)
		report.Results = append(report.Results, res)
		if err != nil {
			report.Failed++
			p.logger.Error().Err(err).Str("file", entry.Name()).Str("outcome", res.Outcome.String()).Msg("处理简历失败")
			continue
		}
		report.Processed++
		c.Append(res.Resume)
	}

	report.FinishedAt = time.Now()
	span.SetAttributes(
		attribute.Int("ingest.processed", report.Processed),
		attribute.Int("ingest.failed", report.Failed),
	)
	p.logger.Info().
		Int("processed", report.Processed).
		Int("failed", report.Failed).
		Int("ignored", report.Ignored).
		Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("目录导入完成")
	return c, report, nil
}
