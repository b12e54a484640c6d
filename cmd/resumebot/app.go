package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"resume-chatbot-go/internal/agent"
	"resume-chatbot-go/internal/chatbot"
	"resume-chatbot-go/internal/config"
	"resume-chatbot-go/internal/logger"
	"resume-chatbot-go/internal/parser"
	"resume-chatbot-go/internal/processor"
	"resume-chatbot-go/internal/retry"
	"resume-chatbot-go/internal/storage"
	"resume-chatbot-go/internal/tracing"
	"resume-chatbot-go/internal/types"
)

// app 各子命令共用的配置、日志和追踪
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	shutdown tracing.ShutdownFunc
}

// addConfigFlag 所有子命令都支持 --config
func addConfigFlag(fs *pflag.FlagSet) *string {
	return fs.StringP("config", "c", "", "配置文件路径，留空时在默认位置查找")
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	shutdown, err := tracing.Init(ctx, cfg.Tracing, version)
	if err != nil {
		logger.Warn().Err(err).Msg("初始化链路追踪失败，继续运行")
	}

	return &app{cfg: cfg, log: logger.Component("cli"), shutdown: shutdown}, nil
}

func (a *app) close(ctx context.Context) {
	if a.shutdown == nil {
		return
	}
	if err := a.shutdown(ctx); err != nil {
		a.log.Warn().Err(err).Msg("关闭链路追踪失败")
	}
}

func (a *app) newExtractor(ctx context.Context) (*parser.FileTextExtractor, error) {
	return parser.NewFileTextExtractor(ctx, parser.WithExtractorLogger(logger.Component("extractor")))
}

func (a *app) newPatternExtractor() *parser.PatternExtractor {
	var matchers []parser.BoundaryMatcher
	for _, b := range a.cfg.Extraction.Boundaries {
		matchers = append(matchers, parser.BoundaryMatcher{
			Field: types.FieldName(b.Field),
			Start: b.Start,
			Ends:  b.Ends,
		})
	}
	return parser.NewPatternExtractor(parser.WithBoundaries(matchers))
}

func (a *app) newRetrier() *retry.Retrier {
	return retry.New(a.cfg.Retry.Policy(), agent.ClassifyError, retry.WithLogger(logger.Component("retry")))
}

// newStrategy 按 ingest.strategy 构造结构化策略；cache 可为 nil
func (a *app) newStrategy(ctx context.Context, cache parser.ResponseCache) (processor.Strategy, error) {
	patterns := a.newPatternExtractor()
	if a.cfg.Ingest.Strategy != config.StrategyLLM {
		return processor.NewPatternStrategy(patterns), nil
	}

	llm, err := agent.NewChatModelFromConfig(ctx, a.cfg.LLM, logger.Component("llm"))
	if err != nil {
		return nil, err
	}
	opts := []parser.LLMStructurerOption{
		parser.WithModelName(a.cfg.LLM.Provider + ":" + a.cfg.LLM.ModelName()),
		parser.WithStructurePrompt(a.cfg.LLM.PromptTemplate),
		parser.WithStructurerLogger(logger.Component("structurer")),
	}
	if cache != nil {
		opts = append(opts, parser.WithResponseCache(cache))
	}
	structurer := parser.NewLLMStructurer(llm, a.newRetrier(), opts...)
	return processor.NewLLMStrategy(structurer, patterns, logger.Component("strategy")), nil
}

// newTagger 按 tagger.type 构造实体标注器，llm 标注器初始化失败时退回词表
func (a *app) newTagger(ctx context.Context) chatbot.Tagger {
	tc := a.cfg.Tagger
	switch tc.Type {
	case config.TaggerNone:
		return chatbot.NopTagger{}
	case config.TaggerLLM:
		llm, err := agent.NewChatModelFromConfig(ctx, a.cfg.LLM, logger.Component("llm"))
		if err == nil {
			return chatbot.NewLLMTagger(llm, a.newRetrier(), logger.Component("tagger"))
		}
		a.log.Warn().Err(err).Msg("初始化LLM实体标注失败，改用词表标注")
	}
	return chatbot.NewGazetteerTagger(tc.Organizations, tc.Locations, tc.Projects)
}

// newPipeline 组装导入流水线及已启用的旁路
func (a *app) newPipeline(ctx context.Context, outputDir string) (*processor.Pipeline, *storage.Storage, error) {
	extractor, err := a.newExtractor(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("创建文本提取器失败: %w", err)
	}

	store := storage.NewStorage(ctx, a.cfg, logger.Component("storage"))

	var cache parser.ResponseCache
	if store.Redis != nil {
		cache = store.Redis
	}
	strategy, err := a.newStrategy(ctx, cache)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	opts := []processor.PipelineOption{
		processor.WithOutputDir(outputDir),
		processor.WithLogger(logger.Component("pipeline")),
	}
	if store.MinIO != nil {
		opts = append(opts, processor.WithResultSink(store.MinIO))
	}
	if store.RabbitMQ != nil {
		opts = append(opts, processor.WithEventPublisher(store.RabbitMQ))
	}

	p, err := processor.NewPipeline(extractor, strategy, opts...)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return p, store, nil
}
