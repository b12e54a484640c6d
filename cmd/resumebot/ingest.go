package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"resume-chatbot-go/internal/config"
	"resume-chatbot-go/internal/corpus"
	"resume-chatbot-go/internal/processor"
)

// runIngest 导入目录下所有简历
func runIngest(args []string) error {
	fs := pflag.NewFlagSet("ingest", pflag.ExitOnError)
	configPath := addConfigFlag(fs)
	input := fs.StringP("input", "i", "", "简历目录，默认取配置 ingest.input_dir")
	output := fs.StringP("output", "o", "", "结果目录，默认取配置 ingest.output_dir")
	strategy := fs.StringP("strategy", "s", "", "结构化策略: pattern 或 llm")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	if err := applyIngestFlags(a.cfg, *input, *output, *strategy); err != nil {
		return err
	}

	_, report, err := a.ingest(ctx, a.cfg.Ingest.InputDir, a.cfg.Ingest.OutputDir)
	if err != nil {
		return err
	}
	if report.Processed == 0 && report.Failed > 0 {
		return fmt.Errorf("所有 %d 个文件处理失败", report.Failed)
	}
	return nil
}

// applyIngestFlags 命令行参数覆盖配置
func applyIngestFlags(cfg *config.Config, input, output, strategy string) error {
	if input != "" {
		cfg.Ingest.InputDir = input
	}
	if output != "" {
		cfg.Ingest.OutputDir = output
	}
	if strategy != "" {
		cfg.Ingest.Strategy = strategy
	}
	return cfg.Validate()
}

// ingest 导入一个目录，返回本次导入的语料
func (a *app) ingest(ctx context.Context, inputDir, outputDir string) (*corpus.Corpus, processor.Report, error) {
	p, store, err := a.newPipeline(ctx, outputDir)
	if err != nil {
		return nil, processor.Report{}, err
	}
	defer store.Close()

	a.log.Info().
		Str("input", inputDir).
		Str("output", outputDir).
		Str("strategy", a.cfg.Ingest.Strategy).
		Str("run_id", p.RunID()).
		Msg("开始导入简历")

	c, report, err := p.IngestDir(ctx, inputDir)
	if err != nil {
		return nil, report, err
	}
	for _, f := range report.Failures() {
		a.log.Warn().Str("file", f.Source).Str("outcome", f.Outcome.String()).Err(f.Err).Msg("未生成结果")
	}
	return c, report, nil
}

// runParse 单文件入口：处理一个文件，把记录打印到标准输出
func runParse(args []string) error {
	fs := pflag.NewFlagSet("parse", pflag.ExitOnError)
	configPath := addConfigFlag(fs)
	output := fs.StringP("output", "o", "", "结果目录，默认取配置 ingest.output_dir")
	strategy := fs.StringP("strategy", "s", "", "结构化策略: pattern 或 llm")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("parse 需要且只需要一个文件参数")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	if err := applyIngestFlags(a.cfg, "", *output, *strategy); err != nil {
		return err
	}

	p, store, err := a.newPipeline(ctx, a.cfg.Ingest.OutputDir)
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := p.ProcessFile(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(res.Resume)
}

// runSampleConfig 生成示例配置
func runSampleConfig(args []string) error {
	fs := pflag.NewFlagSet("sample-config", pflag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	path := "config.yaml"
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if err := config.CreateSampleConfig(path); err != nil {
		return err
	}
	fmt.Printf("示例配置已写入 %s\n", path)
	return nil
}
