package main

import (
	"context"
	"os"

	"github.com/spf13/pflag"

	"resume-chatbot-go/internal/chatbot"
	"resume-chatbot-go/internal/corpus"
	"resume-chatbot-go/internal/logger"
)

// runChat 加载语料后在标准输入输出上问答。
// --input 时先导入该目录再问答，否则从 --data（默认 ingest.output_dir）加载已有结果。
func runChat(args []string) error {
	fs := pflag.NewFlagSet("chat", pflag.ExitOnError)
	configPath := addConfigFlag(fs)
	dataDir := fs.StringP("data", "d", "", "导入结果目录，默认取配置 ingest.output_dir")
	inputDir := fs.StringP("input", "i", "", "先导入该目录下的简历再开始问答")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// 读标准输入会阻塞，不拦截中断信号，Ctrl-C 直接结束进程
	ctx := context.Background()

	a, err := newApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	var c *corpus.Corpus
	if *inputDir != "" {
		c, _, err = a.ingest(ctx, *inputDir, a.cfg.Ingest.OutputDir)
	} else {
		dir := *dataDir
		if dir == "" {
			dir = a.cfg.Ingest.OutputDir
		}
		c, err = corpus.LoadDir(dir, logger.Component("corpus"), corpus.WithFallbackExtractor(a.newPatternExtractor()))
	}
	if err != nil {
		return err
	}
	if c.Len() == 0 {
		a.log.Warn().Msg("语料为空，所有查询都不会有匹配结果")
	}

	analyzer := chatbot.NewAnalyzer(a.newTagger(ctx), logger.Component("analyzer"))
	session := chatbot.NewSession(chatbot.NewRouter(analyzer), c, logger.Component("session"))
	a.log.Info().Str("session_id", session.ID()).Int("records", c.Len()).Msg("问答会话开始")

	return session.Run(ctx, os.Stdin, os.Stdout)
}
