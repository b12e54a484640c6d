package main

import (
	"fmt"
	"os"
)

var (
	version     = "1.0.0"     //nolint:gochecknoglobals
	serviceName = "resumebot" //nolint:gochecknoglobals
)

const usageText = `用法: resumebot <命令> [参数]

命令:
  ingest         导入目录下的 PDF/DOCX 简历，写出结构化结果
  chat           基于导入结果的命令行问答
  parse          解析单个简历文件并打印结果
  sample-config  生成示例配置文件

使用 "resumebot <命令> --help" 查看各命令的参数。
`

func usage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "ingest":
		err = runIngest(args)
	case "chat":
		err = runChat(args)
	case "parse":
		err = runParse(args)
	case "sample-config":
		err = runSampleConfig(args)
	case "-h", "--help", "help":
		usage()
		return
	case "-v", "--version", "version":
		fmt.Printf("%s %s\n", serviceName, version)
		return
	default:
		fmt.Fprintf(os.Stderr, "错误: 未知命令 '%s'\n\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
