package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-chatbot-go/internal/retry"
)

// writeConfig 把 YAML 写入临时目录并返回路径
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644), "无法写入临时配置文件")
	return configPath
}

// clearEnv 屏蔽宿主机上可能存在的覆盖变量
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DASHSCOPE_API_KEY", "ALIYUN_API_KEY", "ALIYUN_API_URL", "ALIYUN_MODEL",
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "GEMINI_MODEL",
		"RESUMEBOT_LLM_PROVIDER", "RESUMEBOT_STRATEGY", "RESUMEBOT_INPUT_DIR", "RESUMEBOT_OUTPUT_DIR",
		"OTEL_EXPORTER_OTLP_ENDPOINT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	clearEnv(t)
	configPath := writeConfig(t, `
ingest:
  input_dir: "./resumes"
  output_dir: "./out"
  strategy: "llm"
llm:
  provider: "gemini"
  qpm: 60
  gemini:
    model: "gemini-2.0-flash"
retry:
  max_attempts: 3
  base_delay: "500ms"
  multiplier: 3
tagger:
  type: "gazetteer"
  organizations: ["Google", "Acme Corp"]
  locations: ["London"]
extraction:
  boundaries:
    - field: skills
      start: "Tech Stack"
      ends: ["Hobbies"]
`)

	config, err := LoadConfig(configPath)
	require.NoError(t, err, "加载配置不应返回错误")
	require.NotNil(t, config)

	assert.Equal(t, "./resumes", config.Ingest.InputDir)
	assert.Equal(t, "./out", config.Ingest.OutputDir)
	assert.Equal(t, StrategyLLM, config.Ingest.Strategy)
	assert.Equal(t, ProviderGemini, config.LLM.Provider)
	assert.Equal(t, "gemini-2.0-flash", config.LLM.ModelName())
	assert.Equal(t, 60, config.LLM.QPM)
	assert.Equal(t, []string{"Google", "Acme Corp"}, config.Tagger.Organizations)
	require.Len(t, config.Extraction.Boundaries, 1)
	assert.Equal(t, []string{"Hobbies"}, config.Extraction.Boundaries[0].Ends)

	policy := config.Retry.Policy()
	assert.Equal(t, retry.Policy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, Multiplier: 3}, policy)

	// 未配置的字段应补默认值
	assert.Equal(t, "qwen-turbo", config.LLM.Qwen.Model)
	assert.Equal(t, "info", config.Logger.Level)
	assert.Equal(t, "resume.extracted", config.RabbitMQ.RoutingKey)
	assert.False(t, config.Redis.Enabled, "外部组件默认关闭")
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DASHSCOPE_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "g-test")
	t.Setenv("RESUMEBOT_STRATEGY", "LLM")
	t.Setenv("RESUMEBOT_OUTPUT_DIR", "/tmp/out")

	config, err := LoadConfig(writeConfig(t, "logger:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "sk-test", config.LLM.Qwen.APIKey)
	assert.Equal(t, "g-test", config.LLM.Gemini.APIKey)
	assert.Equal(t, StrategyLLM, config.Ingest.Strategy, "策略名应转为小写")
	assert.Equal(t, "/tmp/out", config.Ingest.OutputDir)
	assert.Equal(t, "debug", config.Logger.Level)
}

func TestLoadConfigMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "指定的配置文件不存在时应报错")
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(writeConfig(t, "ingest: [unclosed"))
	assert.Error(t, err)
}

func TestLoadConfigRejectsUnknownStrategy(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(writeConfig(t, "ingest:\n  strategy: magic\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "magic")
}

func TestLoadConfigMockProvider(t *testing.T) {
	clearEnv(t)
	config, err := LoadConfig(writeConfig(t, "llm:\n  provider: mock\n  mock:\n    reply: '{\"Skills\": \"Go\"}'\n"))
	require.NoError(t, err)
	assert.Equal(t, ProviderMock, config.LLM.Provider)
	assert.Equal(t, `{"Skills": "Go"}`, config.LLM.Mock.Reply)
	assert.Equal(t, "mock", config.LLM.ModelName())
}

func TestLoadConfigRejectsIncompleteBoundary(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(writeConfig(t, "extraction:\n  boundaries:\n    - field: skills\n"))
	assert.Error(t, err)
}

func TestCreateSampleConfigRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, CreateSampleConfig(path))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, StrategyPattern, config.Ingest.Strategy)
	assert.Equal(t, retry.DefaultPolicy(), config.Retry.Policy())

	assert.Error(t, CreateSampleConfig(path), "已存在的文件不应被覆盖")
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, GetDuration("", 5*time.Second))
	assert.Equal(t, 5*time.Second, GetDuration("bogus", 5*time.Second))
	assert.Equal(t, 90*time.Second, GetDuration("1m30s", time.Second))
}
