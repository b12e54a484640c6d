package parser

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"resume-chatbot-go/internal/constants"
	"resume-chatbot-go/internal/retry"
	"resume-chatbot-go/internal/tracing"
)

var errTransient = errors.New("429 too many requests")

// scriptedModel 按顺序返回预设结果
type scriptedModel struct {
	contents []string
	errs     []error
	calls    int
	last     []*schema.Message
}

func (m *scriptedModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	i := m.calls
	m.calls++
	m.last = input
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i < len(m.contents) {
		return schema.AssistantMessage(m.contents[i], nil), nil
	}
	return schema.AssistantMessage(m.contents[len(m.contents)-1], nil), nil
}

func (m *scriptedModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func (c *memCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func newTestRetrier(slept *[]time.Duration) *retry.Retrier {
	classify := func(err error) retry.Class {
		if errors.Is(err, errTransient) {
			return retry.ClassTransient
		}
		return retry.ClassFatal
	}
	return retry.New(retry.DefaultPolicy(), classify, retry.WithSleep(func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}))
}

func TestLLMStructurer_SuccessAfterTransient(t *testing.T) {
	var slept []time.Duration
	m := &scriptedModel{
		errs:     []error{errTransient, errTransient},
		contents: []string{"", "", `{"Skills": "Go"}`},
	}
	s := NewLLMStructurer(m, newTestRetrier(&slept), WithModelName("qwen-turbo"))

	res := s.Structure(context.Background(), "Skills Go")
	require.True(t, res.OK(), "第三次应成功")
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, `{"Skills": "Go"}`, res.Value)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, slept)

	require.Len(t, m.last, 2)
	assert.Equal(t, schema.System, m.last[0].Role)
	assert.Equal(t, "Skills Go", m.last[1].Content)
}

func TestLLMStructurer_Exhausted(t *testing.T) {
	var slept []time.Duration
	m := &scriptedModel{errs: []error{errTransient, errTransient, errTransient, errTransient, errTransient}}
	s := NewLLMStructurer(m, newTestRetrier(&slept))

	res := s.Structure(context.Background(), "text")
	assert.Equal(t, retry.OutcomeTransientExhausted, res.Outcome)
	assert.Equal(t, 5, res.Attempts)
	assert.Equal(t, 5, m.calls, "不应超过最大尝试次数")
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}, slept)
}

func TestLLMStructurer_FatalStopsImmediately(t *testing.T) {
	var slept []time.Duration
	m := &scriptedModel{errs: []error{errors.New("invalid api key")}}
	s := NewLLMStructurer(m, newTestRetrier(&slept))

	res := s.Structure(context.Background(), "text")
	assert.Equal(t, retry.OutcomeFatal, res.Outcome)
	assert.Equal(t, 1, m.calls)
	assert.Empty(t, slept)
}

func TestLLMStructurer_CacheHit(t *testing.T) {
	var slept []time.Duration
	cache := &memCache{data: map[string]string{}}
	m := &scriptedModel{contents: []string{`{"Skills": "Go"}`}}
	s := NewLLMStructurer(m, newTestRetrier(&slept), WithResponseCache(cache), WithModelName("m"))

	first := s.Structure(context.Background(), "same text")
	require.True(t, first.OK())
	second := s.Structure(context.Background(), "same text")
	require.True(t, second.OK())

	assert.Equal(t, 1, m.calls, "第二次应命中缓存")
	assert.Equal(t, 0, second.Attempts)
	assert.Equal(t, first.Value, second.Value)
}

func TestLLMStructurer_CustomPrompt(t *testing.T) {
	var slept []time.Duration
	m := &scriptedModel{contents: []string{"{}"}}
	s := NewLLMStructurer(m, newTestRetrier(&slept), WithStructurePrompt("custom prompt"))
	s.Structure(context.Background(), "x")
	assert.Equal(t, "custom prompt", m.last[0].Content)

	s2 := NewLLMStructurer(m, newTestRetrier(&slept), WithStructurePrompt("   "))
	assert.Equal(t, defaultStructurePrompt, s2.prompt, "空白提示词应被忽略")
}

func TestParseLLMResume(t *testing.T) {
	raw := "Here is the result:\n```json\n{\n  \"Personal Information\": {\"Name\": \"Jane Doe\", \"Email\": \"jane@x.io\"},\n  \"Skills\": \"Go, {braces} in text\"\n}\n```\nDone."
	r, err := ParseLLMResume(raw)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", r.Personal.Name)
	assert.Equal(t, "jane@x.io", r.Personal.Email)
	assert.Equal(t, constants.NotProvided, r.Personal.Phone)
	assert.Equal(t, "Go, {braces} in text", r.Skills)
	assert.Equal(t, constants.NotProvided, r.Projects)

	_, err = ParseLLMResume("no json at all")
	assert.Error(t, err)

	_, err = ParseLLMResume("{ broken")
	assert.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a": {"b": 1}}`, extractJSON("prefix {\"a\": {\"b\": 1}} suffix"))
	assert.Equal(t, `{"a": "}"}`, extractJSON("```\n{\"a\": \"}\"}\n```"))
	assert.Equal(t, "", extractJSON("nothing"))
}

// failingCache 读写都失败的缓存
type failingCache struct{ err error }

func (c failingCache) Get(context.Context, string) (string, bool, error) { return "", false, c.err }
func (c failingCache) Set(context.Context, string, string) error         { return c.err }

func TestLLMStructurer_CacheFailureRecordedOnSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	var slept []time.Duration
	m := &scriptedModel{contents: []string{`{"Skills": "Go"}`}}
	s := NewLLMStructurer(m, newTestRetrier(&slept), WithResponseCache(failingCache{err: errors.New("redis down")}))

	res := s.Structure(context.Background(), "text")
	require.True(t, res.OK(), "缓存不可用不影响调用模型")
	assert.Equal(t, 1, m.calls)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	errorEvents := 0
	for _, ev := range spans[0].Events() {
		if ev.Name == "exception" {
			errorEvents++
		}
	}
	assert.Equal(t, 2, errorEvents, "读写缓存失败都应记录到 span")

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, string(tracing.ErrorTypeRedis), attrs["error.type"])
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
}
