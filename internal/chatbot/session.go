package chatbot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resume-chatbot-go/internal/constants"
	"resume-chatbot-go/internal/corpus"
	"resume-chatbot-go/internal/logger"
	"resume-chatbot-go/internal/tracing"
)

var tracer = otel.Tracer("resume-chatbot-go/chatbot")

// 终端交互文本
var bannerLines = []string{
	"Welcome to the Advanced Resume Chatbot!",
	"You can ask about skills, education, work experience, or find candidates based on job requirements.",
	"Type 'exit' to end the conversation.",
	"",
}

const (
	Prompt      = "You: "
	ReplyPrefix = "Bot: "
	Farewell    = "Goodbye!"
	exitCommand = "exit"
)

// ErrSessionTerminated 会话已结束后再处理输入
var ErrSessionTerminated = errors.New("会话已结束")

// State 会话状态
type State int

const (
	StateAwaitingInput State = iota
	StateDispatching
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting_input"
	case StateDispatching:
		return "dispatching"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Session 一次问答会话，一次只处理一条查询
type Session struct {
	id      string
	router  *Router
	corpus  *corpus.Corpus
	context *ContextManager
	state   State
	logger  zerolog.Logger
}

// NewSession 创建会话，语料在会话期间只读
func NewSession(router *Router, c *corpus.Corpus, logger zerolog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:      id,
		router:  router,
		corpus:  c,
		context: NewContextManager(),
		state:   StateAwaitingInput,
		logger:  logger.With().Str("session_id", id).Logger(),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State { return s.state }

// Context 会话上下文
func (s *Session) Context() *ContextManager { return s.context }

// IsExit 去掉首尾空白后不区分大小写地等于 exit
func IsExit(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), exitCommand)
}

// Handle 处理一行输入。exit 时返回告别语并进入终止状态，之后的调用返回 ErrSessionTerminated。
func (s *Session) Handle(ctx context.Context, line string) (string, error) {
	if s.state == StateTerminated {
		return "", ErrSessionTerminated
	}

	query := strings.TrimSpace(line)
	if IsExit(query) {
		s.state = StateTerminated
		s.logger.Info().Msg("会话结束")
		return Farewell, nil
	}

	s.state = StateDispatching
	ctx = logger.WithContext(ctx, s.logger)
	ctx, span := tracer.Start(ctx, "Session.Handle")
	defer span.End()

	answer, intent, entities := s.router.Route(ctx, query, s.corpus)
	span.SetAttributes(
		attribute.String("chat.query", tracing.SafeQuery(query)),
		attribute.String("chat.intent", intent.String()),
		attribute.Int("chat.entities", len(entities)),
	)

	s.context.Update(constants.ContextKeyLastQuery, query)
	s.context.Update(constants.ContextKeyLastIntent, intent.String())
	for cat, text := range entities {
		s.context.Update(cat, text)
	}

	s.logger.Debug().Str("intent", intent.String()).Interface("entities", entities).Msg("查询已处理")
	s.state = StateAwaitingInput
	return answer, nil
}

// Run 在 in/out 上运行交互循环：打印欢迎语，逐行读取查询并输出回答。
// 输入 exit 时打印告别语后返回 nil；输入结束（EOF）时直接返回 nil。
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	for _, line := range bannerLines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.state != StateTerminated {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := fmt.Fprint(out, Prompt); err != nil {
			return err
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("读取输入失败: %w", err)
			}
			s.logger.Info().Msg("输入结束")
			return nil
		}

		reply, err := s.Handle(ctx, scanner.Text())
		if err != nil {
			return err
		}
		if s.state == StateTerminated {
			_, err = fmt.Fprintln(out, reply)
		} else {
			_, err = fmt.Fprintln(out, ReplyPrefix+reply)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
